package nntp

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
)

// Logger is the part of the application logger the engine writes to.
type Logger interface {
	Debug(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Client runs one-shot NNTP operations. Every call dials its own
// connection, so a Client is safe for concurrent use.
type Client struct {
	dialer Dialer
	limits Limits
	log    Logger
}

type Option func(*Client)

// WithDialer replaces the TCP dialer.
func WithDialer(d Dialer) Option { return func(c *Client) { c.dialer = d } }

// WithLimits bounds multiline bodies.
func WithLimits(l Limits) Option { return func(c *Client) { c.limits = l.withDefaults() } }

// WithLogger receives command/reply traces at debug level.
func WithLogger(l Logger) Option { return func(c *Client) { c.log = l } }

func NewClient(opts ...Option) *Client {
	c := &Client{
		dialer: &net.Dialer{},
		limits: DefaultLimits,
		log:    nopLogger{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Authenticate connects and runs only the AUTHINFO handshake. Without a
// username it succeeds as soon as the connection is up.
func (c *Client) Authenticate(ctx context.Context, s domain.Session) domain.Result {
	return c.execute(ctx, s, &operation{
		name: domain.OpAuthenticate,
		message: func(_ *domain.Result, s domain.Session) string {
			if !s.HasPrincipal() {
				return "connected, no auth requested"
			}
			return fmt.Sprintf("authenticated as %s", s.Username)
		},
	})
}

// ListGroups sends LIST, retrying once with LIST ACTIVE when the server
// does not know the bare form.
func (c *Client) ListGroups(ctx context.Context, s domain.Session) domain.Result {
	active := &step{name: "LIST ACTIVE", command: "LIST ACTIVE", expect: []int{codeListFollows}, body: true}
	return c.execute(ctx, s, &operation{
		name: domain.OpListGroups,
		steps: []step{{
			name:       "LIST",
			command:    "LIST",
			expect:     []int{codeListFollows},
			body:       true,
			fallback:   active,
			fallbackOn: []int{codeUnknownCommand, codeSyntaxError, codeCommandDisabled},
		}},
		finish: func(res *domain.Result, _ []Status) {
			res.Groups = ParseGroupDescriptors(res.Lines)
		},
		message: func(res *domain.Result, _ domain.Session) string {
			return fmt.Sprintf("retrieved %d groups", len(res.Lines))
		},
	})
}

// ListArticlesInGroup selects group and lists its article numbers.
func (c *Client) ListArticlesInGroup(ctx context.Context, s domain.Session, group string) domain.Result {
	op := &operation{
		name: domain.OpListArticlesInGroup,
		err:  validateArg("group", group),
		steps: []step{
			{name: "GROUP", command: "GROUP " + group, expect: []int{codeGroupSelected}},
			{name: "LISTGROUP", command: "LISTGROUP " + group, expect: []int{codeGroupSelected, codeListFollows}, body: true},
		},
		shape: trimNumbers,
		finish: func(res *domain.Result, statuses []Status) {
			if len(statuses) > 0 {
				if gs, ok := ParseGroupStatus(statuses[0].Line); ok {
					res.Group = &gs
				}
			}
		},
		message: func(res *domain.Result, _ domain.Session) string {
			return fmt.Sprintf("retrieved %d article numbers from %s", len(res.Lines), group)
		},
	}
	return c.execute(ctx, s, op)
}

// GetHeaders fetches the header block of one article. A non-empty group
// is selected first, which numeric IDs require on a fresh connection.
func (c *Client) GetHeaders(ctx context.Context, s domain.Session, articleID, group string) domain.Result {
	id := FormatArticleID(articleID)
	op := &operation{
		name:  domain.OpGetHeaders,
		err:   validateArticleArgs(id, group),
		steps: withGroup(group, step{name: "HEAD", command: "HEAD " + id, expect: []int{codeHeadFollows}, body: true}),
		message: func(res *domain.Result, _ domain.Session) string {
			return fmt.Sprintf("retrieved %d header lines for article %s", len(res.Lines), id)
		},
	}
	return c.execute(ctx, s, op)
}

// GetArticle fetches a full article, headers and body, in server order.
func (c *Client) GetArticle(ctx context.Context, s domain.Session, articleID, group string) domain.Result {
	id := FormatArticleID(articleID)
	op := &operation{
		name:  domain.OpGetArticle,
		err:   validateArticleArgs(id, group),
		steps: withGroup(group, step{name: "ARTICLE", command: "ARTICLE " + id, expect: []int{codeArticleFollows}, body: true}),
		message: func(res *domain.Result, _ domain.Session) string {
			return fmt.Sprintf("retrieved article %s (%d lines)", id, len(res.Lines))
		},
	}
	return c.execute(ctx, s, op)
}

func withGroup(group string, s step) []step {
	if group == "" {
		return []step{s}
	}
	return []step{
		{name: "GROUP", command: "GROUP " + group, expect: []int{codeGroupSelected}},
		s,
	}
}

// FormatArticleID wraps a bare message-id in angle brackets. Article
// numbers are returned unchanged.
func FormatArticleID(id string) string {
	id = strings.TrimSpace(id)
	if strings.Contains(id, "@") && !strings.HasPrefix(id, "<") {
		return "<" + id + ">"
	}
	return id
}

func trimNumbers(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func validateArticleArgs(id, group string) error {
	if err := validateArg("article id", id); err != nil {
		return err
	}
	if group == "" {
		return nil
	}
	return validateArg("group", group)
}

// validateArg rejects empty arguments and anything that would break the
// single-line command framing.
func validateArg(what, v string) error {
	if v == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidArgument, what)
	}
	for _, r := range v {
		if r <= ' ' || r == 0x7f {
			return fmt.Errorf("%w: %s %q contains whitespace or control characters", ErrInvalidArgument, what, v)
		}
	}
	return nil
}

func validateCredentials(s domain.Session) error {
	if s.Host == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidArgument)
	}
	if s.Username != "" {
		if err := validateArg("username", s.Username); err != nil {
			return err
		}
	}
	if strings.ContainsAny(s.Password, "\r\n\x00") {
		return fmt.Errorf("%w: password contains control characters", ErrInvalidArgument)
	}
	return nil
}
