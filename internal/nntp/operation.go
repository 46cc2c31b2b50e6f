package nntp

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
)

const (
	codeGroupSelected   = 211
	codeListFollows     = 215
	codeArticleFollows  = 220
	codeHeadFollows     = 221
	codeUnknownCommand  = 500
	codeSyntaxError     = 501
	codeCommandDisabled = 502
)

// step is one command of an operation and the replies it accepts.
type step struct {
	name    string
	command string
	expect  []int
	body    bool

	// fallback is sent once, on the same connection, when the reply code
	// is in fallbackOn.
	fallback   *step
	fallbackOn []int
}

// operation describes one of the five flows. The executor runs every
// operation the same way: open, greeting, handshake, steps, close.
type operation struct {
	name  domain.Operation
	steps []step

	// err is set when the arguments were rejected while building the
	// descriptor; nothing is dialed in that case.
	err error

	shape   func(lines []string) []string
	finish  func(res *domain.Result, statuses []Status)
	message func(res *domain.Result, s domain.Session) string
}

// exchange is the strictly sequential conversation on one connection.
type exchange struct {
	conn     *Conn
	timeout  time.Duration
	log      Logger
	addr     string
	greeting string
	last     string
}

func (x *exchange) send(cmd string) error {
	x.log.Debug("[%s] > %s", x.addr, redact(cmd))
	return x.conn.WriteLine(cmd, x.timeout)
}

func (x *exchange) reply() (string, error) {
	line, err := x.conn.ReadLine(x.timeout)
	if err != nil {
		return "", err
	}
	x.last = line
	x.log.Debug("[%s] < %s", x.addr, line)
	return line, nil
}

// readGreeting stores the first line after connect. A greeting that never
// arrives is tolerated; the greeting is informational only.
func (x *exchange) readGreeting() error {
	line, err := x.conn.ReadLine(x.timeout)
	if errors.Is(err, ErrReadTimeout) {
		x.log.Debug("[%s] no greeting within %s, continuing", x.addr, x.timeout)
		return nil
	}
	if err != nil {
		return err
	}
	x.greeting = line
	if st := Classify(line, 200, 201); !st.Matched {
		x.log.Debug("[%s] unusual greeting: %s", x.addr, line)
	}
	return nil
}

func (x *exchange) runStep(s step, limits Limits) (Status, []string, error) {
	if err := x.send(s.command); err != nil {
		return Status{}, nil, err
	}
	line, err := x.reply()
	if err != nil {
		return Status{}, nil, err
	}

	st := Classify(line, s.expect...)
	if !st.Matched && s.fallback != nil && slices.Contains(s.fallbackOn, st.Code) {
		x.log.Debug("[%s] %s not supported (%d), retrying with %s", x.addr, s.name, st.Code, s.fallback.name)
		return x.runStep(*s.fallback, limits)
	}
	if !st.Matched {
		return st, nil, st.Err(s.name)
	}
	if !s.body {
		return st, nil, nil
	}

	lines, err := x.conn.ReadBody(x.timeout, limits)
	if err != nil {
		return st, nil, err
	}
	return st, lines, nil
}

func (x *exchange) failure(err error) domain.Result {
	res := domain.Failed(kindOf(err), messageOf(err), err)
	res.Greeting = x.greeting
	res.LastResponse = x.last
	return res
}

// execute runs op against the server described by s. It never panics
// on protocol faults and always returns a Result; the connection is
// closed on every path.
func (c *Client) execute(ctx context.Context, s domain.Session, op *operation) domain.Result {
	s = s.WithDefaults()
	if op.err == nil {
		op.err = validateCredentials(s)
	}
	if op.err != nil {
		return domain.Failed(kindOf(op.err), messageOf(op.err), op.err)
	}

	conn, err := Open(ctx, c.dialer, s.Addr(), s.Timeout)
	if err != nil {
		c.log.Debug("[%s] %s: %v", s.Addr(), op.name, err)
		return domain.Failed(kindOf(err), messageOf(err), err)
	}
	defer conn.Close()

	x := &exchange{conn: conn, timeout: s.Timeout, log: c.log, addr: s.Addr()}

	if err := x.readGreeting(); err != nil {
		return x.failure(err)
	}
	if _, err := authenticate(x, s.Username, s.Password); err != nil {
		return x.failure(err)
	}

	statuses := make([]Status, 0, len(op.steps))
	var lines []string
	for _, st := range op.steps {
		status, body, err := x.runStep(st, c.limits)
		if err != nil {
			return x.failure(err)
		}
		statuses = append(statuses, status)
		if st.body {
			lines = body
		}
	}
	conn.Quit(s.Timeout)

	res := domain.Result{
		Success:      true,
		Greeting:     x.greeting,
		LastResponse: x.last,
	}
	if op.shape != nil {
		res.Lines = op.shape(lines)
	} else {
		res.Lines = lines
	}
	if op.finish != nil {
		op.finish(&res, statuses)
	}
	res.Message = op.message(&res, s)
	return res
}

func redact(cmd string) string {
	if strings.HasPrefix(cmd, "AUTHINFO PASS ") {
		return "AUTHINFO PASS ****"
	}
	return cmd
}
