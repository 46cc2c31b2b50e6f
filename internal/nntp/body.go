package nntp

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Limits bounds a multiline body so a misbehaving server cannot make the
// collector grow without end. Zero fields take the defaults.
type Limits struct {
	MaxLines int
	MaxBytes int64
}

var DefaultLimits = Limits{
	MaxLines: 1_000_000,
	MaxBytes: 64 << 20,
}

func (l Limits) withDefaults() Limits {
	if l.MaxLines <= 0 {
		l.MaxLines = DefaultLimits.MaxLines
	}
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultLimits.MaxBytes
	}
	return l
}

// BodyReader yields the content lines of a dot terminated body, one per
// call to Next, undoing dot-stuffing. It cannot be restarted.
type BodyReader struct {
	conn    *Conn
	timeout time.Duration
	limits  Limits

	line  string
	lines int
	bytes int64
	done  bool
	err   error
}

// Body starts collecting a multiline reply on c.
func (c *Conn) Body(timeout time.Duration, limits Limits) *BodyReader {
	return &BodyReader{conn: c, timeout: timeout, limits: limits.withDefaults()}
}

// Next advances to the next content line. It returns false at the
// terminator or on error; Err tells the two apart.
func (b *BodyReader) Next() bool {
	if b.done {
		return false
	}

	// Each line may use what is left of the byte budget. The terminator
	// is not counted, so room for ".\r\n" is always allowed.
	budget := max(b.limits.MaxBytes-b.bytes, int64(len(".\r\n")))
	line, err := b.conn.readLine(b.timeout, budget)
	if errors.Is(err, errLineTooLong) {
		return b.fail(fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, b.limits.MaxBytes))
	}
	if err != nil {
		return b.fail(err)
	}
	if line == "." {
		b.done = true
		return false
	}

	b.lines++
	b.bytes += int64(len(line)) + 2
	if b.lines > b.limits.MaxLines {
		return b.fail(fmt.Errorf("%w: more than %d lines", ErrBodyTooLarge, b.limits.MaxLines))
	}
	if b.bytes > b.limits.MaxBytes {
		return b.fail(fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, b.limits.MaxBytes))
	}

	if strings.HasPrefix(line, "..") {
		line = line[1:]
	}
	b.line = line
	return true
}

// Line returns the current content line.
func (b *BodyReader) Line() string { return b.line }

// Err returns the error that stopped the body, if any.
func (b *BodyReader) Err() error { return b.err }

func (b *BodyReader) fail(err error) bool {
	b.done = true
	b.err = err
	b.line = ""
	return false
}

// ReadBody collects the whole body. A body that did not reach its
// terminator is discarded and only the error is returned.
func (c *Conn) ReadBody(timeout time.Duration, limits Limits) ([]string, error) {
	body := c.Body(timeout, limits)
	lines := make([]string, 0)
	for body.Next() {
		lines = append(lines, body.Line())
	}
	if err := body.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
