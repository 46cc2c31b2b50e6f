package nntp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"os"
	"sync"
	"time"
)

// MaxReplyLine caps a single status or greeting line, CRLF included.
const MaxReplyLine = 4096

var errLineTooLong = errors.New("line too long")

// Dialer opens the TCP stream. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Conn is a CRLF framed line transport over one TCP connection. Reads and
// writes are bounded by socket deadlines so a timed out read is actually
// aborted instead of left running in the background.
type Conn struct {
	netConn net.Conn
	r       *bufio.Reader
	w       *textproto.Writer
	ctx     context.Context

	stopWatch func() bool
	closeOnce sync.Once
	closeErr  error
}

// Open dials addr, giving up after timeout.
func Open(ctx context.Context, d Dialer, addr string, timeout time.Duration) (*Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	nc, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		if isTimeout(err) || (errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil) {
			return nil, fmt.Errorf("%w: %s after %s", ErrConnectTimeout, addr, timeout)
		}
		return nil, fmt.Errorf("%w: %w", ErrConnectFailure, err)
	}

	c := &Conn{
		netConn: nc,
		r:       bufio.NewReader(nc),
		w:       textproto.NewWriter(bufio.NewWriter(nc)),
		ctx:     ctx,
	}

	// Cancelling the caller's context forces any pending I/O to fail now.
	c.stopWatch = context.AfterFunc(ctx, func() {
		_ = nc.SetDeadline(time.Unix(1, 0))
	})
	return c, nil
}

// ReadLine reads one reply line without its CRLF, failing with
// ErrReadTimeout when nothing arrives within timeout.
func (c *Conn) ReadLine(timeout time.Duration) (string, error) {
	line, err := c.readLine(timeout, MaxReplyLine)
	if errors.Is(err, errLineTooLong) {
		return "", fmt.Errorf("%w: reply line longer than %d bytes", ErrTransport, MaxReplyLine)
	}
	return line, err
}

// readLine reads one line of at most limit bytes including its line ending.
// The length is checked while reading, so an overlong line is rejected
// before it is buffered.
func (c *Conn) readLine(timeout time.Duration, limit int64) (string, error) {
	if err := c.setDeadline(c.netConn.SetReadDeadline, timeout, ErrReadTimeout); err != nil {
		return "", err
	}

	var buf []byte
	for {
		frag, err := c.r.ReadSlice('\n')
		if int64(len(buf)+len(frag)) > limit {
			return "", errLineTooLong
		}
		buf = append(buf, frag...)
		if err == nil {
			break
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return "", c.wrap(err, ErrReadTimeout)
		}
	}

	buf = buf[:len(buf)-1]
	if n := len(buf); n > 0 && buf[n-1] == '\r' {
		buf = buf[:n-1]
	}
	return string(buf), nil
}

// WriteLine sends text followed by CRLF and flushes immediately.
func (c *Conn) WriteLine(text string, timeout time.Duration) error {
	if err := c.setDeadline(c.netConn.SetWriteDeadline, timeout, ErrTransport); err != nil {
		return err
	}
	if err := c.w.PrintfLine("%s", text); err != nil {
		return c.wrap(err, ErrTransport)
	}
	return nil
}

// Quit writes QUIT without waiting for the reply.
func (c *Conn) Quit(timeout time.Duration) {
	_ = c.WriteLine("QUIT", timeout)
}

// Close releases the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		if c.stopWatch != nil {
			c.stopWatch()
		}
		c.closeErr = c.netConn.Close()
	})
	return c.closeErr
}

// setDeadline bounds the next read or write by timeout and by the
// caller's context deadline, whichever comes first. The context is checked
// again afterwards because a cancellation landing in between would have
// its forced deadline overwritten by set.
func (c *Conn) setDeadline(set func(time.Time) error, timeout time.Duration, onTimeout error) error {
	if err := c.ctx.Err(); err != nil {
		return c.wrap(err, onTimeout)
	}
	d := time.Now().Add(timeout)
	if cd, ok := c.ctx.Deadline(); ok && cd.Before(d) {
		d = cd
	}
	if err := set(d); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if err := c.ctx.Err(); err != nil {
		return c.wrap(err, onTimeout)
	}
	return nil
}

func (c *Conn) wrap(err error, onTimeout error) error {
	if cerr := c.ctx.Err(); cerr != nil {
		if errors.Is(cerr, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", onTimeout, cerr)
		}
		return fmt.Errorf("%w: %w", ErrTransport, cerr)
	}
	if isTimeout(err) {
		return fmt.Errorf("%w: %w", onTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
