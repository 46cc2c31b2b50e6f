package nntp

import (
	"context"
	"net"
	"net/textproto"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
	"github.com/stretchr/testify/require"
)

// fakeServer is a scripted NNTP server. Each command it receives is
// recorded; the reply is looked up verbatim in replies. A present but
// empty reply makes the server stay silent for that command.
type fakeServer struct {
	t        *testing.T
	ln       net.Listener
	greeting string
	replies  map[string][]string

	mu       sync.Mutex
	received []string
	wg       sync.WaitGroup
}

func newFakeServer(t *testing.T, greeting string, replies map[string][]string) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeServer{t: t, ln: ln, greeting: greeting, replies: replies}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(func() {
		ln.Close()
		s.wg.Wait()
	})
	return s
}

func (s *fakeServer) serve() {
	defer s.wg.Done()
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go s.handle(c)
	}
}

func (s *fakeServer) handle(c net.Conn) {
	defer s.wg.Done()
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(5 * time.Second))

	tp := textproto.NewConn(c)
	if s.greeting != "" {
		if err := tp.PrintfLine("%s", s.greeting); err != nil {
			return
		}
	}
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.received = append(s.received, line)
		s.mu.Unlock()

		if line == "QUIT" {
			_ = tp.PrintfLine("205 bye")
			return
		}
		reply, ok := s.replies[line]
		if !ok {
			reply = []string{"500 command not recognized"}
		}
		for _, r := range reply {
			if err := tp.PrintfLine("%s", r); err != nil {
				return
			}
		}
	}
}

func (s *fakeServer) session(timeout time.Duration) domain.Session {
	addr := s.ln.Addr().(*net.TCPAddr)
	return domain.Session{Host: "127.0.0.1", Port: addr.Port, Timeout: timeout}
}

// commands returns what the server received, without the closing QUIT.
func (s *fakeServer) commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.received))
	for _, l := range s.received {
		if l != "QUIT" {
			out = append(out, l)
		}
	}
	return out
}

// waitCommands polls until the server has seen n commands.
func (s *fakeServer) waitCommands(t *testing.T, n int) []string {
	t.Helper()
	require.Eventually(t, func() bool { return len(s.commands()) >= n }, 2*time.Second, 10*time.Millisecond)
	return s.commands()
}

// countingDialer counts Close calls on every connection it hands out.
type countingDialer struct {
	net.Dialer
	closes atomic.Int32
}

func (d *countingDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	c, err := d.Dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	return &countingConn{Conn: c, d: d}, nil
}

type countingConn struct {
	net.Conn
	d *countingDialer
}

func (c *countingConn) Close() error {
	c.d.closes.Add(1)
	return c.Conn.Close()
}

// pipeConn gives transport tests a connected pair without a listener.
func pipeConn(t *testing.T) (*Conn, *textproto.Conn) {
	t.Helper()
	client, server := net.Pipe()
	d := pipeDialer{conn: client}
	c, err := Open(context.Background(), d, "pipe", time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		c.Close()
		server.Close()
	})
	return c, textproto.NewConn(server)
}

type pipeDialer struct{ conn net.Conn }

func (p pipeDialer) DialContext(context.Context, string, string) (net.Conn, error) {
	return p.conn, nil
}

func writeLines(t *testing.T, w *textproto.Conn, lines ...string) {
	t.Helper()
	go func() {
		for _, l := range lines {
			if err := w.PrintfLine("%s", l); err != nil {
				return
			}
		}
	}()
}
