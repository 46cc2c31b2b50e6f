package nntp

import (
	"errors"
	"fmt"
)

// AuthState is a state of the AUTHINFO USER/PASS handshake.
type AuthState int

const (
	AuthStart AuthState = iota
	AuthSkipped
	AuthSentUser
	AuthNeedPassword
	AuthSentPass
	AuthAuthenticated
	AuthFailed
	AuthTimedOut
)

func (s AuthState) String() string {
	switch s {
	case AuthStart:
		return "start"
	case AuthSkipped:
		return "skipped"
	case AuthSentUser:
		return "sent_user"
	case AuthNeedPassword:
		return "need_password"
	case AuthSentPass:
		return "sent_pass"
	case AuthAuthenticated:
		return "authenticated"
	case AuthFailed:
		return "failed"
	case AuthTimedOut:
		return "timed_out"
	}
	return fmt.Sprintf("AuthState(%d)", int(s))
}

// Proceed reports whether the caller may send its substantive command.
func (s AuthState) Proceed() bool {
	return s == AuthSkipped || s == AuthAuthenticated
}

const (
	codeAuthAccepted     = 281
	codePasswordRequired = 381
)

type handshake struct {
	x        *exchange
	username string
	password string
	state    AuthState
	err      error
}

// authenticate runs the handshake to a terminal state. An empty username
// skips it without sending anything.
func authenticate(x *exchange, username, password string) (AuthState, error) {
	h := &handshake{x: x, username: username, password: password}
	err := h.run()
	return h.state, err
}

func (h *handshake) run() error {
	for {
		switch h.state {
		case AuthStart:
			if h.username == "" {
				h.state = AuthSkipped
				continue
			}
			if err := h.x.send("AUTHINFO USER " + h.username); err != nil {
				return h.fault(err)
			}
			h.state = AuthSentUser

		case AuthSentUser:
			line, err := h.x.reply()
			if err != nil {
				return h.fault(err)
			}
			st := Classify(line, codeAuthAccepted, codePasswordRequired)
			switch {
			case !st.Matched:
				return h.reject("AUTHINFO USER", st)
			case st.Code == codeAuthAccepted:
				h.state = AuthAuthenticated
			default:
				h.state = AuthNeedPassword
			}

		case AuthNeedPassword:
			if err := h.x.send("AUTHINFO PASS " + h.password); err != nil {
				return h.fault(err)
			}
			h.state = AuthSentPass

		case AuthSentPass:
			line, err := h.x.reply()
			if err != nil {
				return h.fault(err)
			}
			st := Classify(line, codeAuthAccepted)
			if !st.Matched {
				return h.reject("AUTHINFO PASS", st)
			}
			h.state = AuthAuthenticated

		case AuthSkipped, AuthAuthenticated:
			return nil

		default:
			return h.err
		}
	}
}

func (h *handshake) fault(err error) error {
	if errors.Is(err, ErrReadTimeout) {
		h.state = AuthTimedOut
	} else {
		h.state = AuthFailed
	}
	h.err = err
	return err
}

func (h *handshake) reject(command string, st Status) error {
	h.state = AuthFailed
	h.err = fmt.Errorf("%w: %w", ErrAuthFailed, st.Err(command))
	return h.err
}
