package nntp

import (
	"errors"
	"fmt"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
)

var (
	ErrConnectTimeout  = errors.New("connect timed out")
	ErrConnectFailure  = errors.New("connect failed")
	ErrReadTimeout     = errors.New("read timed out")
	ErrTransport       = errors.New("transport fault")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrBodyTooLarge    = errors.New("response body too large")
	ErrInvalidArgument = errors.New("invalid argument")
)

// UnexpectedStatusError carries the raw reply line that did not match
// the codes the command expected.
type UnexpectedStatusError struct {
	Command string
	Code    int
	Line    string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status: %s", e.Command, e.Line)
}

// kindOf maps an engine error onto the coarse result taxonomy.
func kindOf(err error) domain.ErrorKind {
	var use *UnexpectedStatusError
	switch {
	case err == nil:
		return domain.KindNone
	case errors.Is(err, ErrAuthFailed):
		return domain.KindAuthFailure
	case errors.As(err, &use):
		return domain.KindUnexpectedStatus
	case errors.Is(err, ErrConnectTimeout):
		return domain.KindConnectTimeout
	case errors.Is(err, ErrConnectFailure):
		return domain.KindConnectFailure
	case errors.Is(err, ErrReadTimeout):
		return domain.KindReadTimeout
	case errors.Is(err, ErrBodyTooLarge):
		return domain.KindBodyTooLarge
	case errors.Is(err, ErrInvalidArgument):
		return domain.KindInvalidArgument
	default:
		return domain.KindTransportFault
	}
}

// messageOf renders the human text of a failure. Protocol mismatches
// always carry the raw server line.
func messageOf(err error) string {
	var use *UnexpectedStatusError
	switch {
	case errors.As(err, &use):
		if errors.Is(err, ErrAuthFailed) {
			return "authentication failed: " + use.Line
		}
		return "failed: " + use.Line
	case errors.Is(err, ErrConnectTimeout):
		return "connect timed out"
	case errors.Is(err, ErrReadTimeout):
		return "read timed out"
	case errors.Is(err, ErrBodyTooLarge):
		return "failed: response body too large"
	default:
		return "failed: " + err.Error()
	}
}
