package nntp

import "slices"

// Status is a classified single-line reply.
type Status struct {
	Code    int
	Line    string
	Matched bool
}

// Classify reads the 3-digit prefix of line and checks it against the
// codes the current command accepts. Code is 0 when the prefix is not numeric.
func Classify(line string, expected ...int) Status {
	st := Status{Line: line, Code: parseCode(line)}
	st.Matched = st.Code != 0 && slices.Contains(expected, st.Code)
	return st
}

// Err turns an unmatched status into an *UnexpectedStatusError.
func (s Status) Err(command string) error {
	if s.Matched {
		return nil
	}
	return &UnexpectedStatusError{Command: command, Code: s.Code, Line: s.Line}
}

func parseCode(line string) int {
	if len(line) < 3 {
		return 0
	}
	code := 0
	for i := 0; i < 3; i++ {
		ch := line[i]
		if ch < '0' || ch > '9' {
			return 0
		}
		code = code*10 + int(ch-'0')
	}
	return code
}
