package nntp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []int
		code     int
		matched  bool
	}{
		{name: "match", line: "215 list follows", expected: []int{215}, code: 215, matched: true},
		{name: "one of several", line: "211 3 1 3 alt.test", expected: []int{211, 215}, code: 211, matched: true},
		{name: "not expected", line: "500 what?", expected: []int{215}, code: 500},
		{name: "bare code", line: "281", expected: []int{281}, code: 281, matched: true},
		{name: "empty line", line: "", expected: []int{200}},
		{name: "too short", line: "20", expected: []int{20}},
		{name: "not numeric", line: "OK fine", expected: []int{200}},
		{name: "no expected codes", line: "200 hello", code: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Classify(tt.line, tt.expected...)
			assert.Equal(t, tt.code, st.Code)
			assert.Equal(t, tt.matched, st.Matched)
			assert.Equal(t, tt.line, st.Line)
		})
	}
}

func TestStatusErr(t *testing.T) {
	assert.NoError(t, Classify("221 7 <a@b> head", 221).Err("HEAD"))

	err := Classify("423 no such article number", 221).Err("HEAD")
	var use *UnexpectedStatusError
	if assert.True(t, errors.As(err, &use)) {
		assert.Equal(t, "HEAD", use.Command)
		assert.Equal(t, 423, use.Code)
		assert.Equal(t, "423 no such article number", use.Line)
	}
	assert.Equal(t, "failed: 423 no such article number", messageOf(err))
}
