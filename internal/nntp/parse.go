package nntp

import (
	"bufio"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
)

// ParseGroupDescriptors parses "name high low posting" lines. Lines that
// do not have that shape are skipped.
func ParseGroupDescriptors(lines []string) []domain.GroupDescriptor {
	out := make([]domain.GroupDescriptor, 0, len(lines))
	for _, l := range lines {
		f := strings.Fields(l)
		if len(f) < 4 {
			continue
		}
		high, err := strconv.ParseInt(f[1], 10, 64)
		if err != nil {
			continue
		}
		low, err := strconv.ParseInt(f[2], 10, 64)
		if err != nil {
			continue
		}
		out = append(out, domain.GroupDescriptor{Name: f[0], High: high, Low: low, Posting: f[3]})
	}
	return out
}

// ParseGroupStatus parses a "211 count low high name" reply.
func ParseGroupStatus(line string) (domain.GroupStatus, bool) {
	f := strings.Fields(line)
	if len(f) < 5 || f[0] != "211" {
		return domain.GroupStatus{}, false
	}
	var n [3]int64
	for i := range n {
		v, err := strconv.ParseInt(f[i+1], 10, 64)
		if err != nil {
			return domain.GroupStatus{}, false
		}
		n[i] = v
	}
	return domain.GroupStatus{Count: n[0], Low: n[1], High: n[2], Name: f[4]}, true
}

// ParseHeaders reads header lines, as returned by HEAD or the top of an
// ARTICLE reply, into a canonical MIME header. Parsing stops at the first
// blank line.
func ParseHeaders(lines []string) (textproto.MIMEHeader, error) {
	var sb strings.Builder
	for _, l := range lines {
		if l == "" {
			break
		}
		sb.WriteString(l)
		sb.WriteString("\r\n")
	}
	sb.WriteString("\r\n")
	r := textproto.NewReader(bufio.NewReader(strings.NewReader(sb.String())))
	return r.ReadMIMEHeader()
}
