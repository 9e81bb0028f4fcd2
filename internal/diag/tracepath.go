package diag

import (
	"regexp"
	"strconv"
	"strings"

	"netlab/internal/domain"
)

// hopRe matches "<hop>: <address> [<hostname>] <rtt>ms [pmtu <mtu>]".
// Trailing annotations such as "asymm 2" or "reached" are ignored.
var hopRe = regexp.MustCompile(
	`^\s*(\d+)\??:\s+(\S+)\s+(?:(.*?)\s+)?(\d+(?:\.\d+)?)ms(?:\s+pmtu\s+(\d+))?`)

// ParseTracepath extracts one Hop per matching line, in input order.
// Lines that do not look like a timed hop (headers, "no reply", the
// Resume summary) are skipped. The result is never nil.
func ParseTracepath(output string) []domain.Hop {
	hops := make([]domain.Hop, 0)

	for _, line := range strings.Split(output, "\n") {
		m := hopRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}

		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		rtt, err := strconv.ParseFloat(m[4], 64)
		if err != nil {
			continue
		}

		hops = append(hops, domain.Hop{
			Number:   number,
			Address:  m[2],
			Hostname: strings.TrimSpace(m[3]),
			RTTMs:    rtt,
			PMTU:     parseInt(m[5]),
		})
	}

	return hops
}
