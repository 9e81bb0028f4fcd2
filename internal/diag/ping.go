// Package diag parses the text output of network diagnostic tools.
//
// Parsers never fail. Tool output differs between platforms and versions
// (iputils, busybox, BSD), so any value whose pattern does not match is left
// nil rather than reported as an error.
//
// Accepted ping summary variants:
//
//	4 packets transmitted, 4 packets received, 0% packet loss            (busybox, BSD)
//	4 packets transmitted, 4 received, 0% packet loss, time 3004ms       (iputils)
//	4 packets transmitted, 3 received, +1 duplicates, 25% packet loss    (iputils)
//	4 packets transmitted, 0 received, +4 errors, 100% packet loss, time 3004ms
//
// Accepted round-trip variants:
//
//	round-trip min/avg/max = 10.1/12.3/15.0 ms
//	rtt min/avg/max/mdev = 10.1/12.3/15.0/1.2 ms
//	round-trip min/avg/max/stddev = 10.1/12.3/15.0/1.2 ms
package diag

import (
	"regexp"
	"strconv"

	"netlab/internal/domain"
)

var (
	pingSummaryRe = regexp.MustCompile(
		`(\d+) packets transmitted, (\d+) (?:packets )?received,` +
			`(?: \+(\d+) duplicates,)?(?: \+\d+ corrupted,)?(?: \+(\d+) errors,)?` +
			` (\d+(?:\.\d+)?)% packet loss(?:, time (\d+(?:\.\d+)?)ms)?`)

	pingRTTRe = regexp.MustCompile(
		`[\w-]+ min/avg/max(?:/(?:mdev|stddev))? = ` +
			`(\d+(?:\.\d+)?)/(\d+(?:\.\d+)?)/(\d+(?:\.\d+)?)(?:/(\d+(?:\.\d+)?))? ms`)
)

// ParsePing extracts the packet counters and round-trip statistics from ping
// output. Packet loss is reported as a float percentage so fractional values
// such as "33.3333%" survive.
func ParsePing(output string) domain.PingResult {
	var result domain.PingResult

	if m := pingSummaryRe.FindStringSubmatch(output); m != nil {
		result.Transmitted = parseInt(m[1])
		result.Received = parseInt(m[2])
		result.Duplicates = parseInt(m[3])
		result.Errors = parseInt(m[4])
		result.PacketLossPercent = parseFloat(m[5])
		result.TimeMs = parseFloat(m[6])
	}

	if m := pingRTTRe.FindStringSubmatch(output); m != nil {
		result.RTTMin = parseFloat(m[1])
		result.RTTAvg = parseFloat(m[2])
		result.RTTMax = parseFloat(m[3])
		result.RTTMdev = parseFloat(m[4])
	}

	return result
}

// parseInt returns nil for an empty or out of range capture
func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

// parseFloat returns nil for an empty or unparsable capture
func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
