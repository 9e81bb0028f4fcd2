package domain

import "time"

// DiagnosticKind identifies which parser applies to a command's output
type DiagnosticKind string

const (
	DiagnosticPing      DiagnosticKind = "ping"
	DiagnosticTracepath DiagnosticKind = "tracepath"
	DiagnosticCommand   DiagnosticKind = "command" // unparsed output
)

// PingResult holds the values extracted from ping output.
// A nil field means the tool did not report it.
type PingResult struct {
	Transmitted       *int     `json:"transmitted"`
	Received          *int     `json:"received"`
	Duplicates        *int     `json:"duplicates,omitempty"`
	Errors            *int     `json:"errors,omitempty"`
	PacketLossPercent *float64 `json:"packet_loss_percent"`
	TimeMs            *float64 `json:"time_ms,omitempty"`
	RTTMin            *float64 `json:"rtt_min"`
	RTTAvg            *float64 `json:"rtt_avg"`
	RTTMax            *float64 `json:"rtt_max"`
	RTTMdev           *float64 `json:"rtt_mdev"`
}

// HasSummary reports whether the transmitted/received line was found
func (p PingResult) HasSummary() bool {
	return p.Transmitted != nil
}

// HasRTT reports whether the round-trip statistics line was found
func (p PingResult) HasRTT() bool {
	return p.RTTAvg != nil
}

// Hop is a single tracepath hop
type Hop struct {
	Number   int     `json:"hop_number"`
	Address  string  `json:"address"`
	Hostname string  `json:"hostname"`
	RTTMs    float64 `json:"rtt"`
	PMTU     *int    `json:"pmtu,omitempty"`
}

// DiagnosticRun records a diagnostic command executed inside a unit
type DiagnosticRun struct {
	ID        int64          `json:"id"`
	Host      string         `json:"host"`
	Kind      DiagnosticKind `json:"kind"`
	Target    string         `json:"target,omitempty"`
	Command   string         `json:"command"`
	Output    string         `json:"output"`
	ExitCode  int            `json:"exit_code"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Ping      *PingResult    `json:"ping,omitempty"`
	Hops      []Hop          `json:"hops,omitempty"`
}
