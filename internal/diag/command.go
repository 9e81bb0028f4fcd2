package diag

import (
	"fmt"
	"path"
	"strings"

	"netlab/internal/domain"
)

// DefaultPingCount matches the count used by the lab scripts
const DefaultPingCount = 4

// PingCommand builds a ping invocation that ends with a summary line
func PingCommand(target string, count int) string {
	if count <= 0 {
		count = DefaultPingCount
	}
	return fmt.Sprintf("ping -c %d %s", count, target)
}

// TracepathCommand builds a tracepath invocation without name resolution
func TracepathCommand(target string) string {
	return "tracepath -n " + target
}

// DetectKind picks the parser for an arbitrary command by its program name
func DetectKind(command string) domain.DiagnosticKind {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return domain.DiagnosticCommand
	}

	switch path.Base(fields[0]) {
	case "ping", "ping6":
		return domain.DiagnosticPing
	case "tracepath", "tracepath6":
		return domain.DiagnosticTracepath
	default:
		return domain.DiagnosticCommand
	}
}
