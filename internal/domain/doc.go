// Package domain defines the core value types for netlab.
//
// This package contains the declarative inputs and the structured outputs of
// the two netlab transformations: compiling host/network declarations into a
// container topology, and parsing diagnostic command output.
//
// # Topology Types
//
// NetworkSpec describes one logical network as seen from one host: the
// network's subnet and gateway plus the address assigned to that host.
//
// HostSpec describes one unit to provision: its name, the command it runs
// and the ordered list of networks it attaches to.
//
// Topology is the compiled service+network document. It has one service per
// host and one network per distinct network name.
//
// # Diagnostic Types
//
// PingResult holds the counters and round-trip statistics extracted from ping
// output. Every field is a pointer: nil means the value was not reported,
// which is different from a zero reading.
//
// Hop is one tracepath hop. PMTU is only set when the hop line reports it.
//
// DiagnosticRun records one executed diagnostic command with its raw output
// and parsed result.
//
// # Credentials
//
// Secret holds the SSH credentials used to reach a remote container engine.
// Its data never appears in JSON.
//
// # Errors
//
// DuplicateHostError, InvalidHostError, InvalidNetworkError and
// NetworkConflictError are returned by topology compilation. Parsing never
// returns errors.
//
// # Design Principles
//
// - Immutable value records with no behavior beyond small helpers
// - No database or external dependencies
package domain
