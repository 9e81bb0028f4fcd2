// Package service runs diagnostics inside lab units and records the results.
//
// LabService builds the diagnostic command, executes it through an
// executor.Executor, parses the output by kind and stores the run through a
// repository.Repository. Execution failures are errors. Output that does not
// match a parser is not: the run is stored with nil fields.
//
// Progress is published on an EventBus so callers can follow long runs.
package service
