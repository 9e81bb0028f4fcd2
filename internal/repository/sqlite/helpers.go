package sqlite

import (
	"database/sql"
	"time"

	"netlab/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullToIntPtr converts sql.NullInt64 to *int
func nullToIntPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

// intPtrToNull converts *int to sql.NullInt64
func intPtrToNull(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// nullToFloatPtr converts sql.NullFloat64 to *float64
func nullToFloatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

// floatPtrToNull converts *float64 to sql.NullFloat64
func floatPtrToNull(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a column to diagnostic_runs:
// 1. Add field to runRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update runColumns constant - APPEND to end
// 4. Update toDomain() and runInsertArgs()
// 5. Add the column to the schema in migrate()
//
// CRITICAL: Column order must match between runColumns and scanArgs().
// Same pattern applies to ping_results.

// ============================================================================
// Run Row Scanner
// ============================================================================

// runRow holds all columns from a diagnostic_runs query for scanning
type runRow struct {
	ID         int64
	Host       string
	Kind       string
	Target     sql.NullString
	Command    string
	Output     string
	ExitCode   int
	StartedAt  int64 // unix nanoseconds, UTC
	DurationNs int64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match runColumns order exactly
func (r *runRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,         // 1
		&r.Host,       // 2
		&r.Kind,       // 3
		&r.Target,     // 4
		&r.Command,    // 5
		&r.Output,     // 6
		&r.ExitCode,   // 7
		&r.StartedAt,  // 8
		&r.DurationNs, // 9
	}
}

// toDomain converts the scanned row to a domain.DiagnosticRun
func (r *runRow) toDomain() *domain.DiagnosticRun {
	return &domain.DiagnosticRun{
		ID:        r.ID,
		Host:      r.Host,
		Kind:      domain.DiagnosticKind(r.Kind),
		Target:    nullToString(r.Target),
		Command:   r.Command,
		Output:    r.Output,
		ExitCode:  r.ExitCode,
		StartedAt: time.Unix(0, r.StartedAt).UTC(),
		Duration:  time.Duration(r.DurationNs),
	}
}

// runColumns is the SELECT column list for run queries
const runColumns = `id, host, kind, target, command, output, exit_code, started_at, duration_ns`

// runInsertArgs prepares arguments for a run INSERT
// Returns: host, kind, target, command, output, exit_code, started_at, duration_ns
func runInsertArgs(run *domain.DiagnosticRun) []interface{} {
	return []interface{}{
		run.Host,
		string(run.Kind),
		stringToNull(run.Target),
		run.Command,
		run.Output,
		run.ExitCode,
		run.StartedAt.UTC().UnixNano(),
		int64(run.Duration),
	}
}

// ============================================================================
// Ping Row Scanner
// ============================================================================

// pingRow holds the nullable parsed ping columns
type pingRow struct {
	Transmitted       sql.NullInt64
	Received          sql.NullInt64
	Duplicates        sql.NullInt64
	Errors            sql.NullInt64
	PacketLossPercent sql.NullFloat64
	TimeMs            sql.NullFloat64
	RTTMin            sql.NullFloat64
	RTTAvg            sql.NullFloat64
	RTTMax            sql.NullFloat64
	RTTMdev           sql.NullFloat64
}

// scanArgs MUST match pingColumns order exactly
func (r *pingRow) scanArgs() []interface{} {
	return []interface{}{
		&r.Transmitted,
		&r.Received,
		&r.Duplicates,
		&r.Errors,
		&r.PacketLossPercent,
		&r.TimeMs,
		&r.RTTMin,
		&r.RTTAvg,
		&r.RTTMax,
		&r.RTTMdev,
	}
}

func (r *pingRow) toDomain() *domain.PingResult {
	return &domain.PingResult{
		Transmitted:       nullToIntPtr(r.Transmitted),
		Received:          nullToIntPtr(r.Received),
		Duplicates:        nullToIntPtr(r.Duplicates),
		Errors:            nullToIntPtr(r.Errors),
		PacketLossPercent: nullToFloatPtr(r.PacketLossPercent),
		TimeMs:            nullToFloatPtr(r.TimeMs),
		RTTMin:            nullToFloatPtr(r.RTTMin),
		RTTAvg:            nullToFloatPtr(r.RTTAvg),
		RTTMax:            nullToFloatPtr(r.RTTMax),
		RTTMdev:           nullToFloatPtr(r.RTTMdev),
	}
}

const pingColumns = `transmitted, received, duplicates, errors, packet_loss_percent,
	time_ms, rtt_min, rtt_avg, rtt_max, rtt_mdev`

// pingInsertArgs prepares the ping columns for INSERT, after run_id
func pingInsertArgs(runID int64, p *domain.PingResult) []interface{} {
	return []interface{}{
		runID,
		intPtrToNull(p.Transmitted),
		intPtrToNull(p.Received),
		intPtrToNull(p.Duplicates),
		intPtrToNull(p.Errors),
		floatPtrToNull(p.PacketLossPercent),
		floatPtrToNull(p.TimeMs),
		floatPtrToNull(p.RTTMin),
		floatPtrToNull(p.RTTAvg),
		floatPtrToNull(p.RTTMax),
		floatPtrToNull(p.RTTMdev),
	}
}
