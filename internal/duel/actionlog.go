package duel

// actionLogCapacity bounds the in-match action log ring buffer surfaced in
// per-view snapshots. Overridable at process start via SetActionLogCapacity
// (wired to the ACTION_LOG_CAPACITY environment variable by
// internal/config); defaults to 100 for callers (tests, fixtures) that
// never call the setter.
var actionLogCapacity = 100

// SetActionLogCapacity configures the action log ring buffer size for every
// Match subsequently constructed in this process. Must be called, if at
// all, before any Match is created; it is not safe for concurrent use with
// appendLog.
func SetActionLogCapacity(n int) {
	if n > 0 {
		actionLogCapacity = n
	}
}

func (m *Match) appendLog(message string) {
	m.ActionLog = append(m.ActionLog, message)
	if len(m.ActionLog) > actionLogCapacity {
		m.ActionLog = m.ActionLog[len(m.ActionLog)-actionLogCapacity:]
	}
}
