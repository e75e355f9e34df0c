package audit

import "time"

// Action is the fixed vocabulary of auditable state changes.
type Action string

const (
	ActionAdd               Action = "add"
	ActionRemove            Action = "remove"
	ActionCycle             Action = "cycle"
	ActionReorder           Action = "reorder"
	ActionToggle            Action = "toggle"
	ActionLogin             Action = "login"
	ActionLoginFailed       Action = "login_failed"
	ActionLogout            Action = "logout"
	ActionLeadAssignment    Action = "lead_assignment"
	ActionCreateUser        Action = "create_user"
	ActionUpdateUser        Action = "update_user"
	ActionDeleteUser        Action = "delete_user"
	ActionTemporaryInactive Action = "temporary_inactive"
)

// Entry is one immutable audit record. Created exactly once per mutating
// operation; the log is ordered newest-first and capped at MaxEntries with
// the oldest silently dropped.
type Entry struct {
	ID          string      `json:"id"`
	Timestamp   time.Time   `json:"timestamp"`
	Action      Action      `json:"action"`
	User        string      `json:"user"`
	Source      string      `json:"source"`
	Details     string      `json:"details"`
	BeforeState interface{} `json:"beforeState,omitempty"`
	AfterState  interface{} `json:"afterState,omitempty"`
}

const (
	// Key is the logical record name in the store.
	Key = "audit-log"

	// MaxEntries caps the log; older entries are evicted on append.
	MaxEntries = 1000
)
