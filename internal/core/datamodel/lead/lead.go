package lead

import "time"

// Assignment records that an incoming sales lead was handed to a specific
// employee. Immutable once created.
type Assignment struct {
	ID           string    `json:"id"`
	LeadName     string    `json:"leadName"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	AssignedAt   time.Time `json:"assignedAt"`
	AssignedBy   string    `json:"assignedBy"`
	Source       string    `json:"source"`
}

const (
	// Key is the logical record name in the store.
	Key = "lead-assignments"

	// MaxAssignments caps the log, newest-first.
	MaxAssignments = 1000
)
