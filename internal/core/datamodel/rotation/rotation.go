package rotation

import (
	"strconv"
	"time"
)

// Employee is one element of the rotation queue. IsActive and
// TemporaryInactiveUntil are distinct: the latter is a self-expiring
// override that implies inactive until the deadline passes.
type Employee struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	IsActive               bool       `json:"isActive"`
	TemporaryInactiveUntil *time.Time `json:"temporaryInactiveUntil,omitempty"`
}

// SystemState is the canonical rotation record: the ordered employee queue
// plus the "who is up" pointer.
//
// Invariant: 0 <= CurrentUpIndex < max(1, len(Employees)). On an empty
// queue the index is conventionally 0 and the current employee undefined.
type SystemState struct {
	Employees      []Employee `json:"employees"`
	CurrentUpIndex int        `json:"currentUpIndex"`
	LastUpdated    time.Time  `json:"lastUpdated"`
}

// Key is the logical record name in the store.
const Key = "system-state"

// FreshID returns a unique-enough token for new employees. Millisecond
// timestamps match the IDs already in production data.
func FreshID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// CurrentEmployee returns the employee at the pointer, or nil on an empty
// queue.
func (s *SystemState) CurrentEmployee() *Employee {
	if len(s.Employees) == 0 || s.CurrentUpIndex < 0 || s.CurrentUpIndex >= len(s.Employees) {
		return nil
	}
	return &s.Employees[s.CurrentUpIndex]
}

func (s *SystemState) FindEmployee(id string) *Employee {
	for i := range s.Employees {
		if s.Employees[i].ID == id {
			return &s.Employees[i]
		}
	}
	return nil
}

// Add appends a new active employee. The pointer is never touched.
func (s *SystemState) Add(id, name string) Employee {
	emp := Employee{ID: id, Name: name, IsActive: true}
	s.Employees = append(s.Employees, emp)
	return emp
}

// Remove filters the employee out. If the pointer falls out of range it
// resets to 0, not to the last valid index. Unknown ids are a silent no-op.
func (s *SystemState) Remove(id string) *Employee {
	removed := s.FindEmployee(id)
	var kept *Employee
	if removed != nil {
		cp := *removed
		kept = &cp
	}

	filtered := s.Employees[:0]
	for _, emp := range s.Employees {
		if emp.ID != id {
			filtered = append(filtered, emp)
		}
	}
	s.Employees = filtered

	if s.CurrentUpIndex >= len(s.Employees) {
		s.CurrentUpIndex = 0
	}
	return kept
}

// Cycle advances the pointer to the next employee, wrapping at the end.
// No-op on an empty queue.
func (s *SystemState) Cycle() {
	if len(s.Employees) > 0 {
		s.CurrentUpIndex = (s.CurrentUpIndex + 1) % len(s.Employees)
	}
}

// Reorder replaces the queue wholesale with the caller-supplied order and
// resets the pointer to 0 unconditionally. Continuity of "who was up" is
// intentionally discarded.
func (s *SystemState) Reorder(employees []Employee) {
	if employees == nil {
		employees = []Employee{}
	}
	s.Employees = employees
	s.CurrentUpIndex = 0
}

// Toggle flips IsActive for the matching employee. Pointer and order are
// untouched; unknown ids are a silent no-op.
func (s *SystemState) Toggle(id string) *Employee {
	emp := s.FindEmployee(id)
	if emp == nil {
		return nil
	}
	emp.IsActive = !emp.IsActive
	return emp
}

// Reconcile flips back any employee whose temporary inactivity deadline has
// passed and clears the override. Returns true when the state changed and
// needs persisting. Reactivation is pull-based: callers run this at the top
// of every read instead of relying on a background scheduler.
func (s *SystemState) Reconcile(now time.Time) bool {
	changed := false
	for i := range s.Employees {
		until := s.Employees[i].TemporaryInactiveUntil
		if until != nil && !now.Before(*until) {
			s.Employees[i].IsActive = true
			s.Employees[i].TemporaryInactiveUntil = nil
			changed = true
		}
	}
	return changed
}

// Names returns the queue order, used for reorder audit summaries.
func (s *SystemState) Names() []string {
	names := make([]string, len(s.Employees))
	for i, emp := range s.Employees {
		names[i] = emp.Name
	}
	return names
}

// Default returns the state seeded on first boot.
func Default(now time.Time) SystemState {
	return SystemState{
		Employees: []Employee{
			{ID: "1", Name: "John Smith", IsActive: true},
			{ID: "2", Name: "Sarah Johnson", IsActive: true},
			{ID: "3", Name: "Mike Davis", IsActive: true},
			{ID: "4", Name: "Emily Brown", IsActive: true},
		},
		CurrentUpIndex: 0,
		LastUpdated:    now,
	}
}
