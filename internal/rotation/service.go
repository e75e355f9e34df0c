package rotation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/lead-rotation/internal"
	"github.com/frahmantamala/lead-rotation/internal/audit"
	auditmodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/audit"
	datamodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/rotation"
	"github.com/frahmantamala/lead-rotation/internal/core/events"
	"github.com/frahmantamala/lead-rotation/internal/storage"
)

// Service coordinates every state-changing request against the rotation
// record: load current state, apply one transition, persist under
// optimistic concurrency, then best-effort audit and notify. The audit
// append and the notification dispatch are never allowed to roll back or
// block the primary write.
type Service struct {
	store  storage.Store
	audit  *audit.Service
	bus    *events.EventBus
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store storage.Store, auditSvc *audit.Service, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		audit:  auditSvc,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// GetState returns the current rotation state after the lazy reactivation
// sweep. A missing record is seeded with the default queue. When the sweep
// changed anything the state is persisted before being returned; a
// concurrent-write conflict on that persist is tolerated since the next
// reader will reconcile again.
func (s *Service) GetState(ctx context.Context) (datamodel.SystemState, error) {
	state, version, err := storage.GetJSON[datamodel.SystemState](ctx, s.store, datamodel.Key)
	if errors.Is(err, storage.ErrNotFound) {
		state = datamodel.Default(s.now())
		if err := storage.PutJSON(ctx, s.store, datamodel.Key, state, 0); err != nil && !errors.Is(err, storage.ErrVersionConflict) {
			return datamodel.SystemState{}, internal.NewStorageError("Failed to initialize system state", err)
		}
		return state, nil
	}
	if err != nil {
		return datamodel.SystemState{}, internal.NewStorageError("Failed to read system state", err)
	}

	if state.Reconcile(s.now()) {
		state.LastUpdated = s.now()
		if err := storage.PutJSON(ctx, s.store, datamodel.Key, state, version); err != nil && !errors.Is(err, storage.ErrVersionConflict) {
			s.logger.Error("failed to persist reactivation sweep", "error", err)
		}
	}

	return state, nil
}

// Apply runs one rotation transition for the acting identity and returns
// the new state.
func (s *Service) Apply(ctx context.Context, dto ActionDTO, actor string) (datamodel.SystemState, error) {
	if appErr := dto.Validate(); appErr != nil {
		return datamodel.SystemState{}, appErr
	}

	source := dto.Source
	if source == "" {
		source = "unknown"
	}
	if actor == "" {
		actor = "system"
	}

	var details string
	var beforeLog, afterLog interface{}

	state, err := s.update(ctx, func(state *datamodel.SystemState) error {
		state.Reconcile(s.now())

		switch dto.Action {
		case ActionAdd:
			before := len(state.Employees)
			added := state.Add(datamodel.FreshID(s.now()), dto.Name)
			details = fmt.Sprintf("Added employee: %s", dto.Name)
			beforeLog = map[string]interface{}{"employeeCount": before}
			afterLog = map[string]interface{}{"employeeCount": len(state.Employees), "addedEmployee": added}

		case ActionRemove:
			before := len(state.Employees)
			removed := state.Remove(dto.ID)
			name := "Unknown"
			if removed != nil {
				name = removed.Name
			}
			details = fmt.Sprintf("Removed employee: %s", name)
			beforeLog = map[string]interface{}{"employeeCount": before, "removedEmployee": removed}
			afterLog = map[string]interface{}{"employeeCount": len(state.Employees)}

		case ActionCycle:
			prev := state.CurrentEmployee()
			prevIndex := state.CurrentUpIndex
			state.Cycle()
			next := state.CurrentEmployee()
			details = fmt.Sprintf("Cycled from %s to %s", employeeName(prev), employeeName(next))
			beforeLog = map[string]interface{}{"currentUp": employeeName(prev), "currentUpIndex": prevIndex}
			afterLog = map[string]interface{}{"currentUp": employeeName(next), "currentUpIndex": state.CurrentUpIndex}

		case ActionReorder:
			oldOrder := state.Names()
			state.Reorder(dto.Employees)
			details = dto.Details
			if details == "" {
				details = "Reordered employee queue"
			}
			beforeLog = map[string]interface{}{"order": oldOrder}
			afterLog = map[string]interface{}{"order": state.Names()}

		case ActionToggle:
			var beforeActive bool
			if emp := state.FindEmployee(dto.ID); emp != nil {
				beforeActive = emp.IsActive
			}
			toggled := state.Toggle(dto.ID)
			if toggled != nil {
				verb := "Deactivated"
				if toggled.IsActive {
					verb = "Activated"
				}
				details = fmt.Sprintf("%s employee: %s", verb, toggled.Name)
				beforeLog = map[string]interface{}{"employee": toggled.Name, "status": statusWord(beforeActive)}
				afterLog = map[string]interface{}{"employee": toggled.Name, "status": statusWord(toggled.IsActive)}
			} else {
				details = "Toggled unknown employee"
			}
		}
		return nil
	})
	if err != nil {
		return datamodel.SystemState{}, err
	}

	s.audit.TryRecord(ctx, auditmodel.Entry{
		Action:      auditmodel.Action(dto.Action),
		User:        actor,
		Source:      source,
		Details:     details,
		BeforeState: beforeLog,
		AfterState:  afterLog,
	})

	s.bus.Publish(context.WithoutCancel(ctx), events.NewStateChanged(dto.Action, details, actor))

	return state, nil
}

// EnsureActiveOnLogin inserts a salesperson into the rotation on successful
// login, or reactivates them if they were toggled off without a pending
// temporary-inactivity override. The audit entry carries source "login".
func (s *Service) EnsureActiveOnLogin(ctx context.Context, name, username string) error {
	var action auditmodel.Action
	var details string

	_, err := s.update(ctx, func(state *datamodel.SystemState) error {
		action = ""
		state.Reconcile(s.now())

		var existing *datamodel.Employee
		for i := range state.Employees {
			if state.Employees[i].Name == name {
				existing = &state.Employees[i]
				break
			}
		}

		switch {
		case existing == nil:
			state.Add(datamodel.FreshID(s.now()), name)
			action = auditmodel.ActionAdd
			details = fmt.Sprintf("Added employee: %s", name)
		case !existing.IsActive && existing.TemporaryInactiveUntil == nil:
			existing.IsActive = true
			action = auditmodel.ActionToggle
			details = fmt.Sprintf("Activated employee: %s", name)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if action != "" {
		s.audit.TryRecord(ctx, auditmodel.Entry{
			Action:  action,
			User:    username,
			Source:  "login",
			Details: details,
		})
		s.bus.Publish(context.WithoutCancel(ctx), events.NewStateChanged(string(action), details, username))
	}

	return nil
}

// SetEmployeeInactiveUntil mirrors a user's temporary inactivity onto the
// matching rotation entry (matched by name). Unknown names are a silent
// no-op, consistent with remove/toggle.
func (s *Service) SetEmployeeInactiveUntil(ctx context.Context, name string, until time.Time) error {
	_, err := s.update(ctx, func(state *datamodel.SystemState) error {
		for i := range state.Employees {
			if state.Employees[i].Name == name {
				deadline := until
				state.Employees[i].IsActive = false
				state.Employees[i].TemporaryInactiveUntil = &deadline
			}
		}
		return nil
	})
	return err
}

// update wraps the optimistic read-modify-write cycle, stamping LastUpdated
// on every persisted mutation.
func (s *Service) update(ctx context.Context, modify func(*datamodel.SystemState) error) (datamodel.SystemState, error) {
	state, err := storage.Update(ctx, s.store, datamodel.Key,
		func() datamodel.SystemState { return datamodel.Default(s.now()) },
		func(state *datamodel.SystemState) error {
			if err := modify(state); err != nil {
				return err
			}
			state.LastUpdated = s.now()
			return nil
		})
	if err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			return datamodel.SystemState{}, internal.ErrWriteConflict
		}
		if appErr, ok := internal.IsAppError(err); ok {
			return datamodel.SystemState{}, appErr
		}
		return datamodel.SystemState{}, internal.NewStorageError("Failed to update system state", err)
	}
	return state, nil
}

func employeeName(emp *datamodel.Employee) string {
	if emp == nil {
		return "None"
	}
	return emp.Name
}

func statusWord(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
