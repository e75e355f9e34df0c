package lead

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/lead-rotation/internal/audit"
	auditmodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/audit"
	datamodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/lead"
	"github.com/frahmantamala/lead-rotation/internal/core/events"
	"github.com/frahmantamala/lead-rotation/internal/storage"
)

// Service owns the capped lead-assignment log.
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

// Assign records a lead handoff: stamps id, time and acting identity,
// inserts at the head and caps at MaxAssignments. The audit entry and the
// notification event are best-effort side channels.
func (s *Service) Assign(ctx context.Context, leadName, employeeID, employeeName, source, assignedBy string) (datamodel.Assignment, error) {
	if assignedBy == "" {
		assignedBy = "system"
	}
	if source == "" {
		source = "unknown"
	}

	assignment := datamodel.Assignment{
		ID:           strconv.FormatInt(s.now().UnixNano(), 10),
		LeadName:     strings.TrimSpace(leadName),
		EmployeeID:   employeeID,
		EmployeeName: employeeName,
		AssignedAt:   s.now(),
		AssignedBy:   assignedBy,
		Source:       source,
	}

	_, err := storage.Update(ctx, s.store, datamodel.Key,
		func() []datamodel.Assignment { return []datamodel.Assignment{} },
		func(log *[]datamodel.Assignment) error {
			assignments := append([]datamodel.Assignment{assignment}, *log...)
			if len(assignments) > datamodel.MaxAssignments {
				assignments = assignments[:datamodel.MaxAssignments]
			}
			*log = assignments
			return nil
		})
	if err != nil {
		return datamodel.Assignment{}, err
	}

	details := fmt.Sprintf("Assigned lead %q to %s", assignment.LeadName, employeeName)
	s.audit.TryRecord(ctx, auditmodel.Entry{
		Action:  auditmodel.ActionLeadAssignment,
		User:    assignedBy,
		Source:  source,
		Details: details,
		AfterState: map[string]interface{}{
			"assignment": map[string]interface{}{
				"leadName":     assignment.LeadName,
				"employeeName": employeeName,
				"assignedAt":   assignment.AssignedAt,
			},
		},
	})

	s.bus.Publish(context.WithoutCancel(ctx), events.NewStateChanged(string(auditmodel.ActionLeadAssignment), details, assignedBy))

	return assignment, nil
}

// List returns assignments newest-first; a missing record is an empty log.
func (s *Service) List(ctx context.Context) ([]datamodel.Assignment, error) {
	assignments, _, err := storage.GetJSON[[]datamodel.Assignment](ctx, s.store, datamodel.Key)
	if err != nil {
		if err == storage.ErrNotFound {
			return []datamodel.Assignment{}, nil
		}
		return nil, err
	}
	return assignments, nil
}
