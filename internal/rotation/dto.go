package rotation

import (
	"github.com/frahmantamala/lead-rotation/internal"
	datamodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/rotation"
)

const (
	ActionAdd     = "add"
	ActionRemove  = "remove"
	ActionCycle   = "cycle"
	ActionReorder = "reorder"
	ActionToggle  = "toggle"
)

// ActionDTO is the body of POST /api/system-state. Which fields matter
// depends on the action.
type ActionDTO struct {
	Action    string               `json:"action"`
	Source    string               `json:"source"`
	Name      string               `json:"name,omitempty"`
	ID        string               `json:"id,omitempty"`
	Employees []datamodel.Employee `json:"employees,omitempty"`
	Details   string               `json:"details,omitempty"`
}

func (d ActionDTO) Validate() *internal.AppError {
	switch d.Action {
	case ActionAdd:
		if d.Name == "" {
			return internal.NewValidationError("name is required for add", internal.ErrCodeMissingFields)
		}
	case ActionRemove, ActionToggle:
		if d.ID == "" {
			return internal.NewValidationError("id is required for "+d.Action, internal.ErrCodeMissingFields)
		}
	case ActionReorder:
		if d.Employees == nil {
			return internal.NewValidationError("employees is required for reorder", internal.ErrCodeMissingFields)
		}
	case ActionCycle:
	default:
		return internal.NewValidationError("Invalid action", internal.ErrCodeInvalidAction)
	}
	return nil
}
