package lead

import (
	"github.com/frahmantamala/lead-rotation/internal"
)

type AssignDTO struct {
	LeadName     string `json:"leadName"`
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	Source       string `json:"source"`
}

func (d AssignDTO) Validate() *internal.AppError {
	if d.LeadName == "" || d.EmployeeID == "" || d.EmployeeName == "" {
		return internal.NewValidationError("Missing required fields", internal.ErrCodeMissingFields)
	}
	return nil
}
