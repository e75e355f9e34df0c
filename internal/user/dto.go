package user

import (
	"github.com/frahmantamala/lead-rotation/internal"
	datamodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/user"
)

type CreateDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}

func (d CreateDTO) Validate() *internal.AppError {
	if d.Username == "" || d.Password == "" || d.Name == "" || d.Role == "" {
		return internal.NewValidationError("Missing required fields", internal.ErrCodeMissingFields)
	}
	if !datamodel.Role(d.Role).Valid() {
		return internal.ErrInvalidRole
	}
	return nil
}

// UpdateDTO carries a partial update; nil fields are left untouched.
type UpdateDTO struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Email    *string `json:"email,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

func (d UpdateDTO) Validate() *internal.AppError {
	if d.Role != nil && !datamodel.Role(*d.Role).Valid() {
		return internal.ErrInvalidRole
	}
	return nil
}

// SelfServiceOnly strips everything except the fields a non-manager may
// change on their own record.
func (d UpdateDTO) SelfServiceOnly() UpdateDTO {
	return UpdateDTO{Password: d.Password, Email: d.Email}
}

type TemporaryInactiveDTO struct {
	Minutes int `json:"minutes"`
}

func (d TemporaryInactiveDTO) Validate() *internal.AppError {
	switch d.Minutes {
	case 30, 60, 90:
		return nil
	}
	return internal.NewValidationError("Invalid minutes value. Must be 30, 60, or 90.", internal.ErrCodeInvalidMinutes)
}
