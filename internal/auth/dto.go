package auth

import "github.com/frahmantamala/lead-rotation/internal"

type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() *internal.AppError {
	if d.Username == "" || d.Password == "" {
		return internal.NewValidationError("username and password are required", internal.ErrCodeMissingFields)
	}
	return nil
}
