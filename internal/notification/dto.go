package notification

import (
	"strings"

	"github.com/frahmantamala/lead-rotation/internal"
	datamodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/notification"
)

type SettingsDTO struct {
	EmailEnabled            bool   `json:"emailEnabled"`
	AdminEmail              string `json:"adminEmail"`
	NotifyOnLogin           bool   `json:"notifyOnLogin"`
	NotifyOnEmployeeRemoval bool   `json:"notifyOnEmployeeRemoval"`
	NotifyOnSystemChanges   bool   `json:"notifyOnSystemChanges"`
	SMTPHost                string `json:"smtpHost"`
	SMTPPort                int    `json:"smtpPort"`
	SMTPUser                string `json:"smtpUser"`
	SMTPPassword            string `json:"smtpPassword"`
}

func (d SettingsDTO) Validate() *internal.AppError {
	if d.EmailEnabled {
		if strings.TrimSpace(d.AdminEmail) == "" || !strings.Contains(d.AdminEmail, "@") {
			return internal.NewValidationError("a valid admin email is required when email is enabled", internal.ErrCodeMissingFields)
		}
		if strings.TrimSpace(d.SMTPHost) == "" {
			return internal.NewValidationError("SMTP host is required when email is enabled", internal.ErrCodeMissingFields)
		}
	}
	if d.SMTPPort < 0 || d.SMTPPort > 65535 {
		return internal.NewValidationError("SMTP port must be between 0 and 65535", internal.ErrCodeMissingFields)
	}
	return nil
}

func (d SettingsDTO) ToModel() datamodel.Settings {
	return datamodel.Settings{
		EmailEnabled:            d.EmailEnabled,
		AdminEmail:              strings.TrimSpace(d.AdminEmail),
		NotifyOnLogin:           d.NotifyOnLogin,
		NotifyOnEmployeeRemoval: d.NotifyOnEmployeeRemoval,
		NotifyOnSystemChanges:   d.NotifyOnSystemChanges,
		SMTPHost:                strings.TrimSpace(d.SMTPHost),
		SMTPPort:                d.SMTPPort,
		SMTPUser:                strings.TrimSpace(d.SMTPUser),
		SMTPPassword:            d.SMTPPassword,
	}
}
