package notification

// Settings is the singleton notification policy record. It is consumed by
// the dispatcher as a policy oracle; SMTP fields configure the sender.
type Settings struct {
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

// Key is the logical record name in the store.
const Key = "notification-settings"

// Default returns the settings seeded on first boot: email delivery off,
// all notification categories on.
func Default() Settings {
	return Settings{
		EmailEnabled:            false,
		AdminEmail:              "",
		NotifyOnLogin:           true,
		NotifyOnEmployeeRemoval: true,
		NotifyOnSystemChanges:   true,
		SMTPHost:                "smtp.gmail.com",
		SMTPPort:                587,
	}
}
