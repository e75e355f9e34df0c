package notification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/lead-rotation/internal"
	datamodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/notification"
	"github.com/frahmantamala/lead-rotation/internal/storage"
)

// maskedPassword replaces the stored SMTP password on reads so it never
// leaves the server.
const maskedPassword = "********"

// Service owns the singleton notification settings record.
type Service struct {
	store  storage.Store
	logger *slog.Logger
}

func NewService(store storage.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Settings returns the current settings with the SMTP password masked.
// A missing record yields the defaults.
func (s *Service) Settings(ctx context.Context) (datamodel.Settings, error) {
	settings, err := s.load(ctx)
	if err != nil {
		return datamodel.Settings{}, err
	}
	if settings.SMTPPassword != "" {
		settings.SMTPPassword = maskedPassword
	}
	return settings, nil
}

// Update replaces the settings record. A masked or empty incoming SMTP
// password keeps the stored one, so clients can round-trip the settings
// form without knowing the secret.
func (s *Service) Update(ctx context.Context, incoming datamodel.Settings) (datamodel.Settings, error) {
	updated, err := storage.Update(ctx, s.store, datamodel.Key, datamodel.Default, func(current *datamodel.Settings) error {
		if incoming.SMTPPassword == "" || incoming.SMTPPassword == maskedPassword {
			incoming.SMTPPassword = current.SMTPPassword
		}
		*current = incoming
		return nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			return datamodel.Settings{}, internal.ErrWriteConflict
		}
		return datamodel.Settings{}, internal.NewStorageError("failed to save notification settings", err)
	}

	if updated.SMTPPassword != "" {
		updated.SMTPPassword = maskedPassword
	}
	return updated, nil
}

// load reads the raw record, unmasked. The dispatcher and the test-mail
// endpoint need the real SMTP password.
func (s *Service) load(ctx context.Context) (datamodel.Settings, error) {
	settings, _, err := storage.GetJSON[datamodel.Settings](ctx, s.store, datamodel.Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return datamodel.Default(), nil
		}
		return datamodel.Settings{}, internal.NewStorageError("failed to load notification settings", err)
	}
	return settings, nil
}
