package audit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	datamodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/audit"
	"github.com/frahmantamala/lead-rotation/internal/storage"
)

// Service owns the append-only audit log. Appends are best-effort from the
// caller's point of view: every call site wraps Record in a log-and-continue
// so a failed append never aborts the business operation that triggered it.
type Service struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store storage.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Record assigns a fresh id and timestamp, inserts the entry at the head
// and truncates the log to the newest MaxEntries.
func (s *Service) Record(ctx context.Context, entry datamodel.Entry) error {
	entry.ID = strconv.FormatInt(s.now().UnixNano(), 10)
	entry.Timestamp = s.now()

	_, err := storage.Update(ctx, s.store, datamodel.Key,
		func() []datamodel.Entry { return []datamodel.Entry{} },
		func(log *[]datamodel.Entry) error {
			entries := append([]datamodel.Entry{entry}, *log...)
			if len(entries) > datamodel.MaxEntries {
				entries = entries[:datamodel.MaxEntries]
			}
			*log = entries
			return nil
		})
	if err != nil {
		return err
	}

	s.logger.Debug("audit entry recorded",
		"action", entry.Action,
		"user", entry.User,
		"source", entry.Source)
	return nil
}

// TryRecord is Record with the best-effort contract applied at this layer:
// failures are logged and swallowed.
func (s *Service) TryRecord(ctx context.Context, entry datamodel.Entry) {
	if err := s.Record(ctx, entry); err != nil {
		s.logger.Error("failed to record audit entry",
			"action", entry.Action,
			"error", err)
	}
}

// List returns the log newest-first. A missing record is an empty log.
func (s *Service) List(ctx context.Context) ([]datamodel.Entry, error) {
	entries, _, err := storage.GetJSON[[]datamodel.Entry](ctx, s.store, datamodel.Key)
	if err != nil {
		if err == storage.ErrNotFound {
			return []datamodel.Entry{}, nil
		}
		return nil, err
	}
	return entries, nil
}
