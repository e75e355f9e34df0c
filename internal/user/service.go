package user

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/lead-rotation/internal"
	datamodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/user"
	"github.com/frahmantamala/lead-rotation/internal/storage"
)

// RotationMirror is the slice of the rotation coordinator the directory
// needs for the dual-write rule: a user's temporary inactivity must land on
// their rotation entry in the same mutation.
type RotationMirror interface {
	SetEmployeeInactiveUntil(ctx context.Context, name string, until time.Time) error
}

// Service is the sole writer of the user directory record.
type Service struct {
	store      storage.Store
	rotation   RotationMirror
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time
}

func NewService(store storage.Store, rotation RotationMirror, logger *slog.Logger, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		store:      store,
		rotation:   rotation,
		logger:     logger,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]datamodel.User, error) {
	users, _, err := storage.GetJSON[[]datamodel.User](ctx, s.store, datamodel.Key)
	if err != nil {
		if err == storage.ErrNotFound {
			return []datamodel.User{}, nil
		}
		return nil, internal.NewStorageError("Failed to read users", err)
	}
	return users, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (datamodel.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return datamodel.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return datamodel.User{}, internal.ErrUserNotFound
}

// FindByUsername looks a user up case-insensitively. Used by the login
// flow.
func (s *Service) FindByUsername(ctx context.Context, username string) (datamodel.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return datamodel.User{}, err
	}
	needle := strings.ToLower(username)
	for _, u := range users {
		if strings.ToLower(u.Username) == needle {
			return u, nil
		}
	}
	return datamodel.User{}, internal.ErrUserNotFound
}

// Create validates role and username uniqueness (case-insensitive), stores
// the username lowercased and the password bcrypt-hashed.
func (s *Service) Create(ctx context.Context, dto CreateDTO) (datamodel.User, error) {
	if appErr := dto.Validate(); appErr != nil {
		return datamodel.User{}, appErr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return datamodel.User{}, internal.NewInternalError("Failed to hash password", err)
	}

	isActive := true
	if dto.IsActive != nil {
		isActive = *dto.IsActive
	}

	newUser := datamodel.User{
		ID:        uuid.NewString(),
		Username:  strings.ToLower(dto.Username),
		Password:  string(hash),
		Name:      dto.Name,
		Role:      datamodel.Role(dto.Role),
		Email:     dto.Email,
		IsActive:  isActive,
		CreatedAt: s.now(),
	}

	err = s.updateDirectory(ctx, func(users *[]datamodel.User) error {
		if usernameTaken(*users, newUser.Username, "") {
			return internal.ErrDuplicateUsername
		}
		*users = append(*users, newUser)
		return nil
	})
	if err != nil {
		return datamodel.User{}, err
	}

	return newUser, nil
}

// Update merges the provided fields into the user record, re-validating
// username uniqueness when the username changes.
func (s *Service) Update(ctx context.Context, id string, dto UpdateDTO) (datamodel.User, error) {
	if appErr := dto.Validate(); appErr != nil {
		return datamodel.User{}, appErr
	}

	var updated datamodel.User
	err := s.updateDirectory(ctx, func(users *[]datamodel.User) error {
		idx := indexOf(*users, id)
		if idx < 0 {
			return internal.ErrUserNotFound
		}
		u := &(*users)[idx]

		if dto.Username != nil {
			lowered := strings.ToLower(*dto.Username)
			if lowered != u.Username && usernameTaken(*users, lowered, id) {
				return internal.ErrDuplicateUsername
			}
			u.Username = lowered
		}
		if dto.Password != nil && *dto.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
			if err != nil {
				return internal.NewInternalError("Failed to hash password", err)
			}
			u.Password = string(hash)
		}
		if dto.Name != nil {
			u.Name = *dto.Name
		}
		if dto.Role != nil {
			u.Role = datamodel.Role(*dto.Role)
		}
		if dto.Email != nil {
			u.Email = *dto.Email
		}
		if dto.IsActive != nil {
			u.IsActive = *dto.IsActive
		}

		updated = *u
		return nil
	})
	if err != nil {
		return datamodel.User{}, err
	}

	return updated, nil
}

// Delete removes the user and reports whether anything was actually
// removed; false means the caller should report not-found.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	removed := false
	err := s.updateDirectory(ctx, func(users *[]datamodel.User) error {
		filtered := (*users)[:0]
		for _, u := range *users {
			if u.ID == id {
				removed = true
				continue
			}
			filtered = append(filtered, u)
		}
		*users = filtered
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// SetTemporaryInactive schedules the self-expiring inactivity override on
// the user and mirrors it onto the matching rotation entry. Minutes are
// restricted to the allowed set at the API boundary; the directory just
// computes the deadline.
func (s *Service) SetTemporaryInactive(ctx context.Context, id string, minutes int) (datamodel.User, error) {
	until := s.now().Add(time.Duration(minutes) * time.Minute)

	var updated datamodel.User
	err := s.updateDirectory(ctx, func(users *[]datamodel.User) error {
		idx := indexOf(*users, id)
		if idx < 0 {
			return internal.ErrUserNotFound
		}
		u := &(*users)[idx]
		deadline := until
		u.IsActive = false
		u.TemporaryInactiveUntil = &deadline
		updated = *u
		return nil
	})
	if err != nil {
		return datamodel.User{}, err
	}

	if err := s.rotation.SetEmployeeInactiveUntil(ctx, updated.Name, until); err != nil {
		s.logger.Error("failed to mirror temporary inactivity into rotation",
			"user_id", id,
			"error", err)
	}

	return updated, nil
}

// TouchLastLogin stamps the successful-login time. Best-effort; the login
// outcome does not depend on it.
func (s *Service) TouchLastLogin(ctx context.Context, id string) {
	err := s.updateDirectory(ctx, func(users *[]datamodel.User) error {
		idx := indexOf(*users, id)
		if idx < 0 {
			return internal.ErrUserNotFound
		}
		now := s.now()
		(*users)[idx].LastLogin = &now
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to update last login", "user_id", id, "error", err)
	}
}

func (s *Service) updateDirectory(ctx context.Context, modify func(*[]datamodel.User) error) error {
	_, err := storage.Update(ctx, s.store, datamodel.Key,
		func() []datamodel.User { return []datamodel.User{} },
		modify)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return appErr
		}
		return internal.NewStorageError("Failed to update users", err)
	}
	return nil
}

func indexOf(users []datamodel.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func usernameTaken(users []datamodel.User, lowered, excludeID string) bool {
	for _, u := range users {
		if u.ID != excludeID && strings.ToLower(u.Username) == lowered {
			return true
		}
	}
	return false
}
