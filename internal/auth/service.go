package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/lead-rotation/internal"
	auditmodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/audit"
	usermodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/user"
	"github.com/frahmantamala/lead-rotation/internal/core/events"
)

// Directory is the slice of the user directory the login flow needs.
type Directory interface {
	FindByUsername(ctx context.Context, username string) (usermodel.User, error)
	TouchLastLogin(ctx context.Context, id string)
}

// RotationEnsurer handles the salesperson side effect of a successful
// login: make sure they are present and active in the rotation queue.
type RotationEnsurer interface {
	EnsureActiveOnLogin(ctx context.Context, name, username string) error
}

// AuditRecorder is the best-effort audit sink.
type AuditRecorder interface {
	TryRecord(ctx context.Context, entry auditmodel.Entry)
}

// EventPublisher fans login outcomes out to side channels (notification
// dispatch) off the critical path.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

type Service struct {
	directory Directory
	rotation  RotationEnsurer
	audit     AuditRecorder
	bus       EventPublisher
	tokens    TokenGenerator
	logger    *slog.Logger
}

func NewService(directory Directory, rotation RotationEnsurer, auditSvc AuditRecorder, bus EventPublisher, tokens TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		directory: directory,
		rotation:  rotation,
		audit:     auditSvc,
		bus:       bus,
		tokens:    tokens,
		logger:    logger,
	}
}

// Login runs the authentication transition: look the user up by username
// (case-insensitive), compare the password, and on success mint a token,
// stamp lastLogin and apply the salesperson rotation side effect. Failed
// attempts leave an audit trace and never mutate rotation or directory
// state.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (usermodel.User, string, error) {
	if appErr := dto.Validate(); appErr != nil {
		return usermodel.User{}, "", appErr
	}

	u, err := s.directory.FindByUsername(ctx, dto.Username)
	if err != nil {
		s.recordFailure(ctx, dto.Username)
		return usermodel.User{}, "", internal.ErrInvalidCredentials
	}

	if !passwordMatches(u.Password, dto.Password) {
		s.recordFailure(ctx, dto.Username)
		return usermodel.User{}, "", internal.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Username, string(u.Role), u.Name)
	if err != nil {
		return usermodel.User{}, "", internal.NewInternalError("Failed to issue session token", err)
	}

	s.directory.TouchLastLogin(ctx, u.ID)

	s.audit.TryRecord(ctx, auditmodel.Entry{
		Action:  auditmodel.ActionLogin,
		User:    u.Username,
		Source:  "login-page",
		Details: "Successful login",
	})
	s.bus.Publish(context.WithoutCancel(ctx), events.NewStateChanged(string(auditmodel.ActionLogin), "Successful login", u.Username))

	if u.Role == usermodel.RoleSalesperson && u.IsActive {
		if err := s.rotation.EnsureActiveOnLogin(ctx, u.Name, u.Username); err != nil {
			// best-effort: the session is valid even if the rotation
			// insert could not be persisted
			s.logger.Error("failed to ensure salesperson in rotation",
				"username", u.Username,
				"error", err)
		}
	}

	return u, token, nil
}

// Verify decodes a session token. Invalid or expired tokens come back as
// an error the transport layer treats as anonymous, never as a fault.
func (s *Service) Verify(token string) (*internal.Session, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return &internal.Session{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
		Name:     claims.Name,
	}, nil
}

// Logout only audits; the token remains valid until expiry by design
// (stateless sessions), the client just drops it.
func (s *Service) Logout(ctx context.Context, username string) {
	if username == "" {
		username = "unknown"
	}
	s.audit.TryRecord(ctx, auditmodel.Entry{
		Action:  auditmodel.ActionLogout,
		User:    username,
		Source:  "logout",
		Details: "User logged out",
	})
}

func (s *Service) recordFailure(ctx context.Context, username string) {
	if username == "" {
		username = "unknown"
	}
	s.audit.TryRecord(ctx, auditmodel.Entry{
		Action:  auditmodel.ActionLoginFailed,
		User:    username,
		Source:  "login-page",
		Details: "Failed login attempt",
	})
	s.bus.Publish(context.WithoutCancel(ctx), events.NewStateChanged(string(auditmodel.ActionLoginFailed), "Failed login attempt", username))
}

// passwordMatches is hash-aware: bcrypt-hashed stored values are compared
// with bcrypt, legacy plaintext values with a constant-time byte compare.
func passwordMatches(stored, supplied string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
