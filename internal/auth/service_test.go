package auth_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/lead-rotation/internal"
	"github.com/frahmantamala/lead-rotation/internal/auth"
	auditmodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/audit"
	usermodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/user"
	"github.com/frahmantamala/lead-rotation/internal/core/events"
)

// Mock directory for testing
type mockDirectory struct {
	users   map[string]usermodel.User
	touched []string
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{users: make(map[string]usermodel.User)}
}

func (m *mockDirectory) FindByUsername(_ context.Context, username string) (usermodel.User, error) {
	u, ok := m.users[username]
	if !ok {
		return usermodel.User{}, internal.ErrUserNotFound
	}
	return u, nil
}

func (m *mockDirectory) TouchLastLogin(_ context.Context, id string) {
	m.touched = append(m.touched, id)
}

// Mock rotation ensurer for testing
type mockEnsurer struct {
	ensured []string
	err     error
}

func (m *mockEnsurer) EnsureActiveOnLogin(_ context.Context, name, _ string) error {
	m.ensured = append(m.ensured, name)
	return m.err
}

// Mock audit recorder for testing
type mockAuditRecorder struct {
	entries []auditmodel.Entry
}

func (m *mockAuditRecorder) TryRecord(_ context.Context, entry auditmodel.Entry) {
	m.entries = append(m.entries, entry)
}

// Mock event publisher for testing
type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(_ context.Context, event events.Event) {
	m.published = append(m.published, event)
}

func (m *mockPublisher) actions() []string {
	var actions []string
	for _, event := range m.published {
		payload, ok := event.Payload().(map[string]interface{})
		if !ok {
			continue
		}
		if action, ok := payload["action"].(string); ok {
			actions = append(actions, action)
		}
	}
	return actions
}

var _ = Describe("AuthService", func() {
	var (
		service   *auth.Service
		directory *mockDirectory
		ensurer   *mockEnsurer
		recorder  *mockAuditRecorder
		publisher *mockPublisher
		tokens    *auth.JWTTokenGenerator
		ctx       context.Context
	)

	const secret = "test-secret-key-at-least-32-characters!!"

	hashOf := func(pw string) string {
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
		ExpectWithOffset(1, err).ToNot(HaveOccurred())
		return string(hash)
	}

	BeforeEach(func() {
		directory = newMockDirectory()
		ensurer = &mockEnsurer{}
		recorder = &mockAuditRecorder{}
		publisher = &mockPublisher{}
		tokens = auth.NewJWTTokenGenerator(secret, time.Hour)
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(directory, ensurer, recorder, publisher, tokens, logger)
	})

	Describe("Login", func() {
		Context("with valid manager credentials", func() {
			BeforeEach(func() {
				directory.users["boss"] = usermodel.User{
					ID: "u1", Username: "boss", Name: "The Boss",
					Role: usermodel.RoleManager, IsActive: true,
					Password: hashOf("secret123"),
				}
			})

			It("should return the user and a verifiable token", func() {
				// When
				u, token, err := service.Login(ctx, auth.LoginDTO{Username: "boss", Password: "secret123"})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(u.ID).To(Equal("u1"))
				Expect(token).ToNot(BeEmpty())

				session, err := service.Verify(token)
				Expect(err).ToNot(HaveOccurred())
				Expect(session.UserID).To(Equal("u1"))
				Expect(session.Role).To(Equal("manager"))
			})

			It("should stamp lastLogin and audit the login", func() {
				_, _, err := service.Login(ctx, auth.LoginDTO{Username: "boss", Password: "secret123"})
				Expect(err).ToNot(HaveOccurred())

				Expect(directory.touched).To(Equal([]string{"u1"}))
				Expect(recorder.entries).To(HaveLen(1))
				Expect(recorder.entries[0].Action).To(Equal(auditmodel.ActionLogin))
				Expect(recorder.entries[0].Source).To(Equal("login-page"))
			})

			It("should publish a login event for the dispatcher", func() {
				_, _, err := service.Login(ctx, auth.LoginDTO{Username: "boss", Password: "secret123"})
				Expect(err).ToNot(HaveOccurred())

				Expect(publisher.actions()).To(Equal([]string{"login"}))
				Expect(publisher.published[0].EventType()).To(Equal(events.StateChangedType))
			})

			It("should not touch the rotation for non-salespeople", func() {
				_, _, err := service.Login(ctx, auth.LoginDTO{Username: "boss", Password: "secret123"})
				Expect(err).ToNot(HaveOccurred())

				Expect(ensurer.ensured).To(BeEmpty())
			})
		})

		Context("with an active salesperson", func() {
			BeforeEach(func() {
				directory.users["jsmith"] = usermodel.User{
					ID: "u2", Username: "jsmith", Name: "John Smith",
					Role: usermodel.RoleSalesperson, IsActive: true,
					Password: hashOf("secret123"),
				}
			})

			It("should ensure they are active in the rotation", func() {
				_, _, err := service.Login(ctx, auth.LoginDTO{Username: "jsmith", Password: "secret123"})
				Expect(err).ToNot(HaveOccurred())

				Expect(ensurer.ensured).To(Equal([]string{"John Smith"}))
			})

			It("should still log in when the rotation update fails", func() {
				ensurer.err = internal.ErrWriteConflict

				_, token, err := service.Login(ctx, auth.LoginDTO{Username: "jsmith", Password: "secret123"})

				Expect(err).ToNot(HaveOccurred())
				Expect(token).ToNot(BeEmpty())
			})
		})

		Context("with an inactive salesperson", func() {
			It("should not insert them into the rotation", func() {
				directory.users["jsmith"] = usermodel.User{
					ID: "u2", Username: "jsmith", Name: "John Smith",
					Role: usermodel.RoleSalesperson, IsActive: false,
					Password: hashOf("secret123"),
				}

				_, _, err := service.Login(ctx, auth.LoginDTO{Username: "jsmith", Password: "secret123"})

				Expect(err).ToNot(HaveOccurred())
				Expect(ensurer.ensured).To(BeEmpty())
			})
		})

		Context("with a legacy plaintext password", func() {
			It("should still authenticate", func() {
				directory.users["legacy"] = usermodel.User{
					ID: "u3", Username: "legacy", Name: "Old Timer",
					Role: usermodel.RoleBDC, IsActive: true,
					Password: "plain-old-password",
				}

				_, token, err := service.Login(ctx, auth.LoginDTO{Username: "legacy", Password: "plain-old-password"})

				Expect(err).ToNot(HaveOccurred())
				Expect(token).ToNot(BeEmpty())
			})
		})

		Context("with a wrong password", func() {
			It("should reject and audit the failure without side effects", func() {
				directory.users["boss"] = usermodel.User{
					ID: "u1", Username: "boss", Name: "The Boss",
					Role: usermodel.RoleManager, IsActive: true,
					Password: hashOf("secret123"),
				}

				_, _, err := service.Login(ctx, auth.LoginDTO{Username: "boss", Password: "wrong"})

				Expect(err).To(MatchError(internal.ErrInvalidCredentials))
				Expect(directory.touched).To(BeEmpty())
				Expect(ensurer.ensured).To(BeEmpty())
				Expect(recorder.entries).To(HaveLen(1))
				Expect(recorder.entries[0].Action).To(Equal(auditmodel.ActionLoginFailed))
				Expect(publisher.actions()).To(Equal([]string{"login_failed"}))
			})
		})

		Context("with an unknown username", func() {
			It("should return the same invalid-credentials error", func() {
				_, _, err := service.Login(ctx, auth.LoginDTO{Username: "ghost", Password: "whatever"})

				Expect(err).To(MatchError(internal.ErrInvalidCredentials))
				Expect(recorder.entries[0].Action).To(Equal(auditmodel.ActionLoginFailed))
			})
		})

		Context("with missing fields", func() {
			It("should return a validation error", func() {
				_, _, err := service.Login(ctx, auth.LoginDTO{Username: "boss"})

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeMissingFields))
			})
		})
	})

	Describe("Verify", func() {
		It("should reject an expired token", func() {
			expired := &auth.JWTTokenGenerator{Secret: []byte(secret), SessionTTL: -time.Hour}
			token, err := expired.Issue("u1", "boss", "manager", "The Boss")
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Verify(token)

			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("should reject a token signed with another secret", func() {
			other := auth.NewJWTTokenGenerator("another-secret-that-is-long-enough-too", time.Hour)
			token, err := other.Issue("u1", "boss", "manager", "The Boss")
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Verify(token)

			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("should reject garbage", func() {
			_, err := service.Verify("not-a-token")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})

	Describe("Logout", func() {
		It("should audit with the username", func() {
			service.Logout(ctx, "boss")

			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Action).To(Equal(auditmodel.ActionLogout))
			Expect(recorder.entries[0].User).To(Equal("boss"))
		})

		It("should fall back to unknown for anonymous logouts", func() {
			service.Logout(ctx, "")

			Expect(recorder.entries[0].User).To(Equal("unknown"))
		})
	})
})
