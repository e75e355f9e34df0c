package user_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/lead-rotation/internal"
	datamodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/user"
	"github.com/frahmantamala/lead-rotation/internal/storage"
	"github.com/frahmantamala/lead-rotation/internal/user"
)

// Mock rotation mirror for testing
type mockRotationMirror struct {
	calls []mirrorCall
	err   error
}

type mirrorCall struct {
	name  string
	until time.Time
}

func (m *mockRotationMirror) SetEmployeeInactiveUntil(_ context.Context, name string, until time.Time) error {
	m.calls = append(m.calls, mirrorCall{name: name, until: until})
	return m.err
}

var _ = Describe("UserService", func() {
	var (
		service *user.Service
		mirror  *mockRotationMirror
		store   *storage.Memory
		ctx     context.Context
	)

	BeforeEach(func() {
		store = storage.NewMemory()
		mirror = &mockRotationMirror{}
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(store, mirror, logger, bcrypt.MinCost)
	})

	Describe("Create", func() {
		It("should store the username lowercased and the password hashed", func() {
			// When
			created, err := service.Create(ctx, user.CreateDTO{
				Username: "JSmith",
				Password: "secret123",
				Name:     "John Smith",
				Role:     "salesperson",
			})

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(created.ID).ToNot(BeEmpty())
			Expect(created.Username).To(Equal("jsmith"))
			Expect(created.IsActive).To(BeTrue())
			Expect(created.Password).ToNot(Equal("secret123"))
			Expect(bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret123"))).To(Succeed())
		})

		It("should reject a duplicate username case-insensitively", func() {
			_, err := service.Create(ctx, user.CreateDTO{
				Username: "jsmith", Password: "pw", Name: "John", Role: "salesperson",
			})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Create(ctx, user.CreateDTO{
				Username: "JSMITH", Password: "pw", Name: "Impostor", Role: "bdc",
			})

			Expect(err).To(MatchError(internal.ErrDuplicateUsername))
		})

		It("should reject an unknown role", func() {
			_, err := service.Create(ctx, user.CreateDTO{
				Username: "x", Password: "pw", Name: "X", Role: "superadmin",
			})

			Expect(err).To(MatchError(internal.ErrInvalidRole))
		})

		It("should reject missing required fields", func() {
			_, err := service.Create(ctx, user.CreateDTO{Username: "x"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeMissingFields))
		})
	})

	Describe("FindByUsername", func() {
		It("should match case-insensitively", func() {
			_, err := service.Create(ctx, user.CreateDTO{
				Username: "jsmith", Password: "pw", Name: "John", Role: "manager",
			})
			Expect(err).ToNot(HaveOccurred())

			found, err := service.FindByUsername(ctx, "JSmith")

			Expect(err).ToNot(HaveOccurred())
			Expect(found.Name).To(Equal("John"))
		})

		It("should return not-found for unknown usernames", func() {
			_, err := service.FindByUsername(ctx, "ghost")
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("Update", func() {
		var existing datamodel.User

		BeforeEach(func() {
			var err error
			existing, err = service.Create(ctx, user.CreateDTO{
				Username: "jsmith", Password: "old-pw", Name: "John", Role: "salesperson",
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should merge only the provided fields", func() {
			name := "John Q. Smith"

			updated, err := service.Update(ctx, existing.ID, user.UpdateDTO{Name: &name})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Name).To(Equal(name))
			Expect(updated.Username).To(Equal("jsmith"))
			Expect(updated.Role).To(Equal(datamodel.RoleSalesperson))
		})

		It("should rehash a changed password", func() {
			pw := "new-pw"

			updated, err := service.Update(ctx, existing.ID, user.UpdateDTO{Password: &pw})

			Expect(err).ToNot(HaveOccurred())
			Expect(bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("new-pw"))).To(Succeed())
		})

		It("should reject renaming onto a taken username", func() {
			_, err := service.Create(ctx, user.CreateDTO{
				Username: "taken", Password: "pw", Name: "Other", Role: "bdc",
			})
			Expect(err).ToNot(HaveOccurred())

			taken := "TAKEN"
			_, err = service.Update(ctx, existing.ID, user.UpdateDTO{Username: &taken})

			Expect(err).To(MatchError(internal.ErrDuplicateUsername))
		})

		It("should return not-found for an unknown id", func() {
			name := "x"
			_, err := service.Update(ctx, "nope", user.UpdateDTO{Name: &name})
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("Delete", func() {
		It("should report whether a user was actually removed", func() {
			created, err := service.Create(ctx, user.CreateDTO{
				Username: "jsmith", Password: "pw", Name: "John", Role: "salesperson",
			})
			Expect(err).ToNot(HaveOccurred())

			removed, err := service.Delete(ctx, created.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(removed).To(BeTrue())

			removed, err = service.Delete(ctx, created.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(removed).To(BeFalse())
		})
	})

	Describe("SetTemporaryInactive", func() {
		var existing datamodel.User

		BeforeEach(func() {
			var err error
			existing, err = service.Create(ctx, user.CreateDTO{
				Username: "jsmith", Password: "pw", Name: "John Smith", Role: "salesperson",
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should deactivate the user with a deadline and mirror into rotation", func() {
			// When
			updated, err := service.SetTemporaryInactive(ctx, existing.ID, 30)

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())
			Expect(updated.TemporaryInactiveUntil).ToNot(BeNil())
			Expect(updated.TemporaryInactiveUntil.Sub(time.Now())).To(BeNumerically("~", 30*time.Minute, time.Minute))

			Expect(mirror.calls).To(HaveLen(1))
			Expect(mirror.calls[0].name).To(Equal("John Smith"))
		})

		It("should still succeed when the rotation mirror fails", func() {
			mirror.err = internal.ErrWriteConflict

			updated, err := service.SetTemporaryInactive(ctx, existing.ID, 60)

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())
		})

		It("should return not-found for an unknown id", func() {
			_, err := service.SetTemporaryInactive(ctx, "nope", 30)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("TouchLastLogin", func() {
		It("should stamp the last login time", func() {
			created, err := service.Create(ctx, user.CreateDTO{
				Username: "jsmith", Password: "pw", Name: "John", Role: "manager",
			})
			Expect(err).ToNot(HaveOccurred())

			service.TouchLastLogin(ctx, created.ID)

			fetched, err := service.GetByID(ctx, created.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(fetched.LastLogin).ToNot(BeNil())
		})
	})
})
