package rotation_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/lead-rotation/internal"
	"github.com/frahmantamala/lead-rotation/internal/audit"
	auditmodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/audit"
	datamodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/rotation"
	"github.com/frahmantamala/lead-rotation/internal/core/events"
	"github.com/frahmantamala/lead-rotation/internal/rotation"
	"github.com/frahmantamala/lead-rotation/internal/storage"
)

var _ = Describe("RotationService", func() {
	var (
		service      *rotation.Service
		auditService *audit.Service
		store        *storage.Memory
		ctx          context.Context
	)

	seedState := func(state datamodel.SystemState) {
		ExpectWithOffset(1, storage.PutJSON(ctx, store, datamodel.Key, state, 0)).To(Succeed())
	}

	BeforeEach(func() {
		store = storage.NewMemory()
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		auditService = audit.NewService(store, logger)
		bus := events.NewEventBus(logger)
		service = rotation.NewService(store, auditService, bus, logger)
	})

	Describe("GetState", func() {
		Context("when no state exists yet", func() {
			It("should seed and return the default queue", func() {
				state, err := service.GetState(ctx)

				Expect(err).ToNot(HaveOccurred())
				Expect(state.Employees).To(HaveLen(4))
				Expect(state.CurrentUpIndex).To(Equal(0))
				Expect(state.CurrentEmployee().Name).To(Equal("John Smith"))

				// the seed must be persisted, not just returned
				persisted, _, err := storage.GetJSON[datamodel.SystemState](ctx, store, datamodel.Key)
				Expect(err).ToNot(HaveOccurred())
				Expect(persisted.Employees).To(HaveLen(4))
			})
		})

		Context("when an employee's temporary inactivity has expired", func() {
			It("should reactivate them and persist the sweep", func() {
				// Given
				past := time.Now().Add(-time.Minute)
				seedState(datamodel.SystemState{
					Employees: []datamodel.Employee{
						{ID: "1", Name: "Alice", IsActive: false, TemporaryInactiveUntil: &past},
						{ID: "2", Name: "Bob", IsActive: true},
					},
				})

				// When
				state, err := service.GetState(ctx)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(state.Employees[0].IsActive).To(BeTrue())
				Expect(state.Employees[0].TemporaryInactiveUntil).To(BeNil())

				persisted, _, _ := storage.GetJSON[datamodel.SystemState](ctx, store, datamodel.Key)
				Expect(persisted.Employees[0].IsActive).To(BeTrue())
			})
		})
	})

	Describe("Apply", func() {
		BeforeEach(func() {
			seedState(datamodel.SystemState{
				Employees: []datamodel.Employee{
					{ID: "1", Name: "Alice", IsActive: true},
					{ID: "2", Name: "Bob", IsActive: true},
					{ID: "3", Name: "Carol", IsActive: true},
				},
				CurrentUpIndex: 0,
			})
		})

		Context("with an add action", func() {
			It("should append the employee and audit the change", func() {
				// When
				state, err := service.Apply(ctx, rotation.ActionDTO{
					Action: rotation.ActionAdd,
					Name:   "Dave",
					Source: "admin-dashboard",
				}, "manager1")

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(state.Employees).To(HaveLen(4))
				Expect(state.Employees[3].Name).To(Equal("Dave"))
				Expect(state.Employees[3].IsActive).To(BeTrue())

				entries, _ := auditService.List(ctx)
				Expect(entries).To(HaveLen(1))
				Expect(entries[0].Action).To(Equal(auditmodel.ActionAdd))
				Expect(entries[0].User).To(Equal("manager1"))
				Expect(entries[0].Source).To(Equal("admin-dashboard"))
				Expect(entries[0].Details).To(Equal("Added employee: Dave"))
			})

			It("should reject a missing name", func() {
				_, err := service.Apply(ctx, rotation.ActionDTO{Action: rotation.ActionAdd}, "manager1")

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeMissingFields))
			})
		})

		Context("with a remove action", func() {
			It("should reset an out-of-range pointer to the head", func() {
				// Given: pointer on the last employee
				_, err := service.Apply(ctx, rotation.ActionDTO{Action: rotation.ActionCycle}, "bdc1")
				Expect(err).ToNot(HaveOccurred())
				_, err = service.Apply(ctx, rotation.ActionDTO{Action: rotation.ActionCycle}, "bdc1")
				Expect(err).ToNot(HaveOccurred())

				// When: that employee is removed
				state, err := service.Apply(ctx, rotation.ActionDTO{
					Action: rotation.ActionRemove,
					ID:     "3",
				}, "bdc1")

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(state.CurrentUpIndex).To(Equal(0))
				Expect(state.CurrentEmployee().Name).To(Equal("Alice"))
			})

			It("should audit an unknown id as a removal of Unknown", func() {
				state, err := service.Apply(ctx, rotation.ActionDTO{
					Action: rotation.ActionRemove,
					ID:     "nope",
				}, "bdc1")

				Expect(err).ToNot(HaveOccurred())
				Expect(state.Employees).To(HaveLen(3))

				entries, _ := auditService.List(ctx)
				Expect(entries[0].Details).To(Equal("Removed employee: Unknown"))
			})
		})

		Context("with a cycle action", func() {
			It("should advance the pointer and describe the handoff", func() {
				state, err := service.Apply(ctx, rotation.ActionDTO{Action: rotation.ActionCycle}, "bdc1")

				Expect(err).ToNot(HaveOccurred())
				Expect(state.CurrentEmployee().Name).To(Equal("Bob"))

				entries, _ := auditService.List(ctx)
				Expect(entries[0].Details).To(Equal("Cycled from Alice to Bob"))
			})
		})

		Context("with a reorder action", func() {
			It("should replace the queue and reset the pointer", func() {
				state, err := service.Apply(ctx, rotation.ActionDTO{
					Action: rotation.ActionReorder,
					Employees: []datamodel.Employee{
						{ID: "3", Name: "Carol", IsActive: true},
						{ID: "1", Name: "Alice", IsActive: true},
						{ID: "2", Name: "Bob", IsActive: true},
					},
				}, "manager1")

				Expect(err).ToNot(HaveOccurred())
				Expect(state.Names()).To(Equal([]string{"Carol", "Alice", "Bob"}))
				Expect(state.CurrentUpIndex).To(Equal(0))
			})
		})

		Context("with a toggle action", func() {
			It("should deactivate an active employee", func() {
				state, err := service.Apply(ctx, rotation.ActionDTO{
					Action: rotation.ActionToggle,
					ID:     "2",
				}, "bdc1")

				Expect(err).ToNot(HaveOccurred())
				Expect(state.FindEmployee("2").IsActive).To(BeFalse())

				entries, _ := auditService.List(ctx)
				Expect(entries[0].Details).To(Equal("Deactivated employee: Bob"))
			})
		})

		Context("with an unknown action", func() {
			It("should return a validation error and change nothing", func() {
				_, err := service.Apply(ctx, rotation.ActionDTO{Action: "explode"}, "bdc1")

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidAction))
				Expect(appErr.StatusCode).To(Equal(400))

				state, _ := service.GetState(ctx)
				Expect(state.Employees).To(HaveLen(3))
			})
		})

		Context("with a blank actor and source", func() {
			It("should fall back to system and unknown", func() {
				_, err := service.Apply(ctx, rotation.ActionDTO{Action: rotation.ActionCycle}, "")
				Expect(err).ToNot(HaveOccurred())

				entries, _ := auditService.List(ctx)
				Expect(entries[0].User).To(Equal("system"))
				Expect(entries[0].Source).To(Equal("unknown"))
			})
		})
	})

	Describe("EnsureActiveOnLogin", func() {
		BeforeEach(func() {
			seedState(datamodel.SystemState{
				Employees: []datamodel.Employee{
					{ID: "1", Name: "Alice", IsActive: true},
					{ID: "2", Name: "Bob", IsActive: false},
				},
			})
		})

		It("should add a salesperson missing from the rotation", func() {
			Expect(service.EnsureActiveOnLogin(ctx, "Dave", "dave")).To(Succeed())

			state, _ := service.GetState(ctx)
			Expect(state.Employees).To(HaveLen(3))
			Expect(state.Employees[2].Name).To(Equal("Dave"))

			entries, _ := auditService.List(ctx)
			Expect(entries[0].Action).To(Equal(auditmodel.ActionAdd))
			Expect(entries[0].Source).To(Equal("login"))
		})

		It("should reactivate a deactivated salesperson", func() {
			Expect(service.EnsureActiveOnLogin(ctx, "Bob", "bob")).To(Succeed())

			state, _ := service.GetState(ctx)
			Expect(state.FindEmployee("2").IsActive).To(BeTrue())

			entries, _ := auditService.List(ctx)
			Expect(entries[0].Action).To(Equal(auditmodel.ActionToggle))
			Expect(entries[0].Details).To(Equal("Activated employee: Bob"))
		})

		It("should leave an active salesperson alone without auditing", func() {
			Expect(service.EnsureActiveOnLogin(ctx, "Alice", "alice")).To(Succeed())

			entries, _ := auditService.List(ctx)
			Expect(entries).To(BeEmpty())
		})

		It("should not override a pending temporary inactivity", func() {
			// Given
			future := time.Now().Add(time.Hour)
			Expect(service.SetEmployeeInactiveUntil(ctx, "Alice", future)).To(Succeed())

			// When
			Expect(service.EnsureActiveOnLogin(ctx, "Alice", "alice")).To(Succeed())

			// Then
			state, _ := service.GetState(ctx)
			Expect(state.FindEmployee("1").IsActive).To(BeFalse())
			Expect(state.FindEmployee("1").TemporaryInactiveUntil).ToNot(BeNil())
		})
	})

	Describe("SetEmployeeInactiveUntil", func() {
		BeforeEach(func() {
			seedState(datamodel.SystemState{
				Employees: []datamodel.Employee{
					{ID: "1", Name: "Alice", IsActive: true},
				},
			})
		})

		It("should mark the matching employee inactive with a deadline", func() {
			until := time.Now().Add(30 * time.Minute)

			Expect(service.SetEmployeeInactiveUntil(ctx, "Alice", until)).To(Succeed())

			persisted, _, _ := storage.GetJSON[datamodel.SystemState](ctx, store, datamodel.Key)
			Expect(persisted.Employees[0].IsActive).To(BeFalse())
			Expect(persisted.Employees[0].TemporaryInactiveUntil.Unix()).To(Equal(until.Unix()))
		})

		It("should be a silent no-op for an unknown name", func() {
			Expect(service.SetEmployeeInactiveUntil(ctx, "Nobody", time.Now())).To(Succeed())

			persisted, _, _ := storage.GetJSON[datamodel.SystemState](ctx, store, datamodel.Key)
			Expect(persisted.Employees[0].IsActive).To(BeTrue())
		})
	})
})
