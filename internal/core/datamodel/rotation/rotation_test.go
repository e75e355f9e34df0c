package rotation_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/lead-rotation/internal/core/datamodel/rotation"
)

var _ = Describe("SystemState", func() {
	var state rotation.SystemState

	BeforeEach(func() {
		state = rotation.SystemState{
			Employees: []rotation.Employee{
				{ID: "1", Name: "Alice", IsActive: true},
				{ID: "2", Name: "Bob", IsActive: true},
				{ID: "3", Name: "Carol", IsActive: true},
			},
			CurrentUpIndex: 0,
		}
	})

	Describe("CurrentEmployee", func() {
		It("should return the employee at the pointer", func() {
			Expect(state.CurrentEmployee().Name).To(Equal("Alice"))
		})

		It("should return nil on an empty queue", func() {
			empty := rotation.SystemState{}
			Expect(empty.CurrentEmployee()).To(BeNil())
		})
	})

	Describe("Add", func() {
		It("should append an active employee without moving the pointer", func() {
			// Given
			state.CurrentUpIndex = 2

			// When
			added := state.Add("99", "Dave")

			// Then
			Expect(added.IsActive).To(BeTrue())
			Expect(state.Employees).To(HaveLen(4))
			Expect(state.CurrentUpIndex).To(Equal(2))
			Expect(state.Employees[3].Name).To(Equal("Dave"))
		})
	})

	Describe("Remove", func() {
		It("should filter the employee out and keep a valid pointer", func() {
			removed := state.Remove("2")

			Expect(removed.Name).To(Equal("Bob"))
			Expect(state.Employees).To(HaveLen(2))
			Expect(state.Names()).To(Equal([]string{"Alice", "Carol"}))
		})

		It("should reset the pointer to zero when it falls out of range", func() {
			// Given: pointer on the last employee
			state.CurrentUpIndex = 2

			// When: that employee is removed
			state.Remove("3")

			// Then: pointer resets to the head, not the last valid index
			Expect(state.CurrentUpIndex).To(Equal(0))
			Expect(state.CurrentEmployee().Name).To(Equal("Alice"))
		})

		It("should keep the pointer when it is still in range", func() {
			state.CurrentUpIndex = 1

			state.Remove("3")

			Expect(state.CurrentUpIndex).To(Equal(1))
			Expect(state.CurrentEmployee().Name).To(Equal("Bob"))
		})

		It("should be a silent no-op for an unknown id", func() {
			removed := state.Remove("nope")

			Expect(removed).To(BeNil())
			Expect(state.Employees).To(HaveLen(3))
		})
	})

	Describe("Cycle", func() {
		It("should advance the pointer", func() {
			state.Cycle()
			Expect(state.CurrentEmployee().Name).To(Equal("Bob"))
		})

		It("should wrap around at the end of the queue", func() {
			state.CurrentUpIndex = 2

			state.Cycle()

			Expect(state.CurrentUpIndex).To(Equal(0))
			Expect(state.CurrentEmployee().Name).To(Equal("Alice"))
		})

		It("should be a no-op on an empty queue", func() {
			empty := rotation.SystemState{}
			empty.Cycle()
			Expect(empty.CurrentUpIndex).To(Equal(0))
		})
	})

	Describe("Reorder", func() {
		It("should replace the queue and reset the pointer", func() {
			// Given
			state.CurrentUpIndex = 2

			// When
			state.Reorder([]rotation.Employee{
				{ID: "3", Name: "Carol", IsActive: true},
				{ID: "1", Name: "Alice", IsActive: true},
			})

			// Then
			Expect(state.Names()).To(Equal([]string{"Carol", "Alice"}))
			Expect(state.CurrentUpIndex).To(Equal(0))
		})

		It("should treat a nil order as an empty queue", func() {
			state.Reorder(nil)

			Expect(state.Employees).To(BeEmpty())
			Expect(state.CurrentUpIndex).To(Equal(0))
		})
	})

	Describe("Toggle", func() {
		It("should flip the active flag", func() {
			toggled := state.Toggle("2")
			Expect(toggled.IsActive).To(BeFalse())

			toggled = state.Toggle("2")
			Expect(toggled.IsActive).To(BeTrue())
		})

		It("should be a silent no-op for an unknown id", func() {
			Expect(state.Toggle("nope")).To(BeNil())
			Expect(state.Employees[0].IsActive).To(BeTrue())
		})
	})

	Describe("Reconcile", func() {
		It("should reactivate employees whose deadline has passed", func() {
			// Given
			past := time.Now().Add(-time.Minute)
			state.Employees[1].IsActive = false
			state.Employees[1].TemporaryInactiveUntil = &past

			// When
			changed := state.Reconcile(time.Now())

			// Then
			Expect(changed).To(BeTrue())
			Expect(state.Employees[1].IsActive).To(BeTrue())
			Expect(state.Employees[1].TemporaryInactiveUntil).To(BeNil())
		})

		It("should leave future deadlines alone", func() {
			future := time.Now().Add(time.Hour)
			state.Employees[1].IsActive = false
			state.Employees[1].TemporaryInactiveUntil = &future

			changed := state.Reconcile(time.Now())

			Expect(changed).To(BeFalse())
			Expect(state.Employees[1].IsActive).To(BeFalse())
		})

		It("should not touch employees toggled off without a deadline", func() {
			state.Employees[0].IsActive = false

			changed := state.Reconcile(time.Now())

			Expect(changed).To(BeFalse())
			Expect(state.Employees[0].IsActive).To(BeFalse())
		})
	})
})
