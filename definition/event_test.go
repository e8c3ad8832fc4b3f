package definition_test

import (
	"time"

	. "github.com/millrace/weir/definition"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type TimerSpec", func() {
	activatedAt := time.Date(2024, 4, 1, 10, 30, 0, 0, time.UTC)

	Describe("func First()", func() {
		It("returns the absolute time of a fixed timer", func() {
			s := &TimerSpec{At: activatedAt.Add(1 * time.Hour)}
			Expect(s.First(activatedAt)).To(BeTemporally("==", activatedAt.Add(1*time.Hour)))
		})

		It("offsets a relative timer from the activation time", func() {
			s := &TimerSpec{After: 10 * time.Minute}
			Expect(s.First(activatedAt)).To(BeTemporally("==", activatedAt.Add(10*time.Minute)))
		})

		It("offsets a cyclic timer by one interval", func() {
			s := &TimerSpec{Every: 5 * time.Minute}
			Expect(s.First(activatedAt)).To(BeTemporally("==", activatedAt.Add(5*time.Minute)))
		})
	})

	Describe("func Next()", func() {
		It("does not refire a non-cyclic timer", func() {
			s := &TimerSpec{At: activatedAt}
			_, ok := s.Next(activatedAt, 1)
			Expect(ok).To(BeFalse())
		})

		It("advances a cyclic timer by one interval", func() {
			s := &TimerSpec{Every: 5 * time.Minute}

			next, ok := s.Next(activatedAt, 1)
			Expect(ok).To(BeTrue())
			Expect(next).To(BeTemporally("==", activatedAt.Add(5*time.Minute)))
		})

		It("stops a bounded cycle once the firing count is reached", func() {
			s := &TimerSpec{Every: 5 * time.Minute, Count: 3}

			_, ok := s.Next(activatedAt, 2)
			Expect(ok).To(BeTrue())

			_, ok = s.Next(activatedAt, 3)
			Expect(ok).To(BeFalse())
		})
	})
})
