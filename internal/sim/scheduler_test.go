package sim

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/melter/internal/dynamo"
)

var _ = Describe("Scheduler", func() {
	const (
		delay = 3 * time.Second
		step  = 50 * time.Millisecond
	)

	var s *Scheduler

	BeforeEach(func() {
		var err error
		s, err = NewScheduler(delay, step, 0)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts waiting", func() {
		Expect(s.Phase()).To(Equal(Waiting))
		Expect(s.Phase().String()).To(Equal("waiting"))
	})

	It("runs no steps until the start delay has passed", func() {
		Expect(s.Advance(time.Second)).To(BeZero())
		Expect(s.Advance(time.Second)).To(BeZero())
		Expect(s.Phase()).To(Equal(Waiting))

		Expect(s.Advance(time.Second)).To(BeZero(), "the switching frame runs nothing")
		Expect(s.Phase()).To(Equal(Running))
		Expect(s.Accumulated()).To(BeZero())
	})

	It("runs floor((elapsed-delay)/timestep) steps with one second frames", func() {
		total := 0
		for frame := 1; frame <= 12; frame++ {
			total += s.Advance(time.Second)
			elapsed := time.Duration(frame) * time.Second

			expected := 0
			if elapsed > delay {
				expected = int((elapsed - delay) / step)
			}
			Expect(total).To(Equal(expected), "after %v", elapsed)
			Expect(s.Steps()).To(Equal(total))
		}
		Expect(s.SimulatedTime()).To(Equal(9 * time.Second))
	})

	It("keeps the fractional remainder between frames", func() {
		s.Advance(delay)
		Expect(s.Phase()).To(Equal(Running))

		frames := []time.Duration{30, 30, 40, 100, 10, 10, 10, 20}
		want := []int{0, 1, 1, 2, 0, 0, 0, 1}
		for i, f := range frames {
			Expect(s.Advance(f*time.Millisecond)).To(Equal(want[i]), "frame %d", i)
		}
		Expect(s.Steps()).To(Equal(5))
		Expect(s.Accumulated()).To(Equal(0 * time.Millisecond))
	})

	It("ignores negative frame times", func() {
		s.Advance(delay)
		Expect(s.Advance(-time.Second)).To(BeZero())
		Expect(s.Accumulated()).To(BeZero())
	})

	It("starts immediately with a zero delay", func() {
		z, err := NewScheduler(0, step, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(z.Advance(0)).To(BeZero())
		Expect(z.Phase()).To(Equal(Running))
		Expect(z.Advance(step)).To(Equal(1))
	})

	Context("with a catch-up cap", func() {
		It("runs at most the cap per frame and banks the rest", func() {
			c, err := NewScheduler(0, step, 1)
			Expect(err).NotTo(HaveOccurred())
			c.Advance(0)

			Expect(c.Advance(time.Second)).To(Equal(1))
			Expect(c.Accumulated()).To(Equal(950 * time.Millisecond))
			Expect(c.Advance(0)).To(Equal(1))
			Expect(c.Accumulated()).To(Equal(900 * time.Millisecond))
		})
	})

	It("resets to waiting", func() {
		s.Advance(5 * time.Second)
		s.Advance(time.Second)
		Expect(s.Steps()).To(BeNumerically(">", 0))

		s.Reset()
		Expect(s.Phase()).To(Equal(Waiting))
		Expect(s.Steps()).To(BeZero())
		Expect(s.Elapsed()).To(BeZero())
	})

	DescribeTable("rejects invalid settings",
		func(delay, step time.Duration, catchUp int) {
			_, err := NewScheduler(delay, step, catchUp)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		},
		Entry("zero timestep", time.Second, time.Duration(0), 0),
		Entry("negative timestep", time.Second, -step, 0),
		Entry("negative delay", -time.Second, step, 0),
		Entry("negative catch-up", time.Second, step, -1),
	)
})
