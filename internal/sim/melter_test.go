package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/melter/internal/colormap"
	"github.com/san-kum/melter/internal/config"
	"github.com/san-kum/melter/internal/dynamo"
	"github.com/san-kum/melter/internal/lattice"
	"github.com/san-kum/melter/internal/thermal"
)

func unitCube(n int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Lattice = config.LatticeConfig{Width: 1, Height: 1, Depth: 1, CountW: n, CountH: n, CountD: n}
	cfg.Physics.Enabled = false
	return cfg
}

// recorder checks, at hand-off time, that what it receives matches the
// lattice temperatures of the same step.
type recorder struct {
	lat    *lattice.Lattice
	calls  []string
	forces [][]dynamo.Vec3
	errs   []string
}

func (r *recorder) Apply(springs []lattice.Spring, forces []dynamo.Vec3, dt float64) {
	r.calls = append(r.calls, "physics")
	for _, s := range springs {
		want := thermal.StiffnessFactor(r.lat.Particles[s.A].Temperature, r.lat.Particles[s.B].Temperature) * s.BaseConstant
		if s.CurrentConstant != want {
			r.errs = append(r.errs, "stale spring constant")
			break
		}
	}
	r.forces = append(r.forces, append([]dynamo.Vec3(nil), forces...))
}

func (r *recorder) Paint(colors []colormap.RGB) {
	r.calls = append(r.calls, "render")
	for i, c := range colors {
		if c != colormap.ColorFor(r.lat.Particles[i].Temperature) {
			r.errs = append(r.errs, "stale colour")
			break
		}
	}
}

func (r *recorder) OnStep(step int, t float64, l *lattice.Lattice) {
	r.calls = append(r.calls, "observe")
}

var _ = Describe("Melter", func() {
	It("rejects a lattice with a single layer", func() {
		cfg := unitCube(2)
		cfg.Lattice.CountH = 1
		_, err := New(cfg)
		Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
	})

	It("rejects a non-positive timestep", func() {
		cfg := unitCube(2)
		cfg.Timestep = 0
		_, err := New(cfg)
		Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
	})

	It("starts with the source pinned and colours painted", func() {
		m, err := New(unitCube(3))
		Expect(err).NotTo(HaveOccurred())

		Expect(m.Lattice().At(0, 0, 0).Temperature).To(Equal(100.0))
		Expect(m.Lattice().At(2, 2, 2).Temperature).To(BeZero())
		Expect(m.Colors()[0]).To(Equal(colormap.ColorFor(100)))
		Expect(m.Phase()).To(Equal(Waiting))
	})

	It("matches the hand-computed 2x2x2 reference after one step", func() {
		m, err := New(unitCube(2))
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Step()).To(Succeed())

		l := m.Lattice()
		far := l.At(1, 1, 1)
		Expect(far.RateOfChange).To(BeNumerically("~", 2000.0/29.0, 1e-9))
		Expect(far.Temperature).To(BeNumerically("~", 100.0/29.0, 1e-12))
		Expect(l.At(0, 0, 0).Temperature).To(Equal(100.0))

		corner := l.Index(1, 1, 1)
		for _, s := range l.SpringsOf(l.Index(0, 0, 0)) {
			sp := l.Springs[s]
			if sp.B != corner {
				continue
			}
			Expect(sp.ManhattanWeight).To(Equal(3))
			Expect(sp.BaseConstant).To(BeNumerically("~", 1000.0/3.0, 1e-12))
			Expect(sp.CurrentConstant).To(Equal(thermal.StiffnessFactor(100, far.Temperature) * sp.BaseConstant))
		}
	})

	It("hands off in order: physics, renderer, observers", func() {
		m, err := New(unitCube(3))
		Expect(err).NotTo(HaveOccurred())
		rec := &recorder{lat: m.Lattice()}
		m.SetPhysics(rec)
		m.SetRenderer(rec)
		m.AddObserver(rec)
		rec.calls = nil

		for i := 0; i < 5; i++ {
			Expect(m.Step()).To(Succeed())
		}

		Expect(rec.errs).To(BeEmpty())
		Expect(rec.calls).To(HaveLen(15))
		for i := 0; i < 5; i++ {
			Expect(rec.calls[3*i : 3*i+3]).To(Equal([]string{"physics", "render", "observe"}))
		}
		Expect(rec.forces).To(HaveLen(5))
		Expect(rec.forces[0]).To(HaveLen(27))
	})

	It("keeps the source at 100 after every tick", func() {
		cfg := unitCube(3)
		cfg.StartDelay = 0
		m, err := New(cfg)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 40; i++ {
			m.Lattice().At(0, 0, 0).Temperature = -5
			n, err := m.Tick(70 * time.Millisecond)
			Expect(err).NotTo(HaveOccurred())
			if n > 0 {
				Expect(m.Lattice().At(0, 0, 0).Temperature).To(Equal(100.0))
			}
		}
	})

	It("follows the scheduler with one second frames", func() {
		m, err := New(unitCube(2))
		Expect(err).NotTo(HaveOccurred())

		for frame := 1; frame <= 6; frame++ {
			_, err := m.Tick(time.Second)
			Expect(err).NotTo(HaveOccurred())
			expected := 0
			if frame > 3 {
				expected = (frame - 3) * 20
			}
			Expect(m.Steps()).To(Equal(expected))
		}
		Expect(m.SimTime()).To(BeNumerically("~", 3.0, 1e-9))
	})

	It("produces identical vibration for identical seeds", func() {
		cfg := unitCube(2)
		cfg.Seed = 99
		a, err := New(cfg)
		Expect(err).NotTo(HaveOccurred())
		b, err := New(cfg, WithRandSource(rand.NewSource(99)))
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Step()).To(Succeed())
		Expect(b.Step()).To(Succeed())
		Expect(a.Forces()).To(Equal(b.Forces()))
		for _, f := range a.Forces() {
			Expect(f.Length()).To(BeNumerically("<=", cfg.Vibration))
		}
	})

	It("emits zero forces without vibration", func() {
		cfg := unitCube(2)
		cfg.Vibration = 0
		m, err := New(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Step()).To(Succeed())
		for _, f := range m.Forces() {
			Expect(f).To(Equal(dynamo.Vec3{}))
		}
	})

	It("halts on a non-finite temperature", func() {
		cfg := unitCube(2)
		cfg.StartDelay = 0
		m, err := New(cfg)
		Expect(err).NotTo(HaveOccurred())
		m.Lattice().At(1, 0, 0).Temperature = math.NaN()

		err = m.Step()
		Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		var simErr *dynamo.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(simErr.Step).To(BeZero())

		_, again := m.Tick(time.Second)
		Expect(again).To(MatchError(err))
		Expect(m.Err()).To(MatchError(err))
	})

	It("halts when a finite temperature overflows the stiffness curve", func() {
		cfg := unitCube(2)
		cfg.StartDelay = 0
		cfg.Source.Temperature = 1e300
		obs := &recorder{}
		m, err := New(cfg)
		Expect(err).NotTo(HaveOccurred())
		m.AddObserver(obs)

		err = m.Step()
		Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("spring"))
		for _, p := range m.Lattice().Particles {
			Expect(math.IsInf(p.Temperature, 0) || math.IsNaN(p.Temperature)).To(BeFalse())
		}
		Expect(obs.calls).To(BeEmpty())
		Expect(m.Steps()).To(BeZero())
	})

	It("resets to its initial state", func() {
		cfg := unitCube(3)
		cfg.StartDelay = 0
		m, err := New(cfg)
		Expect(err).NotTo(HaveOccurred())
		initial := m.Lattice().Temperatures()

		Expect(m.Run(context.Background(), 100*time.Millisecond, 2*time.Second)).To(Succeed())
		Expect(m.Steps()).To(BeNumerically(">", 0))

		m.Reset()
		Expect(m.Steps()).To(BeZero())
		Expect(m.Phase()).To(Equal(Waiting))
		Expect(m.Lattice().Temperatures()).To(Equal(initial))
		for _, s := range m.Lattice().Springs {
			Expect(s.CurrentConstant).To(Equal(s.BaseConstant))
		}
	})

	Describe("Run", func() {
		It("stops when the context is cancelled", func() {
			m, err := New(unitCube(2))
			Expect(err).NotTo(HaveOccurred())
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			Expect(m.Run(ctx, time.Second, time.Minute)).To(MatchError(context.Canceled))
		})

		It("rejects a zero frame", func() {
			m, err := New(unitCube(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(errors.Is(m.Run(context.Background(), 0, time.Second), dynamo.ErrInvalidConfig)).To(BeTrue())
		})
	})
})
