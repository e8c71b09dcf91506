package sim

import (
	"time"

	"github.com/san-kum/melter/internal/dynamo"
)

type Phase int

const (
	Waiting Phase = iota
	Running
)

func (p Phase) String() string {
	switch p {
	case Waiting:
		return "waiting"
	case Running:
		return "running"
	}
	return "unknown"
}

// Scheduler turns lumpy frame times into a count of fixed simulation steps.
// It waits StartDelay before running; once running it keeps the fractional
// remainder of each frame so no real time is lost between frames.
type Scheduler struct {
	startDelay time.Duration
	timestep   time.Duration
	maxCatchUp int

	phase   Phase
	acc     time.Duration
	elapsed time.Duration
	steps   int
}

// NewScheduler returns a scheduler in the Waiting phase. maxCatchUp caps the
// steps returned by a single Advance; zero means no cap.
func NewScheduler(startDelay, timestep time.Duration, maxCatchUp int) (*Scheduler, error) {
	if timestep <= 0 {
		return nil, dynamo.Invalidf("timestep must be positive, got %v", timestep)
	}
	if startDelay < 0 {
		return nil, dynamo.Invalidf("start delay must not be negative, got %v", startDelay)
	}
	if maxCatchUp < 0 {
		return nil, dynamo.Invalidf("max catch-up must not be negative, got %d", maxCatchUp)
	}
	return &Scheduler{startDelay: startDelay, timestep: timestep, maxCatchUp: maxCatchUp}, nil
}

// Advance feeds one frame of real time and returns how many simulation
// steps are due. The frame that ends the start delay runs no steps.
func (s *Scheduler) Advance(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	s.elapsed += elapsed
	s.acc += elapsed

	if s.phase == Waiting {
		if s.acc >= s.startDelay {
			s.phase = Running
			s.acc = 0
		}
		return 0
	}

	n := 0
	for s.acc >= s.timestep {
		if s.maxCatchUp > 0 && n >= s.maxCatchUp {
			break
		}
		s.acc -= s.timestep
		n++
	}
	s.steps += n
	return n
}

func (s *Scheduler) Phase() Phase                 { return s.phase }
func (s *Scheduler) Steps() int                   { return s.steps }
func (s *Scheduler) Accumulated() time.Duration   { return s.acc }
func (s *Scheduler) Elapsed() time.Duration       { return s.elapsed }
func (s *Scheduler) Timestep() time.Duration      { return s.timestep }
func (s *Scheduler) StartDelay() time.Duration    { return s.startDelay }
func (s *Scheduler) SimulatedTime() time.Duration { return time.Duration(s.steps) * s.timestep }

// Reset returns to Waiting with an empty accumulator.
func (s *Scheduler) Reset() {
	s.phase = Waiting
	s.acc = 0
	s.elapsed = 0
	s.steps = 0
}
