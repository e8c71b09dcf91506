package metrics

import "github.com/san-kum/melter/internal/lattice"

type Sample struct {
	Step   int       `json:"step"`
	Time   float64   `json:"time"`
	Values []float64 `json:"values"`
}

// Recorder observes its metrics after every step and keeps a sample every
// Every steps.
type Recorder struct {
	metrics []Metric
	every   int
	samples []Sample
}

func NewRecorder(every int, ms ...Metric) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{metrics: ms, every: every}
}

func (r *Recorder) OnStep(step int, t float64, l *lattice.Lattice) {
	for _, m := range r.metrics {
		m.Observe(l)
	}
	if step%r.every != 0 {
		return
	}
	vals := make([]float64, len(r.metrics))
	for i, m := range r.metrics {
		vals[i] = m.Value()
	}
	r.samples = append(r.samples, Sample{Step: step, Time: t, Values: vals})
}

func (r *Recorder) Names() []string {
	names := make([]string, len(r.metrics))
	for i, m := range r.metrics {
		names[i] = m.Name()
	}
	return names
}

func (r *Recorder) Samples() []Sample { return r.samples }

// Series returns the recorded values of the named metric.
func (r *Recorder) Series(name string) []float64 {
	col := -1
	for i, m := range r.metrics {
		if m.Name() == name {
			col = i
		}
	}
	if col < 0 {
		return nil
	}
	out := make([]float64, len(r.samples))
	for i, s := range r.samples {
		out[i] = s.Values[col]
	}
	return out
}

// Summary returns the latest value of every metric.
func (r *Recorder) Summary() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (r *Recorder) Reset() {
	r.samples = r.samples[:0]
	for _, m := range r.metrics {
		m.Reset()
	}
}
