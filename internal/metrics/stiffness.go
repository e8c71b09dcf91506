package metrics

import "github.com/san-kum/melter/internal/lattice"

// MeanStiffness averages CurrentConstant/BaseConstant over one spring per
// neighbouring pair.
type MeanStiffness struct {
	name  string
	value float64
}

func NewMeanStiffness() *MeanStiffness {
	return &MeanStiffness{name: "mean_stiffness"}
}

func (m *MeanStiffness) Name() string { return m.name }

func (m *MeanStiffness) Observe(l *lattice.Lattice) {
	// running mean so very soft springs cannot overflow a plain sum
	var mean float64
	var n int
	for _, s := range l.Undirected() {
		sp := l.Springs[s]
		if sp.BaseConstant == 0 {
			continue
		}
		n++
		mean += (sp.CurrentConstant/sp.BaseConstant - mean) / float64(n)
	}
	if n > 0 {
		m.value = mean
	}
}

func (m *MeanStiffness) Value() float64 { return m.value }
func (m *MeanStiffness) Reset()         { m.value = 0 }

// Softened is the fraction of neighbouring pairs whose spring constant has
// dropped to zero or below.
type Softened struct {
	name  string
	value float64
}

func NewSoftened() *Softened {
	return &Softened{name: "softened"}
}

func (s *Softened) Name() string { return s.name }

func (s *Softened) Observe(l *lattice.Lattice) {
	pairs := l.Undirected()
	if len(pairs) == 0 {
		return
	}
	soft := 0
	for _, idx := range pairs {
		if l.Springs[idx].CurrentConstant <= 0 {
			soft++
		}
	}
	s.value = float64(soft) / float64(len(pairs))
}

func (s *Softened) Value() float64 { return s.value }
func (s *Softened) Reset()         { s.value = 0 }
