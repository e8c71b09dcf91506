package thermal

import (
	"math"
	"testing"

	"github.com/san-kum/melter/internal/lattice"
)

func TestStiffnessFactor_KnownValues(t *testing.T) {
	tests := []struct {
		temp     float64
		expected float64
		tol      float64
	}{
		{0, 1.130865166666667, 1e-9},
		{50, 1.040188734375, 1e-9},
		{100, 0, 1e-5},
	}

	for _, tt := range tests {
		if got := StiffnessFactor(tt.temp, tt.temp); math.Abs(got-tt.expected) > tt.tol {
			t.Errorf("StiffnessFactor(%v, %v) = %.9f, want %.9f", tt.temp, tt.temp, got, tt.expected)
		}
	}
}

func TestStiffnessFactor_Symmetric(t *testing.T) {
	pairs := [][2]float64{{100, 300}, {0, 100}, {12.5, 87.5}, {-20, 40}}
	for _, p := range pairs {
		a := StiffnessFactor(p[0], p[1])
		b := StiffnessFactor(p[1], p[0])
		if a != b {
			t.Errorf("StiffnessFactor not symmetric for %v: %v vs %v", p, a, b)
		}
	}
}

func TestStiffnessFactor_DependsOnlyOnAverage(t *testing.T) {
	if a, b := StiffnessFactor(20, 80), StiffnessFactor(50, 50); math.Abs(a-b) > 1e-12 {
		t.Errorf("StiffnessFactor(20,80)=%v, StiffnessFactor(50,50)=%v", a, b)
	}
}

func TestStiffnessFactor_ReferenceModulus(t *testing.T) {
	// The fit crosses the reference modulus at the top of its domain.
	if e := ElgiloyModulus(ScaleTemperature(100)); math.Abs(e-ReferenceModulus) > 1e-6 {
		t.Errorf("modulus at 700 = %v, want ~%v", e, ReferenceModulus)
	}
	if s := ScaleTemperature(0); s != 200 {
		t.Errorf("ScaleTemperature(0) = %v, want 200", s)
	}
	if s := ScaleTemperature(100); s != 700 {
		t.Errorf("ScaleTemperature(100) = %v, want 700", s)
	}
}

func TestStiffnessFactor_SoftensWhenHot(t *testing.T) {
	prev := StiffnessFactor(30, 30)
	for temp := 35.0; temp <= 200; temp += 5 {
		f := StiffnessFactor(temp, temp)
		if f >= prev {
			t.Errorf("factor did not decrease at %v: %v >= %v", temp, f, prev)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Errorf("factor not finite at %v", temp)
		}
		prev = f
	}
}

func TestUpdateSprings(t *testing.T) {
	l, err := lattice.Build(lattice.Dimensions{
		Width: 1, Height: 1, Depth: 1, CountW: 2, CountH: 2, CountD: 2,
	}, 600)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	l.At(0, 0, 0).Temperature = 100

	UpdateSprings(l)

	for _, s := range l.Springs {
		ta := l.Particles[s.A].Temperature
		tb := l.Particles[s.B].Temperature
		want := StiffnessFactor(ta, tb) * s.BaseConstant
		if s.CurrentConstant != want {
			t.Errorf("spring %d->%d = %v, want %v", s.A, s.B, s.CurrentConstant, want)
		}
		if want == 0 {
			t.Errorf("spring %d->%d stiffness collapsed to zero", s.A, s.B)
		}
	}
}
