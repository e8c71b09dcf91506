package thermal

import "github.com/san-kum/melter/internal/lattice"

// Elgiloy modulus fit, valid over a 200-700 temperature domain.
const (
	modulusC0 = 0.6189531
	modulusC1 = -0.0005764074
	modulusC2 = 0.000001876103
	modulusC3 = -2.064915e-9

	ReferenceModulus = 0.4264926
	ModulusSpan      = 0.12
)

// ScaleTemperature maps the simulation's 0-100 range onto the fit domain.
func ScaleTemperature(avg float64) float64 {
	return (avg/100)*500 + 200
}

// ElgiloyModulus evaluates the cubic modulus fit at a scaled temperature.
func ElgiloyModulus(x float64) float64 {
	return modulusC0 + modulusC1*x + modulusC2*x*x + modulusC3*x*x*x
}

// StiffnessFactor is the spring constant multiplier for a spring whose
// endpoints sit at temperatures a and b. It is about 1.13 cold, crosses
// zero at 100 and goes negative beyond.
func StiffnessFactor(a, b float64) float64 {
	avg := (a + b) / 2
	e := ElgiloyModulus(ScaleTemperature(avg))
	return (e - ReferenceModulus) / ModulusSpan
}

// UpdateSprings rescales every spring's base constant by the stiffness
// factor of its endpoints.
func UpdateSprings(l *lattice.Lattice) {
	ps := l.Particles
	for s := range l.Springs {
		sp := &l.Springs[s]
		sp.CurrentConstant = StiffnessFactor(ps[sp.A].Temperature, ps[sp.B].Temperature) * sp.BaseConstant
	}
}
