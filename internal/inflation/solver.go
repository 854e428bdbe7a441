// Package inflation simulates single-field inflation: it evolves the
// background and the scalar/tensor mode equations through horizon crossing
// and returns the primordial power spectrum sampled on a grid of
// wavenumbers. Three model types are supported: a potential V(phi) with the
// pivot field value given, the same with the pivot located from the end of
// inflation, and a Hubble-flow function H(phi).
package inflation

import (
	"fmt"
	"io"
	"math"

	"github.com/san-kum/primordial/internal/integrate"
	"github.com/san-kum/primordial/internal/potential"
)

type integrateState = integrate.State

// SpecType selects the inflationary model class.
type SpecType int

const (
	// SpecV evolves a potential V(phi) around a given phi_pivot.
	SpecV SpecType = iota
	// SpecVEnd evolves a potential V(phi), locating phi_pivot backward
	// from the end of inflation.
	SpecVEnd
	// SpecH evolves a Hubble-flow function H(phi).
	SpecH
)

// Direction of time integration.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Target selects the stopping quantity of a background evolution.
type Target int

const (
	// TargetAH stops when the expansion rate aH reaches the given value.
	TargetAH Target = iota
	// TargetPhi stops when the field reaches the given value.
	TargetPhi
	// TargetEndInflation stops when d2a/dt2 = 0 (end of accelerated
	// expansion). Only meaningful for SpecVEnd.
	TargetEndInflation
)

// Precision gathers every numeric tolerance, step-size factor and iteration
// cap of the solver. Zero values are replaced by DefaultPrecision.
type Precision struct {
	KPerDecade                float64 `yaml:"k_per_decade"`
	BGStepsize                float64 `yaml:"bg_stepsize"`
	PTStepsize                float64 `yaml:"pt_stepsize"`
	TolIntegration            float64 `yaml:"tol_integration"`
	TolCurvature              float64 `yaml:"tol_curvature"`
	RatioMin                  float64 `yaml:"ratio_min"`
	RatioMax                  float64 `yaml:"ratio_max"`
	AHIniTarget               float64 `yaml:"ah_ini_target"`
	AttractorPrecisionPivot   float64 `yaml:"attractor_precision_pivot"`
	AttractorPrecisionInitial float64 `yaml:"attractor_precision_initial"`
	AttractorMaxIter          int     `yaml:"attractor_max_iter"`
	PhiIniMaxIter             int     `yaml:"phi_ini_max_iter"`
	SmallestVariation         float64 `yaml:"smallest_variation"`
	EndDphi                   float64 `yaml:"end_dphi"`
	EndLogstep                float64 `yaml:"end_logstep"`
	EndPhiStopPrecision       float64 `yaml:"end_phi_stop_precision"`
	Workers                   int     `yaml:"workers"`
}

// DefaultPrecision mirrors the tolerances the solver was validated with.
func DefaultPrecision() Precision {
	return Precision{
		KPerDecade:                10,
		BGStepsize:                0.01,
		PTStepsize:                0.01,
		TolIntegration:            1e-3,
		TolCurvature:              5e-3,
		RatioMin:                  100,
		RatioMax:                  1. / 50.,
		AHIniTarget:               0.9,
		AttractorPrecisionPivot:   1e-3,
		AttractorPrecisionInitial: 0.1,
		AttractorMaxIter:          10,
		PhiIniMaxIter:             10,
		SmallestVariation:         1e-13,
		EndDphi:                   1e-10,
		EndLogstep:                10,
		EndPhiStopPrecision:       1e-4,
		Workers:                   1,
	}
}

func (p Precision) withDefaults() Precision {
	d := DefaultPrecision()
	if p.KPerDecade <= 0 {
		p.KPerDecade = d.KPerDecade
	}
	if p.BGStepsize <= 0 {
		p.BGStepsize = d.BGStepsize
	}
	if p.PTStepsize <= 0 {
		p.PTStepsize = d.PTStepsize
	}
	if p.TolIntegration <= 0 {
		p.TolIntegration = d.TolIntegration
	}
	if p.TolCurvature <= 0 {
		p.TolCurvature = d.TolCurvature
	}
	if p.RatioMin <= 0 {
		p.RatioMin = d.RatioMin
	}
	if p.RatioMax <= 0 {
		p.RatioMax = d.RatioMax
	}
	if p.AHIniTarget <= 0 {
		p.AHIniTarget = d.AHIniTarget
	}
	if p.AttractorPrecisionPivot <= 0 {
		p.AttractorPrecisionPivot = d.AttractorPrecisionPivot
	}
	if p.AttractorPrecisionInitial <= 0 {
		p.AttractorPrecisionInitial = d.AttractorPrecisionInitial
	}
	if p.AttractorMaxIter <= 0 {
		p.AttractorMaxIter = d.AttractorMaxIter
	}
	if p.PhiIniMaxIter <= 0 {
		p.PhiIniMaxIter = d.PhiIniMaxIter
	}
	if p.SmallestVariation <= 0 {
		p.SmallestVariation = d.SmallestVariation
	}
	if p.EndDphi <= 0 {
		p.EndDphi = d.EndDphi
	}
	if p.EndLogstep <= 0 {
		p.EndLogstep = d.EndLogstep
	}
	if p.EndPhiStopPrecision <= 0 {
		p.EndPhiStopPrecision = d.EndPhiStopPrecision
	}
	if p.Workers <= 0 {
		p.Workers = 1
	}
	return p
}

// layout maps named quantities to offsets in the state vector. The layout
// depends on the model class: potential-based models carry the field
// momentum dphi/dtau, the Hubble-flow model does not.
type layout struct {
	a, phi, dphi                 int
	ksiRe, ksiIm, dksiRe, dksiIm int
	ahRe, ahIm, dahRe, dahIm     int
	bgSize, size                 int
}

func newLayout(typ SpecType) layout {
	var l layout
	i := 0
	l.a = i
	i++
	l.phi = i
	i++
	if typ == SpecV || typ == SpecVEnd {
		l.dphi = i
		i++
	} else {
		l.dphi = -1
	}
	l.bgSize = i
	l.ksiRe = i
	i++
	l.ksiIm = i
	i++
	l.dksiRe = i
	i++
	l.dksiIm = i
	i++
	l.ahRe = i
	i++
	l.ahIm = i
	i++
	l.dahRe = i
	i++
	l.dahIm = i
	i++
	l.size = i
	return l
}

// Solver evolves the coupled background+perturbation system for one model.
// A Solver is not safe for concurrent use; the per-k loop clones what it
// needs per worker.
type Solver struct {
	typ  SpecType
	pot  potential.Potential
	hub  potential.Hubble
	prec Precision
	lay  layout

	// PhiPivot is the pivot field value (input for SpecV and SpecH,
	// computed for SpecVEnd).
	PhiPivot float64
	// PhiEnd and LnAHRatio configure SpecVEnd: the field value where
	// inflation is forced to end, and the requested ln(aH_end/aH_pivot).
	PhiEnd    float64
	LnAHRatio float64

	// PhiMin and PhiMax are diagnostics set by Spectra: field values at
	// horizon crossing of k_min and k_max.
	PhiMin, PhiMax float64

	rk  *integrate.RK45
	log io.Writer
}

// NewPotentialSolver builds a solver for a V(phi) model.
func NewPotentialSolver(typ SpecType, pot potential.Potential, phiPivot float64, prec Precision) (*Solver, error) {
	if typ != SpecV && typ != SpecVEnd {
		return nil, fmt.Errorf("potential solver requires SpecV or SpecVEnd, got %d", typ)
	}
	return &Solver{
		typ:      typ,
		pot:      pot,
		prec:     prec.withDefaults(),
		lay:      newLayout(typ),
		PhiPivot: phiPivot,
		rk:       integrate.NewRK45(),
	}, nil
}

// NewHubbleSolver builds a solver for an H(phi) model.
func NewHubbleSolver(hub potential.Hubble, phiPivot float64, prec Precision) *Solver {
	return &Solver{
		typ:      SpecH,
		hub:      hub,
		prec:     prec.withDefaults(),
		lay:      newLayout(SpecH),
		PhiPivot: phiPivot,
		rk:       integrate.NewRK45(),
	}
}

// SetLog directs progress messages to w. A nil writer keeps the solver quiet.
func (s *Solver) SetLog(w io.Writer) { s.log = w }

func (s *Solver) logf(format string, args ...interface{}) {
	if s.log != nil {
		fmt.Fprintf(s.log, format, args...)
	}
}

// checkPotential evaluates the potential and rejects shapes the solver
// cannot treat (V must be positive with negative slope).
func (s *Solver) checkPotential(phi float64) (v, dv, ddv float64, err error) {
	v, dv, ddv = s.pot.Evaluate(phi)
	if v <= 0 {
		return v, dv, ddv, &ShapeError{Phi: phi, Reason: "potential becomes negative before the end of observable inflation"}
	}
	if dv >= 0 {
		return v, dv, ddv, &ShapeError{Phi: phi, Reason: fmt.Sprintf("dV/dphi=%g >= 0; only monotonically decreasing potentials are handled", dv)}
	}
	return v, dv, ddv, nil
}

// checkHubble evaluates H(phi) and rejects non-decreasing shapes.
func (s *Solver) checkHubble(phi float64) (h, dh, ddh, dddh float64, err error) {
	h, dh, ddh, dddh = s.hub.Evaluate(phi)
	if h < 0 {
		return h, dh, ddh, dddh, &ShapeError{Phi: phi, Reason: fmt.Sprintf("H=%e is not physical", h)}
	}
	if dh > 0 {
		return h, dh, ddh, dddh, &ShapeError{Phi: phi, Reason: fmt.Sprintf("dH/dphi=%e > 0; H must decrease with growing phi", dh)}
	}
	return h, dh, ddh, dddh, nil
}

// Epsilon is the first slow-roll parameter at phi.
func (s *Solver) Epsilon(phi float64) float64 {
	if s.typ == SpecH {
		return potential.EpsilonH(s.hub, phi)
	}
	return potential.EpsilonV(s.pot, phi)
}

// hubbleFromEnergy returns H for a potential model given dphi/dt and V,
// using the Friedmann constraint H^2 = 8pi/3 (dphidt^2/2 + V).
func hubbleFromEnergy(dphidt, v float64) float64 {
	return math.Sqrt((8. * math.Pi / 3.) * (0.5*dphidt*dphidt + v))
}
