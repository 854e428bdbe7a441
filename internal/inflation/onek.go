package inflation

import (
	"fmt"
	"math"
)

const huge = 1e99

// oneK integrates the background plus mode equations for a single
// wavenumber, starting from Bunch-Davies vacuum deep inside the horizon. The
// background part of y must already be evolved to the relevant initial time
// (aH = k/RatioMin). Integration stops once the mode is far outside the
// horizon (k/aH < RatioMax) and the curvature power has stabilized in
// e-folds. Returns the curvature and tensor power at the final time.
func (s *Solver) oneK(k float64, y integrateState) (curvature, tensor float64, err error) {
	l := s.lay

	// Bunch-Davies vacuum: xi = 1/sqrt(2k), xi' = -ik xi
	y[l.ksiRe] = 1. / math.Sqrt(2.*k)
	y[l.ksiIm] = 0.
	y[l.dksiRe] = 0.
	y[l.dksiIm] = -k * y[l.ksiRe]

	y[l.ahRe] = 1. / math.Sqrt(2.*k)
	y[l.ahIm] = 0.
	y[l.dahRe] = 0.
	y[l.dahIm] = -k * y[l.ahRe]

	sys := &system{s: s, dir: Forward, pert: true, k: k}
	dy := make(integrateState, l.size)

	curvatureNew := huge

	// only variations of tau matter; the equations carry no explicit time
	tauEnd := 0.
	sys.derive(y, dy)

	dtau := s.prec.PTStepsize * 2. * math.Pi /
		math.Max(math.Sqrt(math.Abs(dy[l.dksiRe]/y[l.ksiRe])), k)

	for {
		tauStart := tauEnd
		tauEnd = tauStart + dtau

		if math.Abs(dtau/tauStart) < s.prec.SmallestVariation {
			return 0, 0, &StepSizeError{Tau: tauStart, Step: dtau / tauStart}
		}

		if err := s.rk.Advance(sys, y, tauStart, tauEnd, s.prec.TolIntegration, s.prec.SmallestVariation); err != nil {
			return 0, 0, fmt.Errorf("mode evolution at k=%e: %w", k, err)
		}

		sys.derive(y, dy)

		dtau = s.prec.PTStepsize * 2. * math.Pi /
			math.Max(math.Sqrt(math.Abs(dy[l.dksiRe]/y[l.ksiRe])), k)

		aH := dy[l.a] / y[l.a]

		curvatureOld := curvatureNew

		z := y[l.a] * dy[l.phi] / aH
		ksi2 := y[l.ksiRe]*y[l.ksiRe] + y[l.ksiIm]*y[l.ksiIm]
		curvatureNew = k * k * k / 2. / math.Pi / math.Pi * ksi2 / z / z

		// fractional variation of ln P per e-fold
		dlnPdN := (curvatureNew - curvatureOld) / dtau * y[l.a] / dy[l.a] / curvatureNew

		if k/aH < s.prec.RatioMax && math.Abs(dlnPdN) <= s.prec.TolCurvature {
			break
		}
	}

	curvature = curvatureNew

	ah2 := y[l.ahRe]*y[l.ahRe] + y[l.ahIm]*y[l.ahIm]
	tensor = 32. * k * k * k / math.Pi * ah2 / y[l.a] / y[l.a]

	return curvature, tensor, nil
}
