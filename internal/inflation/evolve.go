package inflation

import (
	"fmt"
	"math"
)

// evolveBackground integrates the background equations in place until a
// stopping target is met: a given expansion rate aH, a given field value, or
// the end of accelerated expansion (d2a/dt2 = 0). The loop advances with an
// adaptive step sized from local curvature timescales, stops one step before
// overshooting, and lands on the target with a single trapezoidal
// correction. With checkEpsilon set, an epsilon<1 -> epsilon>1 crossing
// aborts with a SlowRollError.
//
// Backward runs of potential-based models integrate the first-order
// slow-roll reduction, dropping the field-momentum dimension. The final dy
// vector is returned for callers that need derivatives at the stop point.
func (s *Solver) evolveBackground(y integrateState, target Target, stop float64, checkEpsilon bool, dir Direction) (integrateState, error) {
	l := s.lay

	n := l.bgSize
	if dir == Backward && (s.typ == SpecV || s.typ == SpecVEnd) {
		// the attractor reduction has no equation for phi'
		n--
	}
	yb := y[:n]
	dy := make(integrateState, n)

	sys := &system{s: s, dir: dir}

	signDtau := 1.
	if dir == Backward {
		signDtau = -1.
	}

	epsilon := 0.
	if checkEpsilon {
		epsilon = s.Epsilon(y[l.phi])
	}

	tauEnd := 0.
	sys.derive(yb, dy)
	aH := sys.aH

	dtau := s.stepSize(yb, dy, aH, dir, signDtau)

	quantity, err := s.stopQuantity(target, yb, dy, aH, dtau, &stop)
	if err != nil {
		return nil, err
	}

	for signDtau*(quantity-stop) < 0 {

		if s.typ == SpecV || s.typ == SpecVEnd {
			if _, _, _, err := s.checkPotential(y[l.phi]); err != nil {
				return nil, err
			}
		} else {
			if _, _, _, _, err := s.checkHubble(y[l.phi]); err != nil {
				return nil, err
			}
		}

		tauStart := tauEnd
		tauEnd = tauStart + dtau

		if math.Abs(dtau/tauStart) < s.prec.SmallestVariation {
			return nil, &StepSizeError{Tau: tauStart, Step: dtau / tauStart}
		}

		if err := s.rk.Advance(sys, yb, tauStart, tauEnd, s.prec.TolIntegration, s.prec.SmallestVariation); err != nil {
			return nil, fmt.Errorf("background evolution: %w", err)
		}

		if checkEpsilon {
			epsilonOld := epsilon
			epsilon = s.Epsilon(y[l.phi])
			if epsilon > 1 && epsilonOld <= 1 {
				return nil, &SlowRollError{Phi: y[l.phi]}
			}
		}

		sys.derive(yb, dy)
		aH = sys.aH

		dtau = s.stepSize(yb, dy, aH, dir, signDtau)

		quantity, _ = s.stopQuantity(target, yb, dy, aH, dtau, &stop)
	}

	// land on the target with one trapezoidal step
	switch target {
	case TargetAH:
		dtau = (stop/aH - 1.) / aH
	case TargetPhi:
		dtau = (stop - y[l.phi]) / dy[l.phi]
	case TargetEndInflation:
		// d(quantity)/dtau = 8pi phi' phi'' / a^2 exactly, so one Newton
		// step pulls quantity back to zero
		dtau = -quantity / (8. * math.Pi / y[l.a] / y[l.a] * dy[l.phi] * dy[l.dphi])
	}

	for i := 0; i < n; i++ {
		yb[i] += dy[i] * dtau
	}

	sys.derive(yb, dy)
	return dy, nil
}

// stepSize estimates the next conformal-time step from local timescales.
func (s *Solver) stepSize(y, dy integrateState, aH float64, dir Direction, signDtau float64) float64 {
	l := s.lay
	if dir == Forward && (s.typ == SpecV || s.typ == SpecVEnd) {
		return s.prec.BGStepsize * math.Min(1./aH, math.Abs(y[l.dphi]/dy[l.dphi]))
	}
	return signDtau * s.prec.BGStepsize / aH
}

// stopQuantity predicts the value of the target quantity after the next
// step, used by the overshoot test sign(dtau)*(quantity-stop) < 0.
func (s *Solver) stopQuantity(target Target, y, dy integrateState, aH, dtau float64, stop *float64) (float64, error) {
	l := s.lay
	switch target {
	case TargetAH:
		return aH + aH*aH*dtau, nil
	case TargetPhi:
		return y[l.phi] + dy[l.phi]*dtau, nil
	case TargetEndInflation:
		if s.typ != SpecVEnd {
			return 0, fmt.Errorf("end-of-inflation target requires a SpecVEnd model")
		}
		*stop = 0.
		// -d2a/dt2 / a = [-(a'/a)^2 + 4pi phi'^2] / a^2
		return (-aH*aH + 4.*math.Pi*y[l.dphi]*y[l.dphi]) / y[l.a] / y[l.a], nil
	}
	return 0, fmt.Errorf("unknown evolution target %d", target)
}
