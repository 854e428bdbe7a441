package inflation

import "math"

// findPhiStop locates the field value where inflation ends. If epsilon is
// still below 1 at PhiEnd, inflation is taken to stop abruptly there (hybrid
// models, reported via the hybrid flag); otherwise the epsilon=1 crossing
// closest below PhiEnd is bracketed by a logarithmic sweep and refined by
// bisection. Epsilon is never evaluated exactly at PhiEnd, which may sit on
// a singular point of the potential.
func (s *Solver) findPhiStop() (phi float64, hybrid bool, err error) {
	dphi := s.prec.EndDphi

	eps := s.Epsilon(s.PhiEnd - dphi)
	if eps < 1 {
		s.logf(" (inflation holds until the input phi_end, hybrid-style)\n")
		return s.PhiEnd - dphi, true, nil
	}

	for eps > 1 {
		dphi *= s.prec.EndLogstep
		eps = s.Epsilon(s.PhiEnd - dphi)
	}

	phiLeft := s.PhiEnd - dphi
	phiRight := s.PhiEnd - dphi/s.prec.EndLogstep

	var phiMid float64
	for {
		phiMid = 0.5 * (phiLeft + phiRight)
		if s.Epsilon(phiMid) < 1 {
			phiLeft = phiMid
		} else {
			phiRight = phiMid
		}
		if math.Abs((phiRight-phiLeft)/phiMid) <= s.prec.EndPhiStopPrecision {
			break
		}
	}

	s.logf(" (inflation stops at phi=%e)\n", phiMid)
	return phiMid, false, nil
}

// findPhiPivot sets PhiPivot for SpecVEnd models: starting from the end of
// inflation, it shoots backward along the approximate attractor until the
// requested ln(aH) ratio fits between the pivot and the end, re-deriving the
// exact attractor at each trial point and counting the available e-folds
// with an exact forward integration. The forward run stops at d2a/dt2 = 0
// when inflation ends dynamically, or at phi_stop itself in the hybrid case
// where d2a/dt2 never crosses zero.
func (s *Solver) findPhiPivot() error {
	l := s.lay

	phiStop, hybrid, err := s.findPhiStop()
	if err != nil {
		return err
	}

	endTarget, endStop := TargetEndInflation, 0.
	if hybrid {
		endTarget, endStop = TargetPhi, phiStop
	}

	v, _, _ := s.pot.Evaluate(phiStop)

	// aH at the end of inflation, normalizing a=1 there and using
	// (phi')^2 = a^2 V (exact when a''=0)
	aHStop := math.Sqrt((8. * math.Pi / 3.) * 1.5 * v)
	aHPivot := aHStop / math.Exp(s.LnAHRatio)

	y := make(integrateState, l.size)
	y[l.a] = 1.
	y[l.phi] = phiStop

	// rough backward shot toward the pivot expansion rate
	if _, err := s.evolveBackground(y, TargetAH, aHPivot*s.prec.AHIniTarget, true, Backward); err != nil {
		return err
	}
	phiTry := y[l.phi]

	var hTry, dphidtTry float64
	counter := 0
	for {
		counter++
		if counter >= s.prec.PhiIniMaxIter {
			return &PhiIniError{Iterations: counter}
		}

		hTry, dphidtTry, err = s.FindAttractor(phiTry, s.prec.AttractorPrecisionInitial)
		if err != nil {
			return err
		}

		y[l.a] = 1.
		y[l.phi] = phiTry
		y[l.dphi] = y[l.a] * dphidtTry

		dy, err := s.evolveBackground(y, endTarget, endStop, false, Forward)
		if err != nil {
			return err
		}
		aHEnd := dy[l.a] / y[l.a]

		// enough e-folds between phi_try and the end of inflation?
		if math.Log(aHEnd/hTry) >= s.LnAHRatio {
			// walk forward on the exact solution to the pivot itself
			y[l.a] = 1.
			y[l.phi] = phiTry
			y[l.dphi] = y[l.a] * dphidtTry
			if _, err := s.evolveBackground(y, TargetAH, aHEnd/math.Exp(s.LnAHRatio), false, Forward); err != nil {
				return err
			}
			s.PhiPivot = y[l.phi]
			s.logf(" (phi_pivot located at %e)\n", s.PhiPivot)
			return nil
		}

		// one more e-fold back
		vTry, dvTry, _ := s.pot.Evaluate(phiTry)
		phiTry += dvTry / vTry / 16. / math.Pi
	}
}
