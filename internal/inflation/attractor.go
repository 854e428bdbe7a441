package inflation

import "math"

// FindAttractor locates the slow-roll attractor at phi0 by shooting: it
// starts integrations from points further and further back (roughly one
// e-fold of inflation apart), each with the slow-roll initial condition
// phi' = -V'/(3H), and compares the resulting phi'(phi0) between successive
// starting points. When the series stabilizes within precision, the
// attractor is considered found; after AttractorMaxIter iterations an
// AttractorError is returned. Outputs are H and dphi/dt at phi0.
func (s *Solver) FindAttractor(phi0, precision float64) (h0, dphidt0 float64, err error) {
	v0, dv0, _, err := s.checkPotential(phi0)
	if err != nil {
		return 0, 0, err
	}

	dphidtNew := -dv0 / 3. / math.Sqrt((8.*math.Pi/3.)*v0)
	phi := phi0
	counter := 0

	// guarantees at least one pass through the loop
	dphidtOld := dphidtNew / (precision + 2.)

	y := make(integrateState, s.lay.bgSize)

	for math.Abs(dphidtNew/dphidtOld-1.) >= precision {
		counter++
		if counter >= s.prec.AttractorMaxIter {
			return 0, 0, &AttractorError{Phi: phi0, Iterations: counter, Tolerance: precision}
		}

		dphidtOld = dphidtNew

		// step back by roughly one more e-fold
		phi += dv0 / v0 / 16. / math.Pi

		v, dv, _, err := s.checkPotential(phi)
		if err != nil {
			return 0, 0, err
		}

		y[s.lay.a] = 1.
		y[s.lay.phi] = phi
		y[s.lay.dphi] = -dv / 3. / math.Sqrt((8.*math.Pi/3.)*v) // a=1, dphi/dtau = a dphi/dt

		if _, err := s.evolveBackground(y, TargetPhi, phi0, true, Forward); err != nil {
			return 0, 0, err
		}

		dphidtNew = y[s.lay.dphi] / y[s.lay.a]
	}

	h0 = hubbleFromEnergy(dphidtNew, v0)
	s.logf(" (attractor found at phi=%g with dphi/dt=%g, H=%g)\n", phi0, dphidtNew, h0)
	return h0, dphidtNew, nil
}
