package inflation

import "math"

// system is the right-hand side of the background (and optionally
// perturbation) equations in conformal time. For potential-based models the
// forward direction integrates the exact second-order Klein-Gordon equation;
// the backward direction follows the first-order slow-roll reduction, in
// which case the state vector intentionally drops the field momentum (the
// callers only use backward runs to find rough initial times, and always
// re-derive the exact forward solution afterwards). The Hubble-flow model is
// first order in both directions.
type system struct {
	s    *Solver
	dir  Direction
	pert bool
	k    float64

	// refreshed on every Derivs call
	aH       float64
	zppOverZ float64
	appOverA float64
}

func (d *system) Derivs(tau float64, y, dy integrateState) {
	s := d.s
	l := s.lay
	a := y[l.a]
	a2 := a * a

	switch s.typ {
	case SpecV, SpecVEnd:
		v, dv, ddv := s.pot.Evaluate(y[l.phi])

		switch d.dir {
		case Forward:
			dphi := y[l.dphi]
			d.aH = math.Sqrt((8. * math.Pi / 3.) * (0.5*dphi*dphi + a2*v))
			dy[l.a] = a * d.aH
			dy[l.phi] = dphi
			dy[l.dphi] = -2.*d.aH*dphi - a2*dv

			d.zppOverZ = 2.*d.aH*d.aH -
				a2*ddv -
				4.*math.Pi*(7.*dphi*dphi+4.*dphi/d.aH*a2*dv) +
				32.*math.Pi*math.Pi*math.Pow(dphi, 4)/(d.aH*d.aH)

			d.appOverA = 2.*d.aH*d.aH - 4.*math.Pi*dphi*dphi

		case Backward:
			// slow-roll reduction: kinetic energy neglected, phi''
			// neglected against 2 aH phi'
			d.aH = math.Sqrt((8. * math.Pi / 3.) * a2 * v)
			dy[l.a] = a * d.aH
			dy[l.phi] = -a2 * dv / 3. / d.aH
		}

	case SpecH:
		h, dh, ddh, dddh := s.hub.Evaluate(y[l.phi])

		d.aH = a * h
		dy[l.a] = a2 * h
		dy[l.phi] = -1. / 4. / math.Pi * a * dh

		d.zppOverZ = 2.*a2*h*h -
			3./4./math.Pi*a2*h*ddh +
			1./16./math.Pi/math.Pi*a2*ddh*ddh +
			1./16./math.Pi/math.Pi*a2*dh*dddh -
			1./4./math.Pi/math.Pi*a2*dh*dh*ddh/h +
			1./2./math.Pi*a2*dh*dh +
			1./8./math.Pi/math.Pi*a2*dh*dh*dh*dh/h/h

		d.appOverA = 2.*a2*h*h - 4.*math.Pi*dy[l.phi]*dy[l.phi]
	}

	if !d.pert {
		return
	}

	k2 := d.k * d.k

	// scalar mode xi: xi'' + (k^2 - z''/z) xi = 0
	dy[l.ksiRe] = y[l.dksiRe]
	dy[l.ksiIm] = y[l.dksiIm]
	dy[l.dksiRe] = -(k2 - d.zppOverZ) * y[l.ksiRe]
	dy[l.dksiIm] = -(k2 - d.zppOverZ) * y[l.ksiIm]

	// tensor mode a*h: (ah)'' + (k^2 - a''/a) (ah) = 0
	dy[l.ahRe] = y[l.dahRe]
	dy[l.ahIm] = y[l.dahIm]
	dy[l.dahRe] = -(k2 - d.appOverA) * y[l.ahRe]
	dy[l.dahIm] = -(k2 - d.appOverA) * y[l.ahIm]
}

// derive fills dy for the current state and returns the refreshed auxiliary
// quantities without advancing time.
func (d *system) derive(y, dy integrateState) {
	d.Derivs(0, y, dy)
}
