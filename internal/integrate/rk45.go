package integrate

import (
	"fmt"
	"math"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// State is a flat vector of evolved quantities.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// System provides the right-hand side of the ODE y' = f(tau, y).
type System interface {
	Derivs(tau float64, y, dy State)
}

// StepUnderflowError reports that the adaptive substep shrank below the
// smallest allowed relative variation before reaching the target time.
type StepUnderflowError struct {
	Tau  float64
	Step float64
}

func (e *StepUnderflowError) Error() string {
	return fmt.Sprintf("integration substep underflow at tau=%e (step=%e)", e.Tau, e.Step)
}

// RK45 is an embedded Dormand-Prince 4(5) integrator with step-size control.
// It is reused across calls; scratch buffers grow on demand.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64

	k1, k2, k3, k4, k5, k6, k7 State
	ytmp, ynew                 State
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(State, n)
		r.k2 = make(State, n)
		r.k3 = make(State, n)
		r.k4 = make(State, n)
		r.k5 = make(State, n)
		r.k6 = make(State, n)
		r.k7 = make(State, n)
		r.ytmp = make(State, n)
		r.ynew = make(State, n)
	}
}

// step performs a single trial step of size h from tau, writing the candidate
// state into r.ynew and returning the worst component-wise error ratio.
func (r *RK45) step(sys System, y State, tau, h, tol float64) float64 {
	n := len(y)

	sys.Derivs(tau, y, r.k1)

	for i := 0; i < n; i++ {
		r.ytmp[i] = y[i] + h*b21*r.k1[i]
	}
	sys.Derivs(tau+a2*h, r.ytmp, r.k2)

	for i := 0; i < n; i++ {
		r.ytmp[i] = y[i] + h*(b31*r.k1[i]+b32*r.k2[i])
	}
	sys.Derivs(tau+a3*h, r.ytmp, r.k3)

	for i := 0; i < n; i++ {
		r.ytmp[i] = y[i] + h*(b41*r.k1[i]+b42*r.k2[i]+b43*r.k3[i])
	}
	sys.Derivs(tau+a4*h, r.ytmp, r.k4)

	for i := 0; i < n; i++ {
		r.ytmp[i] = y[i] + h*(b51*r.k1[i]+b52*r.k2[i]+b53*r.k3[i]+b54*r.k4[i])
	}
	sys.Derivs(tau+a5*h, r.ytmp, r.k5)

	for i := 0; i < n; i++ {
		r.ytmp[i] = y[i] + h*(b61*r.k1[i]+b62*r.k2[i]+b63*r.k3[i]+b64*r.k4[i]+b65*r.k5[i])
	}
	sys.Derivs(tau+h, r.ytmp, r.k6)

	for i := 0; i < n; i++ {
		r.ynew[i] = y[i] + h*(c1*r.k1[i]+c3*r.k3[i]+c4*r.k4[i]+c5*r.k5[i]+c6*r.k6[i])
	}
	sys.Derivs(tau+h, r.ynew, r.k7)

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := h * (dc1*r.k1[i] + dc3*r.k3[i] + dc4*r.k4[i] + dc5*r.k5[i] + dc6*r.k6[i] + dc7*r.k7[i])
		scale := math.Abs(y[i]) + math.Abs(h*r.k1[i]) + 1e-30
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}
	return errMax / tol
}

// Advance integrates sys over [tau0, tau1], mutating y in place. The interval
// may run backward (tau1 < tau0). tol bounds the relative error per substep;
// smallest is the smallest allowed substep relative to the interval, below
// which a StepUnderflowError is returned.
func (r *RK45) Advance(sys System, y State, tau0, tau1, tol, smallest float64) error {
	r.ensureScratch(len(y))

	span := tau1 - tau0
	if span == 0 {
		return nil
	}

	tau := tau0
	h := span

	for {
		remaining := tau1 - tau
		if math.Abs(h) > math.Abs(remaining) {
			h = remaining
		}

		errRatio := r.step(sys, y, tau, h, tol)

		if errRatio > 1 {
			scale := math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
			h *= scale
			if math.Abs(h/span) < smallest {
				return &StepUnderflowError{Tau: tau, Step: h}
			}
			continue
		}

		copy(y, r.ynew)
		tau += h

		if tau == tau1 || math.Abs((tau1-tau)/span) < smallest {
			return nil
		}

		if errRatio > 0 {
			scale := math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
			h *= scale
		} else {
			h *= r.maxScale
		}
	}
}
