package inflation

import "fmt"

// SlowRollError reports that epsilon crossed above 1 during the observable
// e-folds, i.e. inflation broke down before the window closed.
type SlowRollError struct {
	Phi float64
}

func (e *SlowRollError) Error() string {
	return fmt.Sprintf("inflaton crosses from epsilon<1 to epsilon>1 at phi=%g: inflation disrupted during the observable e-folds", e.Phi)
}

// AttractorError reports failure to converge on the slow-roll attractor.
type AttractorError struct {
	Phi        float64
	Iterations int
	Tolerance  float64
}

func (e *AttractorError) Error() string {
	return fmt.Sprintf("no attractor solution near phi=%g after %d iterations (tolerance=%g): potential probably too steep in this region", e.Phi, e.Iterations, e.Tolerance)
}

// StepSizeError reports an adaptive step underflowing machine precision.
type StepSizeError struct {
	Tau  float64
	Step float64
}

func (e *StepSizeError) Error() string {
	return fmt.Sprintf("relative time step %e at tau=%e below machine precision: numerical error or infinite loop", e.Step, e.Tau)
}

// NegativeSpectrumError reports a non-physical integration result.
type NegativeSpectrumError struct {
	K      float64
	Tensor bool
}

func (e *NegativeSpectrumError) Error() string {
	kind := "curvature"
	if e.Tensor {
		kind = "tensor"
	}
	return fmt.Sprintf("negative %s spectrum at k=%e", kind, e.K)
}

// ShapeError reports a potential or H(phi) taking forbidden values during
// the evolution (the solver only handles V>0 with dV<0, H>0 with dH<0).
type ShapeError struct {
	Phi    float64
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("at phi=%g: %s", e.Phi, e.Reason)
}

// PhiIniError reports failure to locate an early-enough initial field value.
type PhiIniError struct {
	Iterations int
}

func (e *PhiIniError) Error() string {
	return fmt.Sprintf("could not converge on an initial field value after %d iterations: the potential does not allow enough inflationary e-folds before the pivot scale", e.Iterations)
}
