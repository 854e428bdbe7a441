// Package spectrum stores and serves the primordial power spectra: analytic
// parametric forms, tables computed by the inflation solver, or spectra read
// from an external generator. Values are tabulated against ln k and
// interpolated with a natural cubic spline; several correlated initial
// conditions are supported through symmetric-pair packed storage.
package spectrum

import "fmt"

// Mode indexes the perturbation mode type.
type Mode int

const (
	Scalar Mode = iota
	Tensor
)

// Format selects the spectrum query convention: Linear takes k and returns
// P(k); Log takes ln k and returns ln P(k), with off-diagonal entries
// holding the cross-correlation angle in [-1, 1] instead of a logarithm.
type Format int

const (
	Linear Format = iota
	Log
)

// Context describes which modes and initial conditions the downstream
// perturbation solver requests, and the wavenumber range it needs covered.
type Context struct {
	KMin   float64 `yaml:"k_min"`
	KMax   float64 `yaml:"k_max"`
	KPivot float64 `yaml:"k_pivot"`

	HasScalars bool `yaml:"scalars"`
	HasTensors bool `yaml:"tensors"`

	// scalar isocurvature initial conditions; the adiabatic mode is
	// always present when scalars are
	HasBi  bool `yaml:"bi"`
	HasCdi bool `yaml:"cdi"`
	HasNid bool `yaml:"nid"`
	HasNiv bool `yaml:"niv"`
}

// scalar IC ordering within a mode; indices are assigned densely in this
// order to the conditions present
const (
	icAd = iota
	icBi
	icCdi
	icNid
	icNiv
)

// Modes returns how many mode types are active.
func (c *Context) Modes() int {
	n := 0
	if c.HasScalars {
		n++
	}
	if c.HasTensors {
		n++
	}
	return n
}

// ModeIndex maps a mode type to its dense index, or -1 when inactive.
func (c *Context) ModeIndex(m Mode) int {
	switch m {
	case Scalar:
		if c.HasScalars {
			return 0
		}
	case Tensor:
		if !c.HasTensors {
			return -1
		}
		if c.HasScalars {
			return 1
		}
		return 0
	}
	return -1
}

// ICSize returns the number of initial conditions of a mode.
func (c *Context) ICSize(m Mode) int {
	switch m {
	case Scalar:
		n := 1 // adiabatic
		if c.HasBi {
			n++
		}
		if c.HasCdi {
			n++
		}
		if c.HasNid {
			n++
		}
		if c.HasNiv {
			n++
		}
		return n
	case Tensor:
		return 1
	}
	return 0
}

// scalarICIndices returns the dense index of each scalar IC, -1 if absent.
func (c *Context) scalarICIndices() (ad, bi, cdi, nid, niv int) {
	ad, bi, cdi, nid, niv = -1, -1, -1, -1, -1
	i := 0
	ad = i
	i++
	if c.HasBi {
		bi = i
		i++
	}
	if c.HasCdi {
		cdi = i
		i++
	}
	if c.HasNid {
		nid = i
		i++
	}
	if c.HasNiv {
		niv = i
		i++
	}
	return
}

func (c *Context) validate() error {
	if c.KMin <= 0 || c.KMax <= c.KMin {
		return fmt.Errorf("inconsistent wavenumber range [%e, %e]", c.KMin, c.KMax)
	}
	if c.KPivot <= 0 {
		return fmt.Errorf("pivot scale %e must be positive", c.KPivot)
	}
	if !c.HasScalars && !c.HasTensors {
		return fmt.Errorf("no perturbation modes requested")
	}
	return nil
}

// PairSize is the number of independent entries of a symmetric n x n matrix.
func PairSize(n int) int {
	return n * (n + 1) / 2
}

// Pack maps a symmetric pair (i, j) of an n x n matrix to its offset in
// upper-triangular packed storage. Pack(i, j, n) == Pack(j, i, n).
func Pack(i, j, n int) int {
	if i > j {
		i, j = j, i
	}
	return j + n*i - (i*(i+1))/2
}
