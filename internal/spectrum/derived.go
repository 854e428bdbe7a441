package spectrum

import (
	"math"
)

// Derived collects the effective spectral parameters of a tabulated
// spectrum, obtained by finite differences around the pivot scale.
type Derived struct {
	As     float64
	Ns     float64
	AlphaS float64
	BetaS  float64

	HasTensors bool
	R          float64
	Nt         float64
	AlphaT     float64
}

// DeriveParams measures amplitude, tilt, running and running of the running
// at the pivot scale of any source, whatever produced it. kPerDecade sets
// the finite-difference step to the sampling density of the table.
func DeriveParams(src Source, kPerDecade float64) (*Derived, error) {
	ctx := src.Table().Context()
	dlnk := math.Log(10.) / kPerDecade
	lnPivot := math.Log(ctx.KPivot)

	at := func(m Mode, lnkv float64) (float64, error) {
		out := make([]float64, PairSize(ctx.ICSize(m)))
		if err := src.At(m, Log, lnkv, out); err != nil {
			return 0, err
		}
		return out[0], nil
	}

	d := &Derived{}

	if ctx.HasScalars {
		var pivot, plus, minus, plusplus, minusminus float64
		var err error
		if pivot, err = at(Scalar, lnPivot); err != nil {
			return nil, err
		}
		if plus, err = at(Scalar, lnPivot+dlnk); err != nil {
			return nil, err
		}
		if minus, err = at(Scalar, lnPivot-dlnk); err != nil {
			return nil, err
		}
		if plusplus, err = at(Scalar, lnPivot+2.*dlnk); err != nil {
			return nil, err
		}
		if minusminus, err = at(Scalar, lnPivot-2.*dlnk); err != nil {
			return nil, err
		}

		d.As = math.Exp(pivot)
		d.Ns = (plus-minus)/(2.*dlnk) + 1.
		d.AlphaS = (plus - 2.*pivot + minus) / (dlnk * dlnk)
		d.BetaS = (plusplus - 2.*plus + 2.*minus - minusminus) / (dlnk * dlnk * dlnk)
	}

	if ctx.HasTensors {
		var pivot, plus, minus float64
		var err error
		if pivot, err = at(Tensor, lnPivot); err != nil {
			return nil, err
		}
		if plus, err = at(Tensor, lnPivot+dlnk); err != nil {
			return nil, err
		}
		if minus, err = at(Tensor, lnPivot-dlnk); err != nil {
			return nil, err
		}

		d.HasTensors = true
		if d.As > 0 {
			d.R = math.Exp(pivot) / d.As
		}
		d.Nt = (plus - minus) / (2. * dlnk)
		d.AlphaT = (plus - 2.*pivot + minus) / (dlnk * dlnk)
	}

	return d, nil
}
