package spectrum

import (
	"fmt"

	"github.com/san-kum/primordial/internal/inflation"
)

// Source is any producer of primordial spectra: it tabulates P(k) over a
// wavenumber grid and answers interpolated queries.
type Source interface {
	// Table exposes the tabulated spectra.
	Table() *Table
	// At fills out with the packed IC pairs of mode m at the given
	// wavenumber (k for Linear, ln k for Log input and output).
	At(m Mode, f Format, input float64, out []float64) error
}

// InflationSource obtains the spectra by integrating inflationary
// perturbations mode by mode. Only the adiabatic scalar and the tensor
// spectrum are produced.
type InflationSource struct {
	ctx    *Context
	solver *inflation.Solver
	table  *Table
}

// NewInflationSource runs the full inflationary computation over the lnk
// grid and tabulates the result. progress may be nil.
func NewInflationSource(ctx *Context, solver *inflation.Solver, lnk []float64, progress inflation.Progress) (*InflationSource, error) {
	if ctx.ICSize(Scalar) > 1 {
		return nil, fmt.Errorf("inflationary spectra support only adiabatic initial conditions")
	}

	table, err := NewTable(ctx, lnk)
	if err != nil {
		return nil, err
	}

	res, err := solver.Spectra(lnk, ctx.KPivot, progress)
	if err != nil {
		return nil, err
	}

	for ik := range lnk {
		if idx := ctx.ModeIndex(Scalar); idx >= 0 {
			table.set(Scalar, ik, 0, res.LnPScalar[ik], true)
		}
		if idx := ctx.ModeIndex(Tensor); idx >= 0 {
			table.set(Tensor, ik, 0, res.LnPTensor[ik], true)
		}
	}
	if err := table.finalize(); err != nil {
		return nil, err
	}

	return &InflationSource{ctx: ctx, solver: solver, table: table}, nil
}

// Table exposes the tabulated form.
func (s *InflationSource) Table() *Table { return s.table }

// At interpolates inside the tabulated range. Unlike the analytic case
// there is no closed form to extend beyond it.
func (s *InflationSource) At(m Mode, f Format, input float64, out []float64) error {
	return s.table.At(m, f, input, out)
}
