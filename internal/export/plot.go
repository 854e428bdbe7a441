package export

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/primordial/internal/spectrum"
)

// PlotPNG renders the spectra as a log-log plot.
func PlotPNG(path string, src spectrum.Source) error {
	table := src.Table()
	ctx := table.Context()

	p := plot.New()
	p.Title.Text = "Primordial power spectrum"
	p.X.Label.Text = "k [1/Mpc]"
	p.Y.Label.Text = "P(k)"
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	addLine := func(m spectrum.Mode, label string) error {
		out := make([]float64, table.PairCount(m))
		pts := make(plotter.XYs, 0, len(table.LnK()))
		for _, lnk := range table.LnK() {
			k := math.Exp(lnk)
			if err := src.At(m, spectrum.Linear, k, out); err != nil {
				return err
			}
			if out[0] > 0 {
				pts = append(pts, plotter.XY{X: k, Y: out[0]})
			}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		if m == spectrum.Tensor {
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		p.Add(line)
		p.Legend.Add(label, line)
		return nil
	}

	if ctx.HasScalars {
		if err := addLine(spectrum.Scalar, "scalar"); err != nil {
			return err
		}
	}
	if ctx.HasTensors {
		if err := addLine(spectrum.Tensor, "tensor"); err != nil {
			return err
		}
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
