package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/primordial/internal/spectrum"
)

// WriteCSV writes the tabulated spectra on their own wavenumber grid, one
// row per k, one column per IC pair of each requested mode.
func WriteCSV(w io.Writer, src spectrum.Source) error {
	table := src.Table()
	ctx := table.Context()

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"k"}
	if ctx.HasScalars {
		n := ctx.ICSize(spectrum.Scalar)
		if n == 1 {
			header = append(header, "P_scalar")
		} else {
			for i := 0; i < n; i++ {
				for j := i; j < n; j++ {
					header = append(header, fmt.Sprintf("P_scalar_%d_%d", i, j))
				}
			}
		}
	}
	if ctx.HasTensors {
		header = append(header, "P_tensor")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	var scalars, tensors []float64
	if ctx.HasScalars {
		scalars = make([]float64, table.PairCount(spectrum.Scalar))
	}
	if ctx.HasTensors {
		tensors = make([]float64, table.PairCount(spectrum.Tensor))
	}

	for _, lnk := range table.LnK() {
		k := math.Exp(lnk)
		row := []string{strconv.FormatFloat(k, 'e', 8, 64)}

		if ctx.HasScalars {
			if err := src.At(spectrum.Scalar, spectrum.Linear, k, scalars); err != nil {
				return err
			}
			for _, v := range scalars {
				row = append(row, strconv.FormatFloat(v, 'e', 8, 64))
			}
		}
		if ctx.HasTensors {
			if err := src.At(spectrum.Tensor, spectrum.Linear, k, tensors); err != nil {
				return err
			}
			row = append(row, strconv.FormatFloat(tensors[0], 'e', 8, 64))
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSVFile writes the spectra to a file.
func WriteCSVFile(path string, src spectrum.Source) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSV(f, src)
}
