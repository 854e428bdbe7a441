package export

import (
	"encoding/json"
	"math"
	"os"

	"github.com/san-kum/primordial/internal/spectrum"
)

type ExportData struct {
	Type    string             `json:"type"`
	KMin    float64            `json:"k_min"`
	KMax    float64            `json:"k_max"`
	KPivot  float64            `json:"k_pivot"`
	K       []float64          `json:"k"`
	PScalar []float64          `json:"p_scalar,omitempty"`
	PTensor []float64          `json:"p_tensor,omitempty"`
	Derived map[string]float64 `json:"derived,omitempty"`
}

func buildExportData(kind string, src spectrum.Source, derived *spectrum.Derived) (*ExportData, error) {
	table := src.Table()
	ctx := table.Context()

	data := &ExportData{
		Type:   kind,
		KMin:   ctx.KMin,
		KMax:   ctx.KMax,
		KPivot: ctx.KPivot,
		K:      make([]float64, len(table.LnK())),
	}
	if ctx.HasScalars {
		data.PScalar = make([]float64, len(table.LnK()))
	}
	if ctx.HasTensors {
		data.PTensor = make([]float64, len(table.LnK()))
	}

	scalars := make([]float64, table.PairCount(spectrum.Scalar))
	tensors := make([]float64, table.PairCount(spectrum.Tensor))
	for i, lnk := range table.LnK() {
		k := math.Exp(lnk)
		data.K[i] = k
		if ctx.HasScalars {
			if err := src.At(spectrum.Scalar, spectrum.Linear, k, scalars); err != nil {
				return nil, err
			}
			data.PScalar[i] = scalars[0]
		}
		if ctx.HasTensors {
			if err := src.At(spectrum.Tensor, spectrum.Linear, k, tensors); err != nil {
				return nil, err
			}
			data.PTensor[i] = tensors[0]
		}
	}

	if derived != nil {
		data.Derived = map[string]float64{
			"A_s":     derived.As,
			"n_s":     derived.Ns,
			"alpha_s": derived.AlphaS,
			"beta_s":  derived.BetaS,
		}
		if derived.HasTensors {
			data.Derived["r"] = derived.R
			data.Derived["n_t"] = derived.Nt
			data.Derived["alpha_t"] = derived.AlphaT
		}
	}
	return data, nil
}

func ExportJSON(path, kind string, src spectrum.Source, derived *spectrum.Derived) error {
	data, err := buildExportData(kind, src, derived)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONStdout(kind string, src spectrum.Source, derived *spectrum.Derived) error {
	data, err := buildExportData(kind, src, derived)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
