package config

import (
	"github.com/san-kum/primordial/internal/potential"
	"github.com/san-kum/primordial/internal/spectrum"
)

var planckRange = spectrum.Context{
	KMin:       1e-5,
	KMax:       10.0,
	KPivot:     0.05,
	HasScalars: true,
	HasTensors: true,
}

var Presets = map[string]map[string]*Config{
	"analytic_Pk": {
		"planck": {
			Type: "analytic_Pk", KPerDecade: 10, Context: planckRange,
			Analytic: spectrum.AnalyticParams{As: 2.1e-9, Ns: 0.9649, AlphaS: 0., R: 0.06, Nt: -0.0075},
		},
		"scale_invariant": {
			Type: "analytic_Pk", KPerDecade: 10, Context: planckRange,
			Analytic: spectrum.AnalyticParams{As: 2.1e-9, Ns: 1.},
		},
		"running": {
			Type: "analytic_Pk", KPerDecade: 10, Context: planckRange,
			Analytic: spectrum.AnalyticParams{As: 2.1e-9, Ns: 0.9649, AlphaS: -0.01},
		},
		"mixed_cdi": {
			Type: "analytic_Pk", KPerDecade: 10,
			Context: spectrum.Context{
				KMin: 1e-5, KMax: 10.0, KPivot: 0.05,
				HasScalars: true, HasCdi: true,
			},
			Analytic: spectrum.AnalyticParams{
				As: 2.1e-9, Ns: 0.9649,
				FCdi: 0.1, NCdi: 1., CAdCdi: -0.5,
			},
		},
	},
	"inflation_V": {
		"slow_roll": {
			Type: "inflation_V", KPerDecade: 10, Context: planckRange,
			Model: "polynomial",
			Potential: potential.Params{
				V0: 1e-10, V1: -1e-12, PhiPivot: 0.,
			},
		},
		"natural": {
			Type: "inflation_V", KPerDecade: 10, Context: planckRange,
			Model: "natural",
			Potential: potential.Params{
				V0: 1.5e-11, V1: 5., PhiPivot: 7.,
			},
		},
	},
	"inflation_V_end": {
		"chaotic": {
			Type: "inflation_V_end", KPerDecade: 10, Context: planckRange,
			Model: "polynomial",
			Potential: potential.Params{
				V0: 1.5e-11, V1: -2.4e-12, V2: 3.6e-13, PhiPivot: 15., PhiEnd: 16.5,
			},
		},
	},
	"inflation_H": {
		"slow_roll": {
			Type: "inflation_H", KPerDecade: 10, Context: planckRange,
			Hubble: potential.Hubble{
				H0: 1.2e-5, H1: -1e-7,
			},
		},
	},
	"external_Pk": {
		"file": {
			Type: "external_Pk", Context: planckRange,
			External: ExternalConfig{Command: "cat spectrum.dat"},
		},
	},
}

// GetPreset returns a copy of the named preset; callers may mutate it
// freely without touching the shared table.
func GetPreset(kind, preset string) *Config {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	cfg, ok := kindPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	c.External.Args = append([]float64(nil), cfg.External.Args...)
	return &c
}

func ListPresets(kind string) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	return names
}
