package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/primordial/internal/inflation"
	"github.com/san-kum/primordial/internal/injection"
	"github.com/san-kum/primordial/internal/potential"
	"github.com/san-kum/primordial/internal/spectrum"
)

const (
	DefaultKMin       = 1e-5
	DefaultKMax       = 10.0
	DefaultKPivot     = 0.05
	DefaultKPerDecade = 10.0
	DefaultAs         = 2.1e-9
	DefaultNs         = 0.9649
	DefaultLnAHRatio  = 50.0
)

// Config is the full description of one spectrum computation: which kind
// of source, over which wavenumber range, with which model parameters.
type Config struct {
	// Type selects the source: analytic_Pk, inflation_V, inflation_V_end,
	// inflation_H or external_Pk.
	Type       string  `yaml:"type"`
	KPerDecade float64 `yaml:"k_per_decade"`
	// LnAHRatio is the requested ln(aH_end / aH_pivot) for the
	// end-of-inflation pivot search.
	LnAHRatio float64 `yaml:"ln_ah_ratio"`

	Context   spectrum.Context        `yaml:"range"`
	Analytic  spectrum.AnalyticParams `yaml:"analytic"`
	Model     string                  `yaml:"model"`
	Potential potential.Params        `yaml:"potential"`
	Hubble    potential.Hubble        `yaml:"hubble"`
	Precision inflation.Precision     `yaml:"precision"`
	External  ExternalConfig          `yaml:"external"`
	Injection injection.Params        `yaml:"injection"`

	// Log receives solver progress messages; nil keeps the solve quiet.
	Log io.Writer `yaml:"-"`
}

// ExternalConfig describes the command producing a precomputed spectrum.
type ExternalConfig struct {
	Command string    `yaml:"command"`
	Args    []float64 `yaml:"args"`
}

func DefaultConfig() *Config {
	return &Config{
		Type:       "analytic_Pk",
		KPerDecade: DefaultKPerDecade,
		LnAHRatio:  DefaultLnAHRatio,
		Context: spectrum.Context{
			KMin:       DefaultKMin,
			KMax:       DefaultKMax,
			KPivot:     DefaultKPivot,
			HasScalars: true,
			HasTensors: true,
		},
		Analytic: spectrum.AnalyticParams{
			As: DefaultAs,
			Ns: DefaultNs,
		},
		Model:     "polynomial",
		Injection: injection.DefaultParams(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Solver builds the inflation solver matching the configured type.
func (c *Config) Solver() (*inflation.Solver, error) {
	switch c.Type {
	case "inflation_V", "inflation_V_end":
		pot, err := potential.New(c.Model, c.Potential)
		if err != nil {
			return nil, err
		}
		typ := inflation.SpecV
		if c.Type == "inflation_V_end" {
			typ = inflation.SpecVEnd
		}
		solver, err := inflation.NewPotentialSolver(typ, pot, c.Potential.PhiPivot, c.Precision)
		if err != nil {
			return nil, err
		}
		if typ == inflation.SpecVEnd {
			solver.PhiEnd = c.Potential.PhiEnd
			solver.LnAHRatio = c.LnAHRatio
			if solver.LnAHRatio <= 0 {
				solver.LnAHRatio = DefaultLnAHRatio
			}
		}
		solver.SetLog(c.Log)
		return solver, nil
	case "inflation_H":
		solver := inflation.NewHubbleSolver(c.Hubble, c.Hubble.PhiPivot, c.Precision)
		solver.SetLog(c.Log)
		return solver, nil
	default:
		return nil, fmt.Errorf("spectrum type %q needs no inflation solver", c.Type)
	}
}

// Source builds the spectrum source described by the configuration.
// progress may be nil; it is only called for the inflationary types.
func (c *Config) Source(progress inflation.Progress) (spectrum.Source, error) {
	switch c.Type {
	case "analytic_Pk":
		lnk, err := spectrum.LnKGrid(c.Context.KMin, c.Context.KMax, c.KPerDecade)
		if err != nil {
			return nil, err
		}
		return spectrum.NewAnalyticSource(&c.Context, c.Analytic, lnk)

	case "inflation_V", "inflation_V_end", "inflation_H":
		solver, err := c.Solver()
		if err != nil {
			return nil, err
		}
		lnk, err := spectrum.LnKGrid(c.Context.KMin, c.Context.KMax, c.KPerDecade)
		if err != nil {
			return nil, err
		}
		return spectrum.NewInflationSource(&c.Context, solver, lnk, progress)

	case "external_Pk":
		return spectrum.NewExternalSource(&c.Context, c.External.Command, c.External.Args)

	default:
		return nil, fmt.Errorf("unknown spectrum type %q", c.Type)
	}
}
