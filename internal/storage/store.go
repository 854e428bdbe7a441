package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/primordial/internal/export"
	"github.com/san-kum/primordial/internal/spectrum"
)

// Store keeps completed spectrum runs on disk, one directory per run with
// a metadata file and the tabulated spectra.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Timestamp  time.Time          `json:"timestamp"`
	KMin       float64            `json:"k_min"`
	KMax       float64            `json:"k_max"`
	KPivot     float64            `json:"k_pivot"`
	KPerDecade float64            `json:"k_per_decade"`
	Derived    map[string]float64 `json:"derived,omitempty"`
}

func (s *Store) Save(kind string, kPerDecade float64, src spectrum.Source, derived *spectrum.Derived) (string, error) {
	runID := fmt.Sprintf("%s_%d", kind, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	ctx := src.Table().Context()
	meta := RunMetadata{
		ID:         runID,
		Type:       kind,
		Timestamp:  time.Now(),
		KMin:       ctx.KMin,
		KMax:       ctx.KMax,
		KPivot:     ctx.KPivot,
		KPerDecade: kPerDecade,
	}
	if derived != nil {
		meta.Derived = map[string]float64{
			"A_s":     derived.As,
			"n_s":     derived.Ns,
			"alpha_s": derived.AlphaS,
			"beta_s":  derived.BetaS,
		}
		if derived.HasTensors {
			meta.Derived["r"] = derived.R
			meta.Derived["n_t"] = derived.Nt
			meta.Derived["alpha_t"] = derived.AlphaT
		}
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "spectrum.csv")
	if err := export.WriteCSVFile(csvPath, src); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// SpectrumPath returns the location of the tabulated spectra of a run.
func (s *Store) SpectrumPath(runID string) string {
	return filepath.Join(s.baseDir, runID, "spectrum.csv")
}

// LoadSpectrum reads back the tabulated spectra of a run: the wavenumbers
// and one column slice per spectrum column.
func (s *Store) LoadSpectrum(runID string) (k []float64, cols [][]float64, header []string, err error) {
	csvPath := filepath.Join(s.baseDir, runID, "spectrum.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, nil, fmt.Errorf("run %s has no spectrum samples", runID)
	}

	header = records[0][1:]
	cols = make([][]float64, len(header))
	for i := 1; i < len(records); i++ {
		record := records[i]
		kv, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, nil, err
		}
		k = append(k, kv)
		for j := 1; j < len(record); j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, nil, err
			}
			cols[j-1] = append(cols[j-1], v)
		}
	}

	return k, cols, header, nil
}
