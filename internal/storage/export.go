package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/sim"
)

type ExportData struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Collision string              `json:"collision"`
	Scheme    string              `json:"scheme"`
	Dt        float64             `json:"dt"`
	Duration  float64             `json:"duration"`
	Steps     int                 `json:"steps"`
	Times     []float64           `json:"times"`
	States    [][]dynamo.Particle `json:"states"`
	Bounces   []sim.Bounce        `json:"bounces,omitempty"`
	Metrics   map[string]float64  `json:"metrics"`
}

func newExportData(meta *RunMetadata, result *sim.Result) ExportData {
	return ExportData{
		ID:        meta.ID,
		Name:      meta.Name,
		Collision: meta.Collision,
		Scheme:    meta.Scheme,
		Dt:        meta.Dt,
		Duration:  meta.Duration,
		Steps:     len(result.Times),
		Times:     result.Times,
		States:    result.States,
		Bounces:   result.Bounces,
		Metrics:   result.Metrics,
	}
}

func WriteJSON(w io.Writer, meta *RunMetadata, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, result))
}

func ExportJSON(path string, meta *RunMetadata, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, result)
}

func ExportJSONStdout(meta *RunMetadata, result *sim.Result) error {
	return WriteJSON(os.Stdout, meta, result)
}

// LoadResult rebuilds a result from a stored run. Bounce events are not
// persisted, so only states, times and metrics come back.
func (s *Store) LoadResult(runID string) (*RunMetadata, *sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, &sim.Result{
		States:     states,
		Times:      times,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}, nil
}
