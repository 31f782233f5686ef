package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/sim"
)

// Columns per particle in states.csv: x, y, vx, vy.
const particleColumns = 4

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was configured.
type RunInfo struct {
	Name      string
	Collision string
	Scheme    string
	Dt        float64
	Duration  float64
	Seed      int64
	Params    config.Params
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Collision string             `json:"collision"`
	Scheme    string             `json:"scheme"`
	Params    config.Params      `json:"params"`
	Particles int                `json:"particles"`
	Steps     int                `json:"steps"`
	Bounces   int                `json:"bounces"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", info.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	particles := 0
	if len(result.States) > 0 {
		particles = len(result.States[0])
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      info.Name,
		Timestamp: now,
		Seed:      info.Seed,
		Dt:        info.Dt,
		Duration:  info.Duration,
		Collision: info.Collision,
		Scheme:    info.Scheme,
		Params:    info.Params,
		Particles: particles,
		Steps:     result.StepsTaken,
		Bounces:   len(result.Bounces),
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if len(result.States) == 0 {
		return runID, nil
	}

	w := csv.NewWriter(csvFile)
	if err := WriteStates(w, result.States, result.Times); err != nil {
		return "", err
	}
	return runID, nil
}

// Header returns the states.csv header for n particles.
func Header(n int) []string {
	header := make([]string, 0, 1+n*particleColumns)
	header = append(header, "time")
	for i := 0; i < n; i++ {
		header = append(header,
			fmt.Sprintf("p%d_x", i), fmt.Sprintf("p%d_y", i),
			fmt.Sprintf("p%d_vx", i), fmt.Sprintf("p%d_vy", i))
	}
	return header
}

// WriteStates writes a header and one row per recorded instant, then flushes.
func WriteStates(w *csv.Writer, states [][]dynamo.Particle, times []float64) error {
	if len(states) == 0 {
		return nil
	}
	if err := w.Write(Header(len(states[0]))); err != nil {
		return err
	}

	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, p := range states[i] {
			for _, val := range p.Row() {
				row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every stored run, oldest first.
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata for %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadStates reads states.csv back into particles. Rows with a bad time
// are skipped and a trailing partial particle is dropped.
func (s *Store) LoadStates(runID string) ([][]dynamo.Particle, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]dynamo.Particle{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]dynamo.Particle, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		values := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				val = 0
			}
			values = append(values, val)
		}

		n := len(values) / particleColumns
		ps := make([]dynamo.Particle, n)
		for i := 0; i < n; i++ {
			ps[i] = dynamo.ParticleFromRow(values[i*particleColumns : (i+1)*particleColumns])
		}

		times = append(times, t)
		states = append(states, ps)
	}

	return states, times, nil
}
