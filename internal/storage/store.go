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

	"github.com/san-kum/melter/internal/config"
	"github.com/san-kum/melter/internal/dynamo"
	"github.com/san-kum/melter/internal/lattice"
	"github.com/san-kum/melter/internal/metrics"
)

const (
	metadataFile     = "metadata.json"
	configFile       = "config.yaml"
	samplesFile      = "samples.csv"
	temperaturesFile = "temperatures.csv"
)

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
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Timestep  float64            `json:"timestep"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	SimTime   float64            `json:"sim_time"`
	Particles int                `json:"particles"`
	Springs   int                `json:"springs"`
	Halted    string             `json:"halted,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Run is everything a finished simulation leaves behind.
type Run struct {
	Preset  string
	Config  *config.Config
	Lattice *lattice.Lattice
	Steps   int
	SimTime float64
	Halted  error
	Names   []string
	Samples []metrics.Sample
	Metrics map[string]float64
}

// Save writes the run under a fresh directory and returns its id. A failed
// save removes the directory again.
func (s *Store) Save(run *Run) (string, error) {
	now := time.Now()
	name := run.Preset
	if name == "" {
		name = "custom"
	}
	runID, runDir, err := s.createRunDir(fmt.Sprintf("%s_%d", name, now.UnixMilli()))
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    run.Preset,
		Timestamp: now,
		Seed:      run.Config.Seed,
		Timestep:  run.Config.Timestep,
		Duration:  run.Config.Duration,
		Steps:     run.Steps,
		SimTime:   run.SimTime,
		Metrics:   run.Metrics,
	}
	if run.Lattice != nil {
		meta.Particles = run.Lattice.Len()
		meta.Springs = len(run.Lattice.Springs)
	}
	if run.Halted != nil {
		meta.Halted = run.Halted.Error()
	}

	if err := writeRun(runDir, meta, run); err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("save run %s: %w", runID, err)
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, run *Run) error {
	if err := writeFile(filepath.Join(runDir, metadataFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return err
	}

	if err := config.Save(filepath.Join(runDir, configFile), run.Config); err != nil {
		return err
	}

	if err := writeCSVFile(filepath.Join(runDir, samplesFile), func(w *csv.Writer) error {
		return writeSamples(w, run.Names, run.Samples)
	}); err != nil {
		return err
	}

	if run.Lattice != nil {
		return writeCSVFile(filepath.Join(runDir, temperaturesFile), func(w *csv.Writer) error {
			return writeTemperatures(w, run.Lattice)
		})
	}
	return nil
}

// createRunDir makes a fresh directory for id, adding a numeric suffix when
// a run with the same id already exists.
func (s *Store) createRunDir(id string) (string, string, error) {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", "", err
	}
	runID := id
	for n := 2; ; n++ {
		dir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return runID, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", id, n)
	}
}

// writeFile creates path, runs fill and reports the Close error when fill
// succeeded.
func writeFile(path string, fill func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fill(f)
}

func writeCSVFile(path string, fill func(w *csv.Writer) error) error {
	return writeFile(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := fill(w); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	})
}

func writeSamples(w *csv.Writer, names []string, samples []metrics.Sample) error {
	header := append([]string{"step", "time"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range samples {
		row := []string{strconv.Itoa(s.Step), formatFloat(s.Time)}
		for _, val := range s.Values {
			row = append(row, formatFloat(val))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeTemperatures(w *csv.Writer, l *lattice.Lattice) error {
	if err := w.Write([]string{"i", "j", "k", "x", "y", "z", "temperature"}); err != nil {
		return err
	}
	for _, p := range l.Particles {
		row := []string{
			strconv.Itoa(p.Index[0]),
			strconv.Itoa(p.Index[1]),
			strconv.Itoa(p.Index[2]),
			formatFloat(p.Position.X),
			formatFloat(p.Position.Y),
			formatFloat(p.Position.Z),
			formatFloat(p.Temperature),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadConfig reads back the configuration a run was started with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadSamples reads the metric samples of a run along with the metric
// names from the header.
func (s *Store) LoadSamples(runID string) ([]string, []metrics.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
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

	if len(records) == 0 || len(records[0]) < 2 {
		return nil, nil, fmt.Errorf("%s: malformed samples header", runID)
	}
	names := records[0][2:]

	samples := make([]metrics.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}

		step, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}

		values := make([]float64, 0, len(record)-2)
		for _, field := range record[2:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			values = append(values, val)
		}
		samples = append(samples, metrics.Sample{Step: step, Time: t, Values: values})
	}

	return names, samples, nil
}

type ParticleRecord struct {
	Index       [3]int
	Position    dynamo.Vec3
	Temperature float64
}

// LoadTemperatures reads the final particle temperatures of a run.
func (s *Store) LoadTemperatures(runID string) ([]ParticleRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, temperaturesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	out := make([]ParticleRecord, 0, len(records))
	for n, record := range records {
		if n == 0 {
			continue
		}
		if len(record) != 7 {
			return nil, fmt.Errorf("%s: line %d: expected 7 fields, got %d", runID, n+1, len(record))
		}

		var p ParticleRecord
		for c := 0; c < 3; c++ {
			if p.Index[c], err = strconv.Atoi(record[c]); err != nil {
				return nil, fmt.Errorf("%s: line %d: %w", runID, n+1, err)
			}
		}
		vals := make([]float64, 4)
		for c := range vals {
			if vals[c], err = strconv.ParseFloat(record[3+c], 64); err != nil {
				return nil, fmt.Errorf("%s: line %d: %w", runID, n+1, err)
			}
		}
		p.Position = dynamo.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}
		p.Temperature = vals[3]
		out = append(out, p)
	}
	return out, nil
}
