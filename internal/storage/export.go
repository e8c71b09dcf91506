package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/san-kum/melter/internal/metrics"
)

type ExportData struct {
	RunMetadata
	Names   []string         `json:"names"`
	Samples []metrics.Sample `json:"samples"`
}

// ExportJSON writes the metadata and every sample of a run to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	names, samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Names: names, Samples: samples})
}

// ExportCSV writes the metric samples of a run to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	names, samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := writeSamples(cw, names, samples); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
