package iocache

import (
	"github.com/polarcap/climatol/schema"
)

// ClimatologyArtifact is the persisted result of one cached climatology:
// the averaged fields plus the provenance needed for the superset-reuse
// check (month set identity, covered year range, variable set and the
// fingerprint of the source files consumed).
type ClimatologyArtifact struct {
	Version   int                      `json:"version"`
	Calendar  schema.Calendar          `json:"calendar"`
	MonthSet  string                   `json:"monthSet"`
	StartYear int                      `json:"startYear"`
	EndYear   int                      `json:"endYear"`
	Variables []string                 `json:"variables"`
	Sources   string                   `json:"sources"`
	Fields    map[string]*schema.Field `json:"fields"`
}

// TimeSeriesArtifact is the persisted state of a chunked time-series
// cache: everything reduced so far, concatenated along time.
type TimeSeriesArtifact struct {
	Version  int                      `json:"version"`
	Calendar schema.Calendar          `json:"calendar"`
	Times    []float64                `json:"times"`
	Fields   map[string]*schema.Field `json:"fields"`
}

// WeightArtifact is a persisted sparse remapping: triplets mapping
// source cells onto a comparison grid. Key is the full descriptor
// identity; a file whose key differs from the request is rebuilt.
type WeightArtifact struct {
	Version     int       `json:"version"`
	Key         string    `json:"key"`
	NSource     int       `json:"nSource"`
	TargetShape []int     `json:"targetShape"`
	TargetLat   []float64 `json:"targetLat"`
	TargetLon   []float64 `json:"targetLon"`
	Rows        []int     `json:"rows"`
	Cols        []int     `json:"cols"`
	Weights     []float64 `json:"weights"`
}

// ReadClimatology loads a climatology artifact.
func (s *ArtifactStore) ReadClimatology(path string) (*ClimatologyArtifact, error) {
	var art ClimatologyArtifact
	if err := s.read(path, &art); err != nil {
		return nil, err
	}
	if err := checkVersion(path, art.Version); err != nil {
		return nil, err
	}
	return &art, nil
}

// WriteClimatology persists a climatology artifact.
func (s *ArtifactStore) WriteClimatology(path string, art *ClimatologyArtifact) error {
	art.Version = artifactVersion
	return s.write(path, art)
}

// ReadTimeSeries loads a time-series artifact.
func (s *ArtifactStore) ReadTimeSeries(path string) (*TimeSeriesArtifact, error) {
	var art TimeSeriesArtifact
	if err := s.read(path, &art); err != nil {
		return nil, err
	}
	if err := checkVersion(path, art.Version); err != nil {
		return nil, err
	}
	return &art, nil
}

// WriteTimeSeries persists a time-series artifact.
func (s *ArtifactStore) WriteTimeSeries(path string, art *TimeSeriesArtifact) error {
	art.Version = artifactVersion
	return s.write(path, art)
}

// ReadWeights loads a remap weight artifact.
func (s *ArtifactStore) ReadWeights(path string) (*WeightArtifact, error) {
	var art WeightArtifact
	if err := s.read(path, &art); err != nil {
		return nil, err
	}
	if err := checkVersion(path, art.Version); err != nil {
		return nil, err
	}
	return &art, nil
}

// WriteWeights persists a remap weight artifact.
func (s *ArtifactStore) WriteWeights(path string, art *WeightArtifact) error {
	art.Version = artifactVersion
	return s.write(path, art)
}
