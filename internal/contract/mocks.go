package contract

import (
	"time"

	"github.com/polarcap/climatol/schema"
	"github.com/stretchr/testify/mock"
)

// MockStreamLocator is a testify mock for StreamLocator.
type MockStreamLocator struct {
	mock.Mock
}

var _ StreamLocator = &MockStreamLocator{} // Compile-time check

// FindFiles mocks stream discovery.
func (m *MockStreamLocator) FindFiles(stream string, start, end schema.Date) ([]FileSpan, error) {
	args := m.Called(stream, start, end)
	files, _ := args.Get(0).([]FileSpan)
	return files, args.Error(1)
}

// RestartFile mocks restart-file lookup.
func (m *MockStreamLocator) RestartFile(candidates ...string) (string, bool) {
	args := m.Called(candidates)
	return args.String(0), args.Bool(1)
}

// MockProvenanceStore is a testify mock for ProvenanceStore.
type MockProvenanceStore struct {
	mock.Mock
}

var _ ProvenanceStore = &MockProvenanceStore{} // Compile-time check

// BeginRun mocks run creation.
func (m *MockProvenanceStore) BeginRun(startTime time.Time, stream string, startYear, endYear int, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, stream, startYear, endYear, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun mocks run completion.
func (m *MockProvenanceStore) EndRun(runID int64, endTime time.Time, chunksTotal, chunksReused int) error {
	args := m.Called(runID, endTime, chunksTotal, chunksReused)
	return args.Error(0)
}

// RecordArtifact mocks artifact registration.
func (m *MockProvenanceStore) RecordArtifact(runID int64, kind, path, monthSet string, startYear, endYear int, variables []string) error {
	args := m.Called(runID, kind, path, monthSet, startYear, endYear, variables)
	return args.Error(0)
}

// GetStatus mocks status retrieval.
func (m *MockProvenanceStore) GetStatus() (schema.ProvenanceStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.ProvenanceStatus), args.Error(1)
}

// GetAllRuns mocks run retrieval.
func (m *MockProvenanceStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllArtifacts mocks artifact retrieval.
func (m *MockProvenanceStore) GetAllArtifacts() ([]schema.ArtifactRecord, error) {
	args := m.Called()
	artifacts, _ := args.Get(0).([]schema.ArtifactRecord)
	return artifacts, args.Error(1)
}

// Close mocks connection teardown.
func (m *MockProvenanceStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
