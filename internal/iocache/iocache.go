// Package iocache is for persisting cache artifacts and provenance.
//
// Artifacts (climatologies, time series, remap weights) are single JSON
// files on an afero filesystem, written with a write-new-then-replace
// discipline so an interrupted write never leaves a half-written file
// behind: a crash mid-persist loses only the write in progress, never
// previously completed state.
package iocache

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/polarcap/climatol/schema"
	"github.com/spf13/afero"
)

// artifactVersion defines the version of the artifact encoding. Bumping
// it invalidates every existing artifact.
const artifactVersion = 1

// ArtifactStore reads and writes cache artifacts under a single
// directory of an afero filesystem.
type ArtifactStore struct {
	fs afero.Fs
}

// NewArtifactStore returns a store over the given filesystem.
func NewArtifactStore(filesystem afero.Fs) *ArtifactStore {
	return &ArtifactStore{fs: filesystem}
}

// Fs exposes the underlying filesystem, used by the status command.
func (s *ArtifactStore) Fs() afero.Fs {
	return s.fs
}

// Exists reports whether an artifact file is present.
func (s *ArtifactStore) Exists(path string) bool {
	ok, err := afero.Exists(s.fs, path)
	return err == nil && ok
}

// read unmarshals an artifact, mapping anything unreadable to
// schema.ErrCacheCorrupt so callers can recover by recomputing. A
// missing file is reported as fs.ErrNotExist, which is a cold start,
// not corruption.
func (s *ArtifactStore) read(path string, out any) error {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if _, statErr := s.fs.Stat(path); statErr != nil {
			return fmt.Errorf("artifact %s: %w", path, fs.ErrNotExist)
		}
		return fmt.Errorf("%w: %s: %v", schema.ErrCacheCorrupt, path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", schema.ErrCacheCorrupt, path, err)
	}
	return nil
}

// write marshals an artifact to path via a temporary file and rename.
func (s *ArtifactStore) write(path string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode artifact %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to replace artifact %s: %w", path, err)
	}
	return nil
}

// checkVersion maps an artifact version mismatch to corruption, which
// callers treat as a full miss.
func checkVersion(path string, version int) error {
	if version != artifactVersion {
		return fmt.Errorf("%w: %s: artifact version %d, want %d", schema.ErrCacheCorrupt, path, version, artifactVersion)
	}
	return nil
}
