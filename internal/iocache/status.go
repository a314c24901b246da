package iocache

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/polarcap/climatol/schema"
	"github.com/spf13/afero"
)

// Artifact kinds as recorded in provenance and laid out as cache
// subdirectories.
const (
	KindClimatology = "climatology"
	KindTimeSeries  = "timeseries"
	KindMapping     = "mapping"
)

// ArtifactPath builds the canonical location of an artifact of the
// given kind inside the cache directory.
func ArtifactPath(cacheDir, kind, name string) string {
	return filepath.Join(cacheDir, kind, name)
}

// ScanCache walks the cache directory and summarizes its artifacts by
// kind, size and age. A missing directory is an empty cache, not an
// error.
func ScanCache(filesystem afero.Fs, dir string) (schema.CacheStatus, error) {
	status := schema.CacheStatus{Directory: dir}

	exists, err := afero.DirExists(filesystem, dir)
	if err != nil {
		return status, err
	}
	if !exists {
		return status, nil
	}

	err = afero.Walk(filesystem, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}

		sep := string(filepath.Separator)
		switch {
		case strings.Contains(path, sep+KindClimatology+sep):
			status.Climatologies++
		case strings.Contains(path, sep+KindTimeSeries+sep):
			status.TimeSeries++
		case strings.Contains(path, sep+KindMapping+sep):
			status.MappingFiles++
		default:
			return nil
		}

		status.TotalSizeBytes += info.Size()
		mod := info.ModTime()
		if status.OldestArtifact.IsZero() || mod.Before(status.OldestArtifact) {
			status.OldestArtifact = mod
		}
		if mod.After(status.NewestArtifact) {
			status.NewestArtifact = mod
		}
		return nil
	})
	return status, err
}
