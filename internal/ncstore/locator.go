package ncstore

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/schema"
	"github.com/spf13/afero"
)

// fileDateRe matches the date suffix of monthly output files, with an
// optional day component: "stream.0001-01.nc" or "stream.0001-01-01.nc".
var fileDateRe = regexp.MustCompile(`\.(\d{4})-(\d{2})(?:-\d{2})?\.nc$`)

// Locator discovers monthly output files for a stream under a base
// directory. Files are matched by stream name and the date embedded in
// the file name; their contents are never opened during discovery.
type Locator struct {
	fs      afero.Fs
	baseDir string
}

var _ contract.StreamLocator = (*Locator)(nil)

// NewLocator returns a locator rooted at baseDir.
func NewLocator(filesystem afero.Fs, baseDir string) *Locator {
	return &Locator{fs: filesystem, baseDir: baseDir}
}

// FindFiles lists the stream's monthly files whose embedded dates fall
// in [start, end], sorted by date. An empty result is ErrNoFilesFound
// so callers can distinguish a wrong directory from an empty range.
func (l *Locator) FindFiles(stream string, start, end schema.Date) ([]contract.FileSpan, error) {
	entries, err := afero.ReadDir(l.fs, l.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", l.baseDir, err)
	}

	marker := "." + stream + "."
	var spans []contract.FileSpan
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.Contains(name, marker) {
			continue
		}
		m := fileDateRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			continue
		}
		if !inRange(year, month, start, end) {
			continue
		}
		spans = append(spans, contract.FileSpan{
			Path:  filepath.Join(l.baseDir, name),
			Year:  year,
			Month: month,
		})
	}
	if len(spans) == 0 {
		return nil, fmt.Errorf("%w: no %q files in %s between %04d-%02d and %04d-%02d",
			schema.ErrNoFilesFound, stream, l.baseDir, start.Year, start.Month, end.Year, end.Month)
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Year != spans[j].Year {
			return spans[i].Year < spans[j].Year
		}
		return spans[i].Month < spans[j].Month
	})
	return spans, nil
}

func inRange(year, month int, start, end schema.Date) bool {
	if year < start.Year || (year == start.Year && month < start.Month) {
		return false
	}
	if year > end.Year || (year == end.Year && month > end.Month) {
		return false
	}
	return true
}

// RestartFile returns the first file matching any of the glob patterns,
// tried in order relative to the base directory. Mesh quantities absent
// from one component's output can then fall back to another component's
// restart file.
func (l *Locator) RestartFile(candidates ...string) (string, bool) {
	for _, pattern := range candidates {
		matches, err := afero.Glob(l.fs, filepath.Join(l.baseDir, pattern))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return matches[0], true
	}
	return "", false
}
