package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	upMarker   = "-- +goose Up"
	downMarker = "-- +goose Down"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

// File is one goose SQL migration on disk.
type File struct {
	Version int64
	Name    string
	Path    string
}

// ScanDir lists the SQL migrations in dir ordered by version. Non-SQL files are
// ignored; badly named or duplicated versions are errors.
func ScanDir(dir string) ([]File, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[int64]string{}
	var files []File
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", e.Name())
		}
		version, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("migration %q: %w", e.Name(), err)
		}
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %d in %q and %q", version, prev, e.Name())
		}
		seen[version] = e.Name()
		files = append(files, File{Version: version, Name: m[2], Path: filepath.Join(dir, e.Name())})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// ValidateDir checks filenames and that every migration has exactly one Up
// section followed by exactly one Down section.
func ValidateDir(dir string) error {
	files, err := ScanDir(dir)
	if err != nil {
		return err
	}

	for _, f := range files {
		b, err := os.ReadFile(f.Path)
		if err != nil {
			return fmt.Errorf("read file %q: %w", f.Path, err)
		}
		if err := checkSections(string(b)); err != nil {
			return fmt.Errorf("migration %q: %w", filepath.Base(f.Path), err)
		}
	}
	return nil
}

func checkSections(txt string) error {
	switch ups, downs := strings.Count(txt, upMarker), strings.Count(txt, downMarker); {
	case ups == 0:
		return fmt.Errorf("missing %q", upMarker)
	case downs == 0:
		return fmt.Errorf("missing %q", downMarker)
	case ups > 1 || downs > 1:
		return fmt.Errorf("expected one Up and one Down section, found %d and %d", ups, downs)
	}
	if strings.Index(txt, downMarker) < strings.Index(txt, upMarker) {
		return fmt.Errorf("%q must come before %q", upMarker, downMarker)
	}
	return nil
}
