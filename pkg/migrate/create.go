package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

const sqlTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %[1]s
-- +goose StatementEnd
`

// CreateSQLMigration writes <dir>/<version>_<name>.sql. The version is the
// current UTC timestamp, bumped past the newest existing migration so a skewed
// clock cannot slot a new file before ones already shipped.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	existing, err := ScanDir(dir)
	if err != nil {
		return "", err
	}

	version, err := strconv.ParseInt(now.Format(versionLayout), 10, 64)
	if err != nil {
		return "", fmt.Errorf("format version: %w", err)
	}
	if n := len(existing); n > 0 && existing[n-1].Version >= version {
		version = nextVersion(existing[n-1].Version)
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%d_%s.sql", version, safe))
	if err := os.WriteFile(fullpath, []byte(fmt.Sprintf(sqlTemplate, safe)), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

// nextVersion returns the timestamp one second after version.
func nextVersion(version int64) int64 {
	t, err := time.Parse(versionLayout, strconv.FormatInt(version, 10))
	if err != nil {
		return version + 1
	}
	next, _ := strconv.ParseInt(t.Add(time.Second).Format(versionLayout), 10, 64)
	return next
}
