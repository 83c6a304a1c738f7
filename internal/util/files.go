package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	invalidChars = regexp.MustCompile(`[:*?"<>|]`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// CleanFileName reduces a client-supplied upload name to a safe basename.
// Directory components are dropped whichever separator the client used, so
// "WB73B6961  30-1/1680.pdf" and `C:\scans\1680.pdf` both become "1680.pdf".
func CleanFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	safe := controlChars.ReplaceAllString(name, "")
	safe = invalidChars.ReplaceAllString(safe, "-")
	safe = dashRuns.ReplaceAllString(safe, "-")
	safe = strings.Trim(safe, " ")
	if safe == "" || safe == "." || safe == ".." {
		return "upload"
	}
	return safe
}

// Ext returns the lower-cased extension of name, treating ".tar.gz" as one
// extension.
func Ext(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".tar.gz") {
		return ".tar.gz"
	}
	return filepath.Ext(lower)
}

// Stem returns name without its extension.
func Stem(name string) string {
	return name[:len(name)-len(Ext(name))]
}

// EnsureDir creates dir if needed and checks that files can be written to it.
func EnsureDir(dir string) error {
	if dir == "" {
		return errors.New("directory path cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot access directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory: %s", dir)
	}

	probe, err := os.CreateTemp(dir, ".docscan-write-check-*")
	if err != nil {
		return fmt.Errorf("no write permission for %s: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// RemoveQuietly deletes a transient artifact. Failures are logged at debug
// level and otherwise ignored; a file that is already gone is not a failure.
func RemoveQuietly(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debug().Err(err).Str("path", path).Msg("artifact cleanup failed")
	}
}
