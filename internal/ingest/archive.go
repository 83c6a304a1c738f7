package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mholt/archives"

	"github.com/vrsandeep/docscan/internal/util"
)

// archiveEntry is one PDF or image unpacked from an uploaded archive.
type archiveEntry struct {
	path   string // inside the archive
	name   string
	stored string
}

// unpackArchive writes every supported entry of the archive at src into
// dir and returns them in natural order of their archive paths. Other
// entries are skipped.
func (s *Service) unpackArchive(ctx context.Context, src, dir string) (entries []archiveEntry, err error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	format, _, err := archives.Identify(ctx, filepath.Base(src), f)
	if err != nil {
		return nil, fmt.Errorf("failed to identify archive: %w", err)
	}
	extractor, ok := format.(archives.Extractor)
	if !ok {
		return nil, fmt.Errorf("%s files cannot be extracted", format.Extension())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind archive: %w", err)
	}

	defer func() {
		if err != nil {
			for _, e := range entries {
				util.RemoveQuietly(e.stored)
			}
			entries = nil
		}
	}()

	err = extractor.Extract(ctx, f, func(ctx context.Context, fi archives.FileInfo) error {
		if fi.IsDir() {
			return nil
		}
		base := path.Base(fi.NameInArchive)
		if strings.HasPrefix(base, ".") {
			return nil
		}
		name := util.CleanFileName(base)
		if k := kindOf(name); k != kindPDF && k != kindImage {
			s.log.Warn().Str("archive", filepath.Base(src)).Str("entry", fi.NameInArchive).Msg("Skipping unsupported archive entry")
			return nil
		}

		rc, err := fi.Open()
		if err != nil {
			return fmt.Errorf("failed to open entry %s: %w", fi.NameInArchive, err)
		}
		defer rc.Close()

		stored := filepath.Join(dir, uuid.NewString()+"_"+name)
		if err := writeStream(stored, rc); err != nil {
			return fmt.Errorf("failed to extract %s: %w", fi.NameInArchive, err)
		}
		entries = append(entries, archiveEntry{path: fi.NameInArchive, name: name, stored: stored})
		return nil
	})
	if err != nil {
		return entries, fmt.Errorf("failed to read archive: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return util.NaturalSortLess(entries[i].path, entries[j].path)
	})
	return entries, nil
}
