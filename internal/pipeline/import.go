package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reqforge/internal/logging"
	"reqforge/internal/records"
	"reqforge/internal/services"
)

// audioExtensions are the file types handed to the transcriber instead of
// being read as text.
var audioExtensions = map[string]struct{}{
	".wav":  {},
	".mp3":  {},
	".m4a":  {},
	".flac": {},
}

// ImportResult summarizes one directory import.
type ImportResult struct {
	Imported   int
	Duplicates int
	Skipped    int
}

// Importer walks a directory and creates pending records from the files it
// recognizes.
type Importer struct {
	store  records.Repository
	logger *slog.Logger
}

func NewImporter(store records.Repository, logger *slog.Logger) *Importer {
	return &Importer{
		store:  store,
		logger: logging.NewComponentLogger(logger, "import"),
	}
}

// ImportDirectory creates one record per recognized file under dir. Text
// files become text records holding the file content; audio files become
// audio records holding the path, transcribed during processing. Files whose
// content hashes to an existing record are counted as duplicates, anything
// else unrecognized is skipped. Files are visited in sorted path order so
// repeat imports are deterministic.
func (i *Importer) ImportDirectory(ctx context.Context, dir string) (*ImportResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "import", "stat",
			fmt.Sprintf("import directory %q", dir), err)
	}
	if !info.IsDir() {
		return nil, services.Wrapf(services.ErrValidation, "import", "stat", "%q is not a directory", dir)
	}

	var paths []string
	walkErr := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %q: %w", dir, walkErr)
	}
	sort.Strings(paths)

	result := &ImportResult{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		switch err := i.importFile(ctx, path); {
		case err == nil:
			result.Imported++
		case errors.Is(err, services.ErrValidation):
			// Duplicate content or an empty file.
			result.Duplicates++
			i.logger.Debug("skipped duplicate", logging.String(logging.FieldPath, path))
		case errors.Is(err, errUnrecognized):
			result.Skipped++
		default:
			return result, err
		}
	}

	i.logger.Info("import finished",
		logging.String(logging.FieldPath, dir),
		logging.Int("imported", result.Imported),
		logging.Int("duplicates", result.Duplicates),
		logging.Int("skipped", result.Skipped))
	return result, nil
}

var errUnrecognized = errors.New("unrecognized file type")

func (i *Importer) importFile(ctx context.Context, path string) error {
	ext := strings.ToLower(filepath.Ext(path))

	if _, audio := audioExtensions[ext]; audio {
		// Content for audio records is the path so duplicate imports of the
		// same file are detected before transcription runs.
		_, err := i.store.Create(ctx, &records.Record{
			Content:  path,
			Kind:     records.KindAudio,
			FilePath: path,
			Metadata: map[string]string{"source_file": filepath.Base(path)},
		})
		return err
	}

	if ext != ".txt" {
		return errUnrecognized
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}
	_, err = i.store.Create(ctx, &records.Record{
		Content:  string(content),
		Kind:     records.KindText,
		FilePath: path,
		Metadata: map[string]string{"source_file": filepath.Base(path)},
	})
	return err
}
