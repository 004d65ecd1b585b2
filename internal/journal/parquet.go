package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
)

// Export writes the journaled polls of stream ("" for all) to a Parquet
// file at path and returns how many were written.
func (j *SQLiteJournal) Export(ctx context.Context, stream, path string) (int, error) {
	recs, err := j.Records(ctx, stream, 0)
	if err != nil {
		return 0, err
	}
	if err := writeParquetFile(path, recs); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return len(recs), nil
}

// ExportPath returns the default export location for stream.
// Layout: <dir>/<stream>/<YYYY-MM-DD>.parquet, or <dir>/all/... for every stream.
func ExportPath(dir, stream string, t time.Time) string {
	if stream == "" {
		stream = "all"
	}
	return filepath.Join(dir, stream, t.Format(time.DateOnly)+".parquet")
}

// ReadExport reads a file written by Export.
func ReadExport(path string) ([]PollRecord, error) {
	return readParquetFile[PollRecord](path)
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
