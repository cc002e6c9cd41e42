// Package csv provides the CSV destination connector. A write replaces the
// destination file atomically: rows go to a temporary file next to the
// destination, which is renamed over it only once everything is flushed.
package csv

import (
	"bufio"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"

	"github.com/ajitpratap0/stratify/pkg/config"
	"github.com/ajitpratap0/stratify/pkg/connector/core"
	"github.com/ajitpratap0/stratify/pkg/errors"
)

// Destination writes a data frame as delimited text with a header row
type Destination struct {
	config config.DestinationConfig
	logger *zap.Logger

	rowsWritten int
}

var _ core.Destination = (*Destination)(nil)

// defaultFileMode is applied to newly created destination files
const defaultFileMode os.FileMode = 0o644

// NewDestination creates a new CSV destination
func NewDestination(cfg config.DestinationConfig, logger *zap.Logger) *Destination {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Destination{
		config: cfg,
		logger: logger.With(zap.String("connector", "csv_destination")),
	}
}

// Path returns the destination file path
func (d *Destination) Path() string {
	return d.config.Path
}

// RowsWritten returns the number of data rows of the last successful write
func (d *Destination) RowsWritten() int {
	return d.rowsWritten
}

// Write replaces the destination file with df. The header is the column
// names, preceded by an empty cell when the index is included; each row is
// preceded by its 0-based position. On error the destination is untouched.
func (d *Destination) Write(ctx context.Context, df dataframe.DataFrame) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeCanceled, "write canceled")
	}
	if df.Err != nil {
		return errors.Wrap(df.Err, errors.ErrorTypeData, "cannot write invalid frame")
	}

	delimiter, err := d.config.DelimiterRune()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid destination delimiter")
	}

	dir := filepath.Dir(d.config.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.config.Path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create temporary file").
			WithDetail("path", d.config.Path)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	buf := bufio.NewWriter(tmp)
	w := csv.NewWriter(buf)
	w.Comma = delimiter

	records := df.Records()
	header := records[0]
	if d.config.IncludeIndex {
		header = append([]string{""}, header...)
	}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write header").
			WithDetail("path", d.config.Path)
	}

	row := make([]string, 0, len(records[0])+1)
	for i, record := range records[1:] {
		row = row[:0]
		if d.config.IncludeIndex {
			row = append(row, strconv.Itoa(i))
		}
		row = append(row, record...)
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write row").
				WithDetail("path", d.config.Path).
				WithDetail("row", i)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush rows").
			WithDetail("path", d.config.Path)
	}
	if err := buf.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush file").
			WithDetail("path", d.config.Path)
	}
	if err := tmp.Chmod(d.fileMode()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to set file mode").
			WithDetail("path", d.config.Path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close temporary file").
			WithDetail("path", d.config.Path)
	}
	if err := os.Rename(tmpPath, d.config.Path); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to replace destination file").
			WithDetail("path", d.config.Path)
	}
	committed = true
	d.rowsWritten = df.Nrow()

	d.logger.Info("destination written",
		zap.String("path", d.config.Path),
		zap.Int("rows", df.Nrow()),
		zap.Bool("index", d.config.IncludeIndex))

	return nil
}

// fileMode keeps the permissions of an existing destination file and
// falls back to defaultFileMode for a new one.
func (d *Destination) fileMode() os.FileMode {
	if info, err := os.Stat(d.config.Path); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return defaultFileMode
}
