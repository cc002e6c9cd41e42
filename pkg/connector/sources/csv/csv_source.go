// Package csv provides the headerless CSV source connector. It loads the
// whole file into a gota data frame whose columns are named after their
// 0-based position, keeping every value as its verbatim text.
package csv

import (
	"bufio"
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"

	"github.com/ajitpratap0/stratify/pkg/config"
	"github.com/ajitpratap0/stratify/pkg/connector/core"
	"github.com/ajitpratap0/stratify/pkg/errors"
)

// Source is the headerless CSV source connector
type Source struct {
	config config.SourceConfig
	logger *zap.Logger
}

var _ core.Source = (*Source)(nil)

// NewSource creates a new CSV source
func NewSource(cfg config.SourceConfig, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		config: cfg,
		logger: logger.With(zap.String("connector", "csv_source")),
	}
}

// Load reads the source file into memory. The file handle is released
// before Load returns, on every path.
func (s *Source) Load(ctx context.Context) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, errors.ErrorTypeCanceled, "load canceled")
	}

	delimiter, err := s.config.DelimiterRune()
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, errors.ErrorTypeConfig, "invalid source delimiter")
	}

	file, err := os.Open(s.config.Path)
	if err != nil {
		errType := errors.ErrorTypeFile
		if stderrors.Is(err, fs.ErrNotExist) {
			errType = errors.ErrorTypeNotFound
		}
		return dataframe.DataFrame{}, errors.Wrap(err, errType, "failed to open source file").
			WithDetail("path", s.config.Path)
	}
	defer file.Close()

	df := dataframe.ReadCSV(bufio.NewReader(file),
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
		dataframe.WithDelimiter(delimiter))
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(df.Err, errors.ErrorTypeData, "failed to parse source file").
			WithDetail("path", s.config.Path)
	}

	if err := df.SetNames(positionNames(df.Ncol())...); err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, errors.ErrorTypeInternal, "failed to name source columns")
	}

	s.logger.Info("source loaded",
		zap.String("path", s.config.Path),
		zap.Int("rows", df.Nrow()),
		zap.Int("columns", df.Ncol()))

	return df, nil
}

// LabelColumn resolves the configured label column to a column name
func (s *Source) LabelColumn(df dataframe.DataFrame) (string, error) {
	return ResolveLabelColumn(df, s.config.LabelColumn)
}

// Discover describes the loaded frame. Every column is a string column,
// the label column is flagged.
func (s *Source) Discover(df dataframe.DataFrame) (*core.Schema, error) {
	label, err := s.LabelColumn(df)
	if err != nil {
		return nil, err
	}

	names := df.Names()
	fields := make([]core.Field, len(names))
	for i, name := range names {
		fields[i] = core.Field{
			Name:     name,
			Type:     core.FieldTypeString,
			Position: i,
			Label:    name == label,
		}
	}

	return &core.Schema{
		Name:   s.config.Path,
		Fields: fields,
	}, nil
}

// ResolveLabelColumn maps a 0-based position, or -1 for the last column,
// to the name of that column in df.
func ResolveLabelColumn(df dataframe.DataFrame, position int) (string, error) {
	ncol := df.Ncol()
	if ncol == 0 {
		return "", errors.New(errors.ErrorTypeData, "source has no columns")
	}

	idx := position
	if idx == -1 {
		idx = ncol - 1
	}
	if idx < 0 || idx >= ncol {
		return "", errors.Newf(errors.ErrorTypeConfig, "label column %d out of range for %d columns", position, ncol).
			WithDetail("label_column", position).
			WithDetail("columns", ncol)
	}

	return df.Names()[idx], nil
}

func positionNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names
}
