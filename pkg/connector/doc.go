// Package connector groups the file connectors stratify reads and writes
// through.
//
// The sub-packages are:
//
//   - core: the Source and Destination contracts and the Schema a source
//     reports for a loaded table.
//
//   - sources/csv: loads a headerless delimited file into a gota data frame
//     whose columns are named after their 0-based position. Values are kept
//     as their verbatim text.
//
//   - destinations/csv: writes a data frame as delimited text with a header
//     row and an optional leading row index. The destination file is replaced
//     atomically, so a failed write leaves any previous file untouched.
//
// Both connectors take their settings from the matching section of
// config.Config and a zap logger:
//
//	src := csvsource.NewSource(cfg.Source, logger)
//	df, err := src.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	dest := csvdest.NewDestination(cfg.Destination, logger)
//	err = dest.Write(ctx, df)
package connector
