// Package testutil provides testing utilities for stratify
package testutil

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// Dataset builds a headerless iris-like dataset: for every class, rowsPerClass
// rows of 4 numeric features followed by the class label. Feature values
// are unique across the whole dataset so rows can be told apart.
func Dataset(classes []string, rowsPerClass map[string]int) [][]string {
	var rows [][]string
	n := 0
	for _, class := range classes {
		for i := 0; i < rowsPerClass[class]; i++ {
			rows = append(rows, []string{
				fmt.Sprintf("%d.1", n),
				fmt.Sprintf("%d.2", n),
				fmt.Sprintf("%d.3", n),
				fmt.Sprintf("%d.4", n),
				class,
			})
			n++
		}
	}
	return rows
}

// UniformDataset is Dataset with the same row count for every class
func UniformDataset(classes []string, rowsPerClass int) [][]string {
	counts := make(map[string]int, len(classes))
	for _, c := range classes {
		counts[c] = rowsPerClass
	}
	return Dataset(classes, counts)
}

// WriteCSV writes rows to name inside a per-test temp dir and returns its path.
func WriteCSV(t *testing.T, name string, rows [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadCSVAll reads every record of a CSV file.
func ReadCSVAll(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv %s: %v", path, err)
	}
	return all
}

// RequireNoError fails the test immediately if err is not nil.
// The msg parameter provides additional context in the failure message.
func RequireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}
