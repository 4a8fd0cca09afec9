// Package validation checks the input file and the output directory before a
// pipeline run starts.
package validation

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"coastereda/internal/errors"
)

// FileValidator provides file checks shared by the command and the pipeline
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateOutputDirectory ensures the output directory exists or can be
// created, and that it is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks that path exists, is a regular file and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewIOError(path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return errors.NewIOError(path, fmt.Errorf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewIOError(path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateCSVFile checks the file. An extension other than .csv or .txt only
// logs a warning; the content decides whether the input parses.
func (v *FileValidator) ValidateCSVFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".txt" {
		v.logger.Warn("Input does not have a CSV extension",
			slog.String("file", path),
			slog.String("extension", ext))
	}
	return nil
}

// ValidateHeader reads only the header row of the CSV at path and reports
// every required column it lacks in one schema error.
func (v *FileValidator) ValidateHeader(path string, required []string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.NewIOError(path, err)
	}
	defer file.Close()

	header, err := readHeader(file)
	if err != nil {
		return err
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, name := range required {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		v.logger.Error("Input is missing required columns",
			slog.String("file", path),
			slog.Any("missing", missing))
		return errors.NewSchemaError("missing required columns", missing).WithContext("path", path)
	}

	v.logger.Debug("Header validated",
		slog.String("file", path),
		slog.Int("columns", len(header)))
	return nil
}

func readHeader(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	bom := []byte{0xEF, 0xBB, 0xBF}
	if head, err := br.Peek(len(bom)); err == nil && bytes.Equal(head, bom) {
		br.Discard(len(bom))
	}

	header, err := csv.NewReader(br).Read()
	if err == io.EOF {
		return nil, errors.NewParsingError("input has no header row", nil)
	}
	if err != nil {
		return nil, errors.NewParsingError("malformed header row", err)
	}
	return header, nil
}
