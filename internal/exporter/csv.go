package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"coastereda/internal/errors"
	"coastereda/internal/table"
	"coastereda/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes tables as comma-delimited text with a header row
type CSVWriter struct {
	logger    *slog.Logger
	bomPrefix bool
}

// NewCSVWriter creates a writer. With bomPrefix every file starts with a UTF-8
// BOM so spreadsheet tools detect the encoding.
func NewCSVWriter(logger *slog.Logger, bomPrefix bool) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger, bomPrefix: bomPrefix}
}

// WriteTable writes t to filePath, replacing any existing file. Nulls are
// written as empty cells.
func (w *CSVWriter) WriteTable(ctx context.Context, filePath string, t *table.Table) (domain.Artifact, error) {
	artifact := domain.Artifact{
		Name:   filepath.Base(filePath),
		Format: domain.FormatCSV,
		Path:   filePath,
		Rows:   t.Len(),
	}

	w.logger.DebugContext(ctx, "writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", t.Len()))

	sw, err := w.CreateStreamWriter(filePath, t.Names())
	if err != nil {
		return artifact, err
	}

	rec := make([]string, t.Width())
	cols := t.Columns()
	for i := 0; i < t.Len(); i++ {
		for j, c := range cols {
			rec[j] = c.Value(i).String()
		}
		if err := sw.WriteRecord(rec); err != nil {
			sw.Close()
			return artifact, errors.NewStorageError(fmt.Sprintf("failed to write record %d to %s", i, filePath), err)
		}
	}

	if err := sw.Close(); err != nil {
		return artifact, errors.NewStorageError(fmt.Sprintf("failed to flush %s", filePath), err)
	}
	return artifact, nil
}

// StreamWriter writes records one at a time
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates filePath, its parent directory if needed, and
// writes the header row.
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, errors.NewStorageError("failed to create directory", err).WithContext("path", filePath)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, errors.NewStorageError("failed to create file", err).WithContext("path", filePath)
	}

	if w.bomPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			file.Close()
			return nil, errors.NewStorageError("failed to write BOM", err).WithContext("path", filePath)
		}
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		file.Close()
		return nil, errors.NewStorageError("failed to write headers", err).WithContext("path", filePath)
	}

	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
