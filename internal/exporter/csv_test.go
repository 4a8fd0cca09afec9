package exporter

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coastereda/internal/errors"
	"coastereda/internal/table"
	"coastereda/pkg/contracts/domain"
)

func sampleTable() *table.Table {
	return table.MustNew(
		table.Strings("Coaster Name", "Top Thrill, Dragster", "Beast"),
		table.MustColumn("Opening Date Clean", table.KindDate,
			table.DateValue(time.Date(2003, 5, 4, 0, 0, 0, 0, time.UTC)), table.Null(table.KindDate)),
		table.Floats("Speed MPH", 120, math.NaN()),
		table.Ints("Inversions Clean", 0, 0),
	)
}

func TestCSVWriter_WriteTable(t *testing.T) {
	tests := []struct {
		name      string
		bomPrefix bool
		validate  func(t *testing.T, content []byte)
	}{
		{
			name: "plain",
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				require.Len(t, lines, 3)
				assert.Equal(t, "Coaster Name,Opening Date Clean,Speed MPH,Inversions Clean", lines[0])
				assert.Equal(t, `"Top Thrill, Dragster",2003-05-04,120,0`, lines[1])
				assert.Equal(t, "Beast,,,0", lines[2])
			},
		},
		{
			name:      "with BOM prefix",
			bomPrefix: true,
			validate: func(t *testing.T, content []byte) {
				require.True(t, bytes.HasPrefix(content, utf8BOM))
				lines := strings.Split(strings.TrimSpace(string(content[len(utf8BOM):])), "\n")
				assert.Equal(t, "Coaster Name,Opening Date Clean,Speed MPH,Inversions Clean", lines[0])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out.csv")
			writer := NewCSVWriter(nil, tt.bomPrefix)

			artifact, err := writer.WriteTable(context.Background(), path, sampleTable())
			require.NoError(t, err)
			assert.Equal(t, domain.Artifact{Name: "out.csv", Format: domain.FormatCSV, Path: path, Rows: 2}, artifact)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			tt.validate(t, content)
		})
	}
}

func TestCSVWriter_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	empty := table.MustNew(table.Strings("a"), table.Floats("b"))

	artifact, err := NewCSVWriter(nil, false).WriteTable(context.Background(), path, empty)
	require.NoError(t, err)
	assert.Zero(t, artifact.Rows)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(content))
}

func TestCSVWriter_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the new file\n"), 0644))

	_, err := NewCSVWriter(nil, false).WriteTable(context.Background(), path, table.MustNew(table.Ints("n", 1)))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "n\n1\n", string(content))
}

func TestCSVWriter_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewCSVWriter(nil, false).WriteTable(context.Background(), filepath.Join(blocker, "out.csv"), sampleTable())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeStorage))
}

func TestStreamWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.csv")
	sw, err := NewCSVWriter(nil, false).CreateStreamWriter(path, []string{"k", "v"})
	require.NoError(t, err)

	require.NoError(t, sw.WriteRecord([]string{"a", "1"}))
	require.NoError(t, sw.WriteRecord([]string{"b", "2"}))
	require.NoError(t, sw.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "k,v\na,1\nb,2\n", string(content))
}
