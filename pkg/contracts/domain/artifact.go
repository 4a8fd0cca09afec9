package domain

// ArtifactFormat is the file format of a written artifact
type ArtifactFormat string

const (
	FormatCSV        ArtifactFormat = "csv"
	FormatXLSX       ArtifactFormat = "xlsx"
	FormatHTML       ArtifactFormat = "html"
	FormatPrometheus ArtifactFormat = "prometheus"
)

// Artifact describes one file produced by a run
type Artifact struct {
	Name   string         `json:"name"`
	Format ArtifactFormat `json:"format"`
	Path   string         `json:"path"`
	Rows   int            `json:"rows,omitempty"`
}
