// Package shared holds code used by several coastereda packages that belongs to
// no single stage of the pipeline.
//
// The testutil subpackage provides:
//
//   - a buffered slog handler for asserting on structured log output
//   - coaster CSV fixtures written into t.TempDir()
//
// testutil depends only on the standard library and the domain contracts, so
// any internal package may import it from its tests.
package shared
