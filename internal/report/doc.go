// Package report turns a finished pipeline run into human-readable output.
//
// Every type here is a dataprocessing.Sink that only reads the Result:
//
//   - ChartWorkbook writes charts.xlsx with one native Excel chart per sheet
//     (year counts, speed histogram and density, type counts, speed against
//     height, correlation heat map, speed by type and the decade trends).
//   - Profiler writes the EDA_Report.html profile of the cleaned table.
//   - Console prints inspection tables to a terminal.
package report
