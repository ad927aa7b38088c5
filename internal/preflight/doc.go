// Package preflight provides readiness checks for the tools, paths and
// services vidqueue depends on.
//
// These checks run in two contexts:
//   - The server answers GET /api/preflight with RunAll.
//   - The CLI "vidqueue preflight" command renders the same results as a table.
//
// Checks never fail the process; they only describe what is missing.
package preflight
