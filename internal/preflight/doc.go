// Package preflight provides readiness checks for the directories, files,
// and external tools matchtracker depends on.
//
// These checks run in two contexts:
//   - The pipeline calls RunAll before each run and aborts when a blocking
//     check fails, so a doomed run does not spend minutes sampling first.
//   - The CLI "matchtracker deps" command displays every result.
//
// Checks for optional inputs (a missing template or vocabulary) are reported
// but never block; the run degrades instead.
package preflight
