// Package logtail reads the application's structured log back for display.
//
// # Overview
//
// streetlens owns the terminal, so slog writes JSON lines to a file instead
// of stderr. The log overlay in the UI tails that file with this package.
//
// Read extracts the last N lines with a ring buffer, one pass and O(N)
// memory regardless of file size. ReadEntries goes one step further and
// decodes each line into an Entry:
//
//	{"time":"...","level":"WARN","msg":"description request failed","subject":"pano_456"}
//
// becomes
//
//	10:11:12 WARN  description request failed subject=pano_456
//
// when formatted. Lines that are not JSON (a panic trace, for example) are
// kept verbatim in Entry.Raw.
//
// # Missing Files
//
// A missing log file is not an error: Read returns nil so the overlay can
// show an empty state before the first record is written.
package logtail
