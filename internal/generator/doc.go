// Package generator synthesizes tab-delimited test files of a target size.
//
// A file consists of a fixed header row followed by data rows that cycle
// through small fixed value pools (cities, countries, statuses) keyed by a
// monotonically increasing row index. Rows are written through a large
// buffered writer until the byte threshold is crossed, so the resulting file
// is at least the requested size and overshoots by less than one row.
package generator
