package generator

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
)

// Header is the fixed first row of every generated file.
const Header = "ID\tName\tEmail\tAge\tCity\tCountry\tDate\tScore\tStatus\tDescription\n"

// Value pools cycled by row index.
var (
	cities    = []string{"NYC", "LA", "Chicago", "Houston", "Phoenix"}
	countries = []string{"USA", "Canada", "UK", "Germany"}
	statuses  = []string{"Active", "Inactive", "Pending"}
)

// Options configures test file generation.
type Options struct {
	// BufferSize is the write buffer size, amortizing I/O syscalls.
	// Default: 8 MiB
	BufferSize int

	// ProgressEvery emits a progress line every N rows.
	// Default: 500000
	ProgressEvery int64

	// Output is where progress lines are written.
	// Default: os.Stdout
	Output io.Writer

	// Rand is the source for the randomized fields (age, score). Inject a
	// seeded generator for deterministic output.
	// Default: a randomly seeded generator
	Rand *rand.Rand
}

// Generate writes a tab-delimited test file of at least targetSize bytes to
// path and returns the number of data rows written. Rows are appended until
// the cumulative byte count reaches targetSize, so the final size overshoots
// by at most one row. City, country, status, and date cycle deterministically
// by row index; age and score come from opts.Rand.
func Generate(path string, targetSize int64, opts Options) (int64, error) {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 8 * 1024 * 1024
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 500000
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	w := bufio.NewWriterSize(f, opts.BufferSize)

	var written int64
	var rows int64

	n, err := w.WriteString(Header)
	if err != nil {
		f.Close()
		return 0, fmt.Errorf("write header: %w", err)
	}
	written += int64(n)

	for written < targetSize {
		rows++
		row := fmt.Sprintf("%d\tUser%d\tuser%d@test.com\t%d\t%s\t%s\t2024-01-%02d\t%d\t%s\tDescription text data here for row %d\n",
			rows, rows, rows,
			18+opts.Rand.IntN(63), // age 18..80
			cities[rows%int64(len(cities))],
			countries[rows%int64(len(countries))],
			(rows%28)+1,
			opts.Rand.IntN(101), // score 0..100
			statuses[rows%int64(len(statuses))],
			rows,
		)

		n, err := w.WriteString(row)
		if err != nil {
			f.Close()
			return rows, fmt.Errorf("write row %d: %w", rows, err)
		}
		written += int64(n)

		if rows%opts.ProgressEvery == 0 {
			fmt.Fprintf(opts.Output, "  Progress: %.2f MB (%d rows)\n",
				float64(written)/(1024*1024), rows)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return rows, fmt.Errorf("flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return rows, fmt.Errorf("close: %w", err)
	}

	return rows, nil
}
