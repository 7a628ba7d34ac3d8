// Package progress provides progress tracking for uploads.
//
// Three pieces cooperate during one transfer:
//
//   - Reader wraps the file handle and emits a sample (bytes read, total,
//     elapsed) after every read chunk.
//   - Reporter consumes samples and prints throttled human-readable lines
//     with percentage, speed, and ETA.
//   - Heartbeat is a fallback for transfers without byte-level progress: a
//     ticker goroutine renders an elapsed-time spinner until cancelled.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.ReporterOptions{
//	    Interval: 2 * time.Second,
//	})
//
//	r := progress.NewReader(file, size, reporter.OnSample)
//	defer r.Close()
//	// ... stream from r ...
//
// # Output Format
//
//	  Progress: 45.1% | Uploaded: 451.00 MB / 1000.00 MB | Speed: 2.10 MB/s (avg: 1.95 MB/s) | Elapsed: 3m 51s | ETA: 4m 41s
package progress
