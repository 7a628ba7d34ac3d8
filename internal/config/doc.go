// Package config resolves tool configuration from three layers, in
// increasing precedence: built-in defaults, an optional config file, and
// SFPUSH_-prefixed environment variables. Command-line flags are applied on
// top by the caller.
//
// # Config File
//
// Any format viper understands works; keys are nested:
//
//	file:
//	  path: test_file.tsv
//	  size: 500MB
//	upload:
//	  timeout: 60m
//	  mode: stream
//	  apiversion: v59.0
//	auth:
//	  command: sf
//
// # Environment
//
// Dots become underscores: SFPUSH_FILE_SIZE=1GB, SFPUSH_UPLOAD_MODE=heartbeat.
package config
