// Package config holds the tunable limits of the marshaling layer: the
// default inbound buffer capacity, the buffer-grow retry budget, and the
// bulk-transfer block size.
//
// Limits load from a TOML or YAML file chosen by extension, with environment
// variable overrides applied on top. A Watcher can monitor the file and
// notify subscribers when the limits change, so long-running hosts pick up
// tuning without a restart. The defaults are policy choices, not a native
// contract; none of the literal constants are load-bearing.
package config
