// Package config loads, validates, and watches the griddle
// configuration: API port, station endpoints, pipeline budgets, order
// retention, event buffering, and simulator tuning. Configuration lives
// in config.yaml under the user config directory; a missing file means
// defaults, a malformed one is an error.
package config
