// Package config provides configuration structures and utilities for
// sdksniff. It defines the pipeline options (store and archive
// locations, replay concurrency, report format) and loads the optional
// YAML rules file with analysis overrides.
package config
