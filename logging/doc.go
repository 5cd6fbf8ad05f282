// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// [Adapter] exposes a zap logger through the key-value Logger interface used
// by pipeline stages:
//
//	logger := logging.NewDevelopment()
//	middleware.SetDefaultLogger(logging.NewAdapter(logger))
package logging
