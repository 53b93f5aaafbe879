// Package config defines the runtime configuration of a maintenance
// run. The configuration is assembled once at startup from command
// line flags and environment variables and treated as read-only
// afterwards.
//
// The package focuses on:
//   - The Config struct holding every setting of a single run
//   - Host list normalization (ParseHostList) and the ordered target
//     list tried during connection establishment (Targets)
//   - The retention cutoff arithmetic (Cutoff, fixed 24 hour days,
//     always UTC)
//   - Validation of a runnable configuration (Validate)
//
// Validation happens lazily when the connection is established, not at
// assembly time.
package config
