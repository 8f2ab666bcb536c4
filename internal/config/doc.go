// Package config defines the service's runtime configuration and binds
// it to cobra flags, following the flag-per-setting style the rest of
// this service's command line uses, with each flag's default sourced
// from an environment variable so the binary runs unmodified under a
// container orchestrator.
package config
