// Package config provides centralized configuration management for
// RetailPulse.
//
// Configuration is loaded from environment variables (prefix RP) first,
// then merged with an optional YAML file (config.yaml or
// configs/config.yaml), with the environment taking precedence. The
// result is validated before the application starts.
//
// Pipeline heuristics (extreme-value detection, quality penalties,
// duplicate-cluster thresholds) live in PipelineConfig so the data
// quality behavior is documented and tunable in one place.
package config
