// Package config loads and validates application configuration from
// environment variables (prefix CUSTOMERS_) and an optional config.yaml.
package config
