// Package config defines the configuration for restmap crawls.
package config
