// Package config loads the YAML application configuration, including the
// topic table that routes search and ingestion to named indexes.
package config
