// Package config provides layered configuration for the extraction
// pipelines: built-in defaults, an optional YAML file, and ECUADOR_*
// environment variables, in increasing order of precedence. It also owns
// the output directory layout shared by the pipelines and the audit.
package config
