// Package config defines the application configuration structure and its
// loader. Configuration comes from environment variables with the TSPL_
// prefix (e.g. TSPL_DATABASE_URL) or an optional config.yaml, and is
// validated with struct tags before use.
package config
