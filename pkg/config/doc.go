// Package config provides configuration management for passkeep.
//
// # Configuration Sources
//
// Values are resolved in this order, later sources winning:
//
//   - Built-in defaults
//   - passkeep.yml in $PASSKEEP_CONFIG_PATH (default: <user config dir>/passkeep)
//   - Environment variables
//   - Command-line flags (--backend)
//
// Each attribute remembers which source set it; `passkeepctl configuration
// show` prints them.
//
// # Key Configuration Options
//
//   - PASSKEEP_BACKEND: file, mongodb, postgres, mysql, sqlite or gorm
//   - PASSKEEP_FILE_PATH: JSON document for the file backend
//   - PASSKEEP_MONGO_URI: MongoDB connection string
//   - DATABASE_URL: DSN for the relational backends
//   - PASSKEEP_TABLE: table name for the relational backends
//   - PASSKEEP_LOG_LEVEL: debug, info, warn or error
package config
