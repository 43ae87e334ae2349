package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/passkeep/pkg/store"
)

const (
	ConfigFileName    = "passkeep.yml"
	DefaultFileName   = "passwords.json"
	DefaultMongoURI   = "mongodb://localhost:27017"
	DefaultMongoDB    = "passkeep"
	DefaultCollection = "passwords"
	DefaultTable      = "passwords"
	DefaultTimeout    = 10
	DefaultLogLevel   = "info"
)

// Attribute sources, lowest precedence first
const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
	SourceFlag        = "flag"
)

// ValidLogLevels is the list of accepted log_level values
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// PasskeepConfig holds all passkeep configuration settings
type PasskeepConfig struct {
	// Backend selects the storage backend
	Backend string `yaml:"backend" json:"backend"`

	// FilePath is the JSON document used by the file backend
	FilePath string `yaml:"file_path" json:"file_path"`

	// FileLenient treats a malformed file as empty instead of failing
	FileLenient bool `yaml:"file_lenient" json:"file_lenient"`

	// MongoURI is the MongoDB connection string
	MongoURI string `yaml:"mongo_uri" json:"mongo_uri"`

	// MongoDatabase is the MongoDB database name
	MongoDatabase string `yaml:"mongo_database" json:"mongo_database"`

	// MongoCollection is the MongoDB collection name
	MongoCollection string `yaml:"mongo_collection" json:"mongo_collection"`

	// Timeout bounds connection attempts and operations, in seconds
	Timeout int `yaml:"timeout" json:"timeout"`

	// DatabaseURL is the DSN for the relational backends
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// Table is the relational table name
	Table string `yaml:"table" json:"table"`

	// LogLevel is one of ValidLogLevels
	LogLevel string `yaml:"log_level" json:"log_level"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// DefaultConfigDir returns $PASSKEEP_CONFIG_PATH or <user config dir>/passkeep.
func DefaultConfigDir() string {
	if dir := os.Getenv("PASSKEEP_CONFIG_PATH"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "passkeep")
}

// newDefault returns a config with default values
func newDefault(configDir string) *PasskeepConfig {
	c := &PasskeepConfig{
		Backend:         string(store.KindFile),
		FilePath:        filepath.Join(configDir, DefaultFileName),
		MongoURI:        DefaultMongoURI,
		MongoDatabase:   DefaultMongoDB,
		MongoCollection: DefaultCollection,
		Timeout:         DefaultTimeout,
		Table:           DefaultTable,
		LogLevel:        DefaultLogLevel,
		sources:         make(map[string]string),
		configFilePath:  filepath.Join(configDir, ConfigFileName),
	}
	for _, name := range attributeNames() {
		c.sources[name] = SourceDefault
	}
	return c
}

// Load loads configuration from DefaultConfigDir and the environment.
// Environment variables take precedence over file values.
func Load() (*PasskeepConfig, error) {
	return LoadFrom(DefaultConfigDir())
}

// LoadFrom loads configuration from passkeep.yml in configDir, then applies
// environment overrides. A missing file is not an error.
func LoadFrom(configDir string) (*PasskeepConfig, error) {
	config := newDefault(configDir)

	data, err := os.ReadFile(config.configFilePath)
	switch {
	case err == nil:
		var fileConfig PasskeepConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file %s: %w", config.configFilePath, err)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"backend", "file_path", "file_lenient",
		"mongo_uri", "mongo_database", "mongo_collection", "timeout",
		"database_url", "table", "log_level",
	}
}

func (c *PasskeepConfig) applyFileConfig(file *PasskeepConfig) {
	if file.Backend != "" {
		c.Backend = file.Backend
		c.sources["backend"] = SourceFile
	}
	if file.FilePath != "" {
		c.FilePath = expandHome(file.FilePath)
		c.sources["file_path"] = SourceFile
	}
	if file.FileLenient {
		c.FileLenient = true
		c.sources["file_lenient"] = SourceFile
	}
	if file.MongoURI != "" {
		c.MongoURI = file.MongoURI
		c.sources["mongo_uri"] = SourceFile
	}
	if file.MongoDatabase != "" {
		c.MongoDatabase = file.MongoDatabase
		c.sources["mongo_database"] = SourceFile
	}
	if file.MongoCollection != "" {
		c.MongoCollection = file.MongoCollection
		c.sources["mongo_collection"] = SourceFile
	}
	if file.Timeout != 0 {
		c.Timeout = file.Timeout
		c.sources["timeout"] = SourceFile
	}
	if file.DatabaseURL != "" {
		c.DatabaseURL = file.DatabaseURL
		c.sources["database_url"] = SourceFile
	}
	if file.Table != "" {
		c.Table = file.Table
		c.sources["table"] = SourceFile
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
		c.sources["log_level"] = SourceFile
	}
}

func (c *PasskeepConfig) applyEnvConfig() {
	if val := os.Getenv("PASSKEEP_BACKEND"); val != "" {
		c.Backend = val
		c.sources["backend"] = SourceEnvironment
	}
	if val := os.Getenv("PASSKEEP_FILE_PATH"); val != "" {
		c.FilePath = expandHome(val)
		c.sources["file_path"] = SourceEnvironment
	}
	if val := os.Getenv("PASSKEEP_FILE_LENIENT"); val != "" {
		c.FileLenient = val == "true" || val == "1"
		c.sources["file_lenient"] = SourceEnvironment
	}
	if val := os.Getenv("PASSKEEP_MONGO_URI"); val != "" {
		c.MongoURI = val
		c.sources["mongo_uri"] = SourceEnvironment
	}
	if val := os.Getenv("PASSKEEP_MONGO_DATABASE"); val != "" {
		c.MongoDatabase = val
		c.sources["mongo_database"] = SourceEnvironment
	}
	if val := os.Getenv("PASSKEEP_MONGO_COLLECTION"); val != "" {
		c.MongoCollection = val
		c.sources["mongo_collection"] = SourceEnvironment
	}
	if val := os.Getenv("PASSKEEP_TIMEOUT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.Timeout = i
			c.sources["timeout"] = SourceEnvironment
		}
	}
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.DatabaseURL = val
		c.sources["database_url"] = SourceEnvironment
	}
	if val := os.Getenv("PASSKEEP_TABLE"); val != "" {
		c.Table = val
		c.sources["table"] = SourceEnvironment
	}
	if val := os.Getenv("PASSKEEP_LOG_LEVEL"); val != "" {
		c.LogLevel = val
		c.sources["log_level"] = SourceEnvironment
	}
}

// SetBackend overrides the backend from a command-line flag.
func (c *PasskeepConfig) SetBackend(backend string) {
	c.Backend = backend
	c.sources["backend"] = SourceFlag
}

// ConfigFilePath returns the path to the config file
func (c *PasskeepConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *PasskeepConfig) Source(name string) string {
	if c.sources == nil {
		return SourceDefault
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

// Kind returns the parsed backend kind
func (c *PasskeepConfig) Kind() (store.Kind, error) {
	return store.ParseKind(c.Backend)
}

// TimeoutDuration returns the timeout as a duration
func (c *PasskeepConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// SlogLevel returns the slog level for LogLevel, defaulting to info
func (c *PasskeepConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the configuration
func (c *PasskeepConfig) Validate() error {
	kind, err := c.Kind()
	if err != nil {
		return err
	}

	switch {
	case kind == store.KindFile && c.FilePath == "":
		return fmt.Errorf("file_path is required for the file backend")
	case kind == store.KindMongo && c.MongoURI == "":
		return fmt.Errorf("mongo_uri is required for the mongodb backend")
	case kind.IsRelational() && c.DatabaseURL == "":
		return fmt.Errorf("database_url is required for the %s backend", kind)
	}

	if kind.IsRelational() {
		if err := store.ValidateIdentifier(c.Table); err != nil {
			return fmt.Errorf("invalid table: %w", err)
		}
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.Timeout)
	}

	valid := false
	for _, l := range ValidLogLevels {
		if strings.EqualFold(c.LogLevel, l) {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *PasskeepConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "backend", Value: c.Backend, Source: c.Source("backend")},
		{Name: "file_path", Value: c.FilePath, Source: c.Source("file_path")},
		{Name: "file_lenient", Value: strconv.FormatBool(c.FileLenient), Source: c.Source("file_lenient")},
		{Name: "mongo_uri", Value: redactURL(c.MongoURI), Source: c.Source("mongo_uri")},
		{Name: "mongo_database", Value: c.MongoDatabase, Source: c.Source("mongo_database")},
		{Name: "mongo_collection", Value: c.MongoCollection, Source: c.Source("mongo_collection")},
		{Name: "timeout", Value: strconv.Itoa(c.Timeout), Source: c.Source("timeout")},
		{Name: "database_url", Value: redactURL(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "table", Value: c.Table, Source: c.Source("table")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
	}
}

// FormatText returns a text representation of the configuration
func (c *PasskeepConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-20s %-50s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-20s %-50s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-20s %-50s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *PasskeepConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
