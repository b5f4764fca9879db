package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Supported database types
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// Vote policies
const (
	// Every submission counts, even repeated ones from the same voter
	VotePolicyMultiple = "multiple"
	// A voter's latest submission replaces the earlier one
	VotePolicySingle = "single"
)

type Config struct {
	Port         int    `yaml:"port" env:"PORT" env-default:"3318"`
	DatabaseURL  string `yaml:"database_url" env:"DATABASE_URL"`
	DatabaseType string `yaml:"database_type" env:"DATABASE_TYPE" env-default:"sqlite"`
	AdminKeySalt string `yaml:"admin_key_salt" env:"ADMIN_KEY_SALT"`
	IPHashSalt   string `yaml:"ip_hash_salt" env:"IP_HASH_SALT"`

	Env       string `yaml:"env" env:"ENV" env-default:"local"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	// Default for polls that don't choose a policy
	VotePolicy  string   `yaml:"vote_policy" env:"VOTE_POLICY" env-default:"multiple"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:"," env-default:"*"`
}

// AllowMultipleVotes reports whether new polls count every submission.
func (c Config) AllowMultipleVotes() bool {
	return c.VotePolicy != VotePolicySingle
}

// ParseFlags reads configuration from an optional YAML file, the
// environment (including a .env file), and finally CLI flags.
func ParseFlags(args []string) (Config, error) {
	fs := flag.NewFlagSet("syncmeet", flag.ContinueOnError)

	configPath := fs.String("c", "", "Path to YAML config file")

	// Network config (can be CLI args or env)
	port := fs.Int("p", 0, "Server port")
	dbURL := fs.String("d", "", "Database URL")
	dbType := fs.String("t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	adminSalt := fs.String("admin-salt", "", "Admin key salt (prefer env)")
	ipSalt := fs.String("ip-salt", "", "IP hash salt (prefer env)")

	env := fs.String("env", "", "Environment name (local, dev, prod)")
	logFormat := fs.String("log-format", "", "Log format (text or json)")
	votePolicy := fs.String("vote-policy", "", "Default vote policy (multiple or single)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	var cfg Config
	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	// CLI overrides env
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Port = *port
		case "d":
			cfg.DatabaseURL = *dbURL
		case "t":
			cfg.DatabaseType = *dbType
		case "admin-salt":
			cfg.AdminKeySalt = *adminSalt
		case "ip-salt":
			cfg.IPHashSalt = *ipSalt
		case "env":
			cfg.Env = *env
		case "log-format":
			cfg.LogFormat = *logFormat
		case "vote-policy":
			cfg.VotePolicy = *votePolicy
		}
	})

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, errors.New("invalid port")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	cfg.VotePolicy = strings.ToLower(cfg.VotePolicy)
	if cfg.VotePolicy != VotePolicyMultiple && cfg.VotePolicy != VotePolicySingle {
		return Config{}, fmt.Errorf("unsupported vote policy %q", cfg.VotePolicy)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}
	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = cfg.AdminKeySalt
	}

	return cfg, nil
}

func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env: %w", err)
}
