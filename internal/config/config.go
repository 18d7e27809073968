package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config captures the runtime settings for the standalone reporter.
type Config struct {
	URL             string `yaml:"url"`
	Token           string `yaml:"token"`
	ProbeID         string `yaml:"probeId"`
	NodeID          string `yaml:"nodeId"`
	ReplicaID       string `yaml:"replicaId"`
	IntervalSeconds int    `yaml:"intervalSeconds"`
	LogLevel        string `yaml:"logLevel"`
	LogFormat       string `yaml:"logFormat"`
	ListenAddr      string `yaml:"listenAddr"`
}

// DefaultConfig returns sane defaults for the reporter.
func DefaultConfig() Config {
	return Config{
		IntervalSeconds: 30,
		LogLevel:        "info",
		LogFormat:       "json",
		ListenAddr:      "",
	}
}

// Interval returns the configured interval in duration units.
func (c Config) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Load builds the configuration from os.Args.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs merges defaults, the YAML file, the env file, the environment and
// finally any flag present in args, in that order of increasing precedence.
func LoadArgs(args []string) (Config, error) {
	cfg := DefaultConfig()
	flagCfg := cfg

	configFile := os.Getenv("VIGIL_CONFIG_FILE")
	envFile := os.Getenv("VIGIL_ENV_FILE")

	fs := flag.NewFlagSet("vigil-reporter", flag.ContinueOnError)
	fs.StringVar(&configFile, "config", configFile, "Path to YAML config file")
	fs.StringVar(&envFile, "env-file", envFile, "Path to a .env file")
	fs.StringVar(&flagCfg.URL, "url", flagCfg.URL, "Status page base URL")
	fs.StringVar(&flagCfg.Token, "token", flagCfg.Token, "Reporter token")
	fs.StringVar(&flagCfg.ProbeID, "probe-id", flagCfg.ProbeID, "Probe identifier")
	fs.StringVar(&flagCfg.NodeID, "node-id", flagCfg.NodeID, "Node identifier")
	fs.StringVar(&flagCfg.ReplicaID, "replica-id", flagCfg.ReplicaID, "Replica identifier (defaults to hostname)")
	fs.IntVar(&flagCfg.IntervalSeconds, "interval", flagCfg.IntervalSeconds, "Report interval in seconds")
	fs.StringVar(&flagCfg.LogLevel, "log-level", flagCfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&flagCfg.LogFormat, "log-format", flagCfg.LogFormat, "Log format (json, text)")
	fs.StringVar(&flagCfg.ListenAddr, "listen-addr", flagCfg.ListenAddr, "Status server address, empty to disable")

	if err := fs.Parse(args); err != nil { // flag set already prints errors
		return Config{}, err
	}

	if configFile != "" {
		if err := loadFromFile(configFile, &cfg); err != nil {
			return Config{}, err
		}
	}
	if envFile != "" {
		// godotenv never overwrites variables already set in the process
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}
	applyEnvOverrides(&cfg)

	fs.Visit(func(f *flag.Flag) {
		applyFlag(&cfg, flagCfg, f.Name)
	})

	// the report path is appended with its own leading slash
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.ReplicaID == "" {
		cfg.ReplicaID = defaultReplicaID()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports missing or out of range settings.
func (c Config) Validate() error {
	var errs []error
	if c.URL == "" {
		errs = append(errs, errors.New("url is required"))
	}
	if c.Token == "" {
		errs = append(errs, errors.New("token is required"))
	}
	if c.ProbeID == "" {
		errs = append(errs, errors.New("probe id is required"))
	}
	if c.NodeID == "" {
		errs = append(errs, errors.New("node id is required"))
	}
	if c.IntervalSeconds < 1 {
		errs = append(errs, fmt.Errorf("interval must be at least 1 second, got %d", c.IntervalSeconds))
	}
	return errors.Join(errs...)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path provided by the operator
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	mergeConfigs(cfg, fileCfg)
	return nil
}

func mergeConfigs(base *Config, override Config) {
	if override.URL != "" {
		base.URL = override.URL
	}
	if override.Token != "" {
		base.Token = override.Token
	}
	if override.ProbeID != "" {
		base.ProbeID = override.ProbeID
	}
	if override.NodeID != "" {
		base.NodeID = override.NodeID
	}
	if override.ReplicaID != "" {
		base.ReplicaID = override.ReplicaID
	}
	if override.IntervalSeconds != 0 {
		base.IntervalSeconds = override.IntervalSeconds
	}
	if override.LogLevel != "" {
		base.LogLevel = override.LogLevel
	}
	if override.LogFormat != "" {
		base.LogFormat = override.LogFormat
	}
	if override.ListenAddr != "" {
		base.ListenAddr = override.ListenAddr
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VIGIL_URL"); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv("VIGIL_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("VIGIL_PROBE_ID"); v != "" {
		cfg.ProbeID = v
	}
	if v := os.Getenv("VIGIL_NODE_ID"); v != "" {
		cfg.NodeID = v
	}
	if v := os.Getenv("VIGIL_REPLICA_ID"); v != "" {
		cfg.ReplicaID = v
	}
	if v := os.Getenv("VIGIL_INTERVAL"); v != "" {
		if iv, err := strconv.Atoi(v); err == nil {
			cfg.IntervalSeconds = iv
		} else if d, err := time.ParseDuration(v); err == nil {
			cfg.IntervalSeconds = int(d / time.Second)
		}
	}
	if v := os.Getenv("VIGIL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("VIGIL_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("VIGIL_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
}

func applyFlag(cfg *Config, flags Config, name string) {
	switch name {
	case "url":
		cfg.URL = flags.URL
	case "token":
		cfg.Token = flags.Token
	case "probe-id":
		cfg.ProbeID = flags.ProbeID
	case "node-id":
		cfg.NodeID = flags.NodeID
	case "replica-id":
		cfg.ReplicaID = flags.ReplicaID
	case "interval":
		cfg.IntervalSeconds = flags.IntervalSeconds
	case "log-level":
		cfg.LogLevel = flags.LogLevel
	case "log-format":
		cfg.LogFormat = flags.LogFormat
	case "listen-addr":
		cfg.ListenAddr = flags.ListenAddr
	}
}

func defaultReplicaID() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return uuid.NewString()
}
