package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by the app.
const EnvPrefix = "LIBRERIA"

// Supported storage backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string        `yaml:"git_commit" envconfig:"LIBRERIA_GIT_COMMIT"`
	GitTag             string        `yaml:"git_tag" envconfig:"LIBRERIA_GIT_TAG"`
	BuildTime          string        `yaml:"build_time" envconfig:"LIBRERIA_BUILD_TIME"`
	IsProduction       bool          `yaml:"is_production" envconfig:"LIBRERIA_IS_PRODUCTION"`
	LogLevel           zapcore.Level `yaml:"log_level" envconfig:"LIBRERIA_LOG_LEVEL"`
	LogFolder          string        `yaml:"log_folder" envconfig:"LIBRERIA_LOG_FOLDER"`
	LogMaxSize         int           `yaml:"log_max_size" envconfig:"LIBRERIA_LOG_MAX_SIZE"` // in megabytes
	OpsEndpointsEnable bool          `yaml:"ops_endpoints_enable" envconfig:"LIBRERIA_OPS_ENDPOINTS_ENABLE"`
	ProfilerEnable     bool          `yaml:"profiler_enable" envconfig:"LIBRERIA_PROFILER_ENABLE"`
	Server             ServerConfig  `yaml:"server"`
	Catalog            CatalogConfig `yaml:"catalog"`
	Storage            StorageConfig `yaml:"storage"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"LIBRERIA_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"LIBRERIA_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"LIBRERIA_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"LIBRERIA_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"LIBRERIA_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"LIBRERIA_SERVER_SHUTDOWN_TIMEOUT"`
	RateLimit       float64       `yaml:"rate_limit" envconfig:"LIBRERIA_SERVER_RATE_LIMIT"` // requests per second, 0 disables it
	RateBurst       int           `yaml:"rate_burst" envconfig:"LIBRERIA_SERVER_RATE_BURST"`
}

type CatalogConfig struct {
	DataDir  string `yaml:"data_dir" envconfig:"LIBRERIA_CATALOG_DATA_DIR"`
	Locale   string `yaml:"locale" envconfig:"LIBRERIA_CATALOG_LOCALE"`
	Autoload string `yaml:"autoload" envconfig:"LIBRERIA_CATALOG_AUTOLOAD"`
}

type StorageConfig struct {
	Backend string       `yaml:"backend" envconfig:"LIBRERIA_STORAGE_BACKEND"`
	BoltDB  BoltDBConfig `yaml:"boltdb"`
	Redis   RedisConfig  `yaml:"redis"`
	Mirror  MirrorConfig `yaml:"mirror"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"LIBRERIA_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"LIBRERIA_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"LIBRERIA_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"LIBRERIA_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"LIBRERIA_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"LIBRERIA_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"LIBRERIA_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"LIBRERIA_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"LIBRERIA_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"LIBRERIA_REDIS_DATABASE_INDEX"`
	KeyPrefix     string        `yaml:"key_prefix" envconfig:"LIBRERIA_REDIS_KEY_PREFIX"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"LIBRERIA_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"LIBRERIA_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"LIBRERIA_BOLTDB_BUCKET_NAME"`
}

// metaBucket is the bucket holding the catalogue order.
func (c *BoltDBConfig) metaBucket() string {
	return c.BucketName + ".meta"
}

// MirrorConfig enables the copy of every redis change into a boltdb file.
type MirrorConfig struct {
	Enable bool   `yaml:"enable" envconfig:"LIBRERIA_MIRROR_ENABLE"`
	Queue  string `yaml:"queue" envconfig:"LIBRERIA_MIRROR_QUEUE"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables into the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	setDefaults(config)

	if _, err := language.Parse(config.Catalog.Locale); err != nil {
		return fmt.Errorf("invalid catalog locale %q: %v", config.Catalog.Locale, err)
	}

	switch config.Storage.Backend {
	case BackendMemory, BackendBolt:
	case BackendRedis:
		if len(config.Storage.Redis.Host) == 0 || len(config.Storage.Redis.Port) == 0 {
			return errors.New("make sure to set valid redis address and port in configuration file")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, config.Storage.Backend)
	}

	if config.Storage.Mirror.Enable && config.Storage.Backend != BackendRedis {
		return errors.New("the boltdb mirror requires the redis storage backend")
	}

	return nil
}

func setDefaults(config *Config) {
	if config.LogFolder == "" {
		config.LogFolder = "./logs"
	}
	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}

	s := &config.Server
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 10 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 15 * time.Second
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = 10 * time.Second
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = 30 * time.Second
	}
	if s.RateLimit > 0 && s.RateBurst <= 0 {
		s.RateBurst = int(s.RateLimit) + 1
	}

	if config.Catalog.DataDir == "" {
		config.Catalog.DataDir = "."
	}
	if config.Catalog.Locale == "" {
		config.Catalog.Locale = "it"
	}

	st := &config.Storage
	st.Backend = strings.ToLower(strings.TrimSpace(st.Backend))
	if st.Backend == "" {
		st.Backend = BackendMemory
	}
	if st.BoltDB.FilePath == "" {
		st.BoltDB.FilePath = "libreria.db"
	}
	if st.BoltDB.Timeout == 0 {
		st.BoltDB.Timeout = time.Second
	}
	if st.BoltDB.BucketName == "" {
		st.BoltDB.BucketName = "books"
	}
	if st.Redis.KeyPrefix == "" {
		st.Redis.KeyPrefix = "libreria"
	}
	if st.Mirror.Queue == "" {
		st.Mirror.Queue = st.Redis.KeyPrefix + ":changes"
	}
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. The env file is optional.
func LoadAndInitConfigs(configFile, envFile, gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile(configFile)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	if envFile != "" {
		err = godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config, fmt.Errorf("failed to set environment configurations: %s", err)
		}
	}

	// Use environment variables with prefix `LIBRERIA`.
	err = LoadConfigEnvs(EnvPrefix, config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
