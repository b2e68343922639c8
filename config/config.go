package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Remote   RemoteConfig   `yaml:"remote"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Store    StoreConfig    `yaml:"store"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Auth     AuthConfig     `yaml:"auth"`
	Users    []User         `yaml:"users"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RemoteConfig points at the remote analysis collaborator. Uploads get
// a generous bound; status checks stay in single digits.
type RemoteConfig struct {
	BaseURL           string `yaml:"base_url"`
	UploadTimeoutSec  int    `yaml:"upload_timeout_sec"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
	StatusTimeoutSec  int    `yaml:"status_timeout_sec"`
	ChatTimeoutSec    int    `yaml:"chat_timeout_sec"`
}

// ArchiveConfig enables optional snapshot archival to object storage.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type StoreConfig struct {
	MaxProjects int `yaml:"max_projects"`
}

// AnalysisConfig tunes the background remote phase.
type AnalysisConfig struct {
	StartRetries    int `yaml:"start_retries"`
	BackoffSec      int `yaml:"backoff_sec"`
	PollIntervalSec int `yaml:"poll_interval_sec"`
	MaxPolls        int `yaml:"max_polls"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func Load(path string) (*Config, error) {
	// A .env next to the binary may carry deployment overrides.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Environment overrides
	if url := os.Getenv("BRIDGE_API_URL"); url != "" {
		cfg.Remote.BaseURL = url
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Remote.UploadTimeoutSec == 0 {
		cfg.Remote.UploadTimeoutSec = 300
	}
	if cfg.Remote.RequestTimeoutSec == 0 {
		cfg.Remote.RequestTimeoutSec = 60
	}
	if cfg.Remote.StatusTimeoutSec == 0 {
		cfg.Remote.StatusTimeoutSec = 10
	}
	if cfg.Remote.ChatTimeoutSec == 0 {
		cfg.Remote.ChatTimeoutSec = 180
	}
	if cfg.Store.MaxProjects == 0 {
		cfg.Store.MaxProjects = 50
	}
	if cfg.Analysis.StartRetries == 0 {
		cfg.Analysis.StartRetries = 3
	}
	if cfg.Analysis.BackoffSec == 0 {
		cfg.Analysis.BackoffSec = 10
	}
	if cfg.Analysis.PollIntervalSec == 0 {
		cfg.Analysis.PollIntervalSec = 5
	}
	if cfg.Analysis.MaxPolls == 0 {
		cfg.Analysis.MaxPolls = 120
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}

	return &cfg, nil
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
