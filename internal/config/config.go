package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendMongo     = "mongo"
	BackendFirestore = "firestore"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		Environment    string   `yaml:"environment"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Store struct {
		Backend       string `yaml:"backend"`
		MongoURI      string `yaml:"-"`
		MongoDatabase string `yaml:"mongo_database"`
	} `yaml:"store"`
	Firebase struct {
		CredentialsPath string `yaml:"credentials_path"`
		ProjectID       string `yaml:"project_id"`
	} `yaml:"firebase"`
	Push struct {
		CredentialsPath string        `yaml:"credentials_path"`
		Endpoint        string        `yaml:"endpoint"`
		Timeout         time.Duration `yaml:"timeout"`
		AndroidChannel  string        `yaml:"android_channel"`
	} `yaml:"push"`
	Redis struct {
		Addr          string        `yaml:"addr"`
		Password      string        `yaml:"-"`
		DB            int           `yaml:"db"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret  string        `yaml:"-"`
		TokenTTL   time.Duration `yaml:"token_ttl"`
		LoginRate  float64       `yaml:"login_rate"`
		LoginBurst int           `yaml:"login_burst"`
	} `yaml:"auth"`
}

// Load reads the YAML file at path, applies environment overrides and
// fills defaults. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.Store.MongoURI = os.Getenv("MONGO_URI")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	if v := os.Getenv("API_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Server.Environment = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		cfg.Store.MongoDatabase = v
	}
	if v := os.Getenv("FIREBASE_CREDENTIALS"); v != "" {
		cfg.Firebase.CredentialsPath = v
	}
	if v := os.Getenv("FIREBASE_PROJECT_ID"); v != "" {
		cfg.Firebase.ProjectID = v
	}
	if v := os.Getenv("FCM_CREDENTIALS"); v != "" {
		cfg.Push.CredentialsPath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "development"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendMongo
	}
	if cfg.Store.MongoDatabase == "" {
		cfg.Store.MongoDatabase = "mindcare"
	}
	if cfg.Push.CredentialsPath == "" {
		cfg.Push.CredentialsPath = cfg.Firebase.CredentialsPath
	}
	if cfg.Push.Timeout <= 0 {
		cfg.Push.Timeout = 10 * time.Second
	}
	if cfg.Push.AndroidChannel == "" {
		cfg.Push.AndroidChannel = "default"
	}
	if cfg.Redis.SweepInterval <= 0 {
		cfg.Redis.SweepInterval = 5 * time.Minute
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Auth.LoginRate <= 0 {
		cfg.Auth.LoginRate = 0.2
	}
	if cfg.Auth.LoginBurst <= 0 {
		cfg.Auth.LoginBurst = 5
	}
}

// Validate reports the first missing or invalid setting.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("missing JWT_SECRET env")
	}
	switch c.Store.Backend {
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New("missing MONGO_URI env for mongo store backend")
		}
	case BackendFirestore:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Firebase.CredentialsPath == "" {
		return errors.New("missing firebase credentials path")
	}
	return nil
}

// Production reports whether the server runs in the production environment.
func (c *Config) Production() bool {
	return c.Server.Environment == "production"
}
