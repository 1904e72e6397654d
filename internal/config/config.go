package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from file, environment and flags.
type Config struct {
	Env                string        `yaml:"env" env:"APP_ENV" env-default:"prod"`
	RunAddress         string        `yaml:"run_address" env:"RUN_ADDRESS" env-default:":8080"`
	DatabaseURI        string        `yaml:"database_uri" env:"DATABASE_URI"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	AdminKeyHash       string        `yaml:"-" env:"ADMIN_KEY_HASH"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	Sweep              Sweep         `yaml:"sweep"`
	Kafka              Kafka         `yaml:"kafka"`
	Mpesa              Mpesa         `yaml:"mpesa"`
}

// Sweep configures the expiry sweeper.
type Sweep struct {
	Interval      time.Duration `yaml:"interval" env:"SWEEP_INTERVAL" env-default:"1m"`
	BatchSize     int           `yaml:"batch_size" env:"SWEEP_BATCH_SIZE" env-default:"100"`
	Workers       int           `yaml:"workers" env:"SWEEP_WORKERS" env-default:"4"`
	PaymentExpiry time.Duration `yaml:"payment_expiry" env:"PAYMENT_EXPIRY" env-default:"10m"`
}

// Kafka configures payment event publishing. No brokers disables it.
type Kafka struct {
	Brokers       []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	PaymentsTopic string   `yaml:"payments_topic" env:"KAFKA_PAYMENTS_TOPIC" env-default:"payment-events"`
}

const (
	defaultShutdownTimeout = 10 * time.Second
	defaultSweepInterval   = time.Minute
	defaultSweepBatchSize  = 100
	defaultSweepWorkers    = 4
	defaultPaymentExpiry   = 10 * time.Minute
	defaultMpesaTimeout    = 30 * time.Second
	defaultPaymentsTopic   = "payment-events"
)

// Load parses configuration from an optional YAML file, the environment and flags.
func Load(args []string) (*Config, error) {
	return load(args, os.LookupEnv)
}

type envLookup func(string) (string, bool)

type overrides struct {
	configPath      string
	env             string
	runAddress      string
	databaseURI     string
	shutdownTimeout string
	sweepInterval   string
	paymentExpiry   string
	sweepBatch      int
	sweepWorkers    int
}

func load(args []string, lookup envLookup) (*Config, error) {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var ov overrides
	fs.StringVar(&ov.configPath, "config", "", "Path to YAML config file")
	fs.StringVar(&ov.env, "env", "", "Runtime environment (local, dev, prod)")
	fs.StringVar(&ov.runAddress, "a", "", "HTTP server listen address")
	fs.StringVar(&ov.databaseURI, "d", "", "PostgreSQL DSN")
	fs.StringVar(&ov.shutdownTimeout, "shutdown-timeout", "", "Graceful shutdown timeout")
	fs.StringVar(&ov.sweepInterval, "sweep-interval", "", "Interval between expiry sweeps")
	fs.StringVar(&ov.paymentExpiry, "payment-expiry", "", "Window before a pending payment times out")
	fs.IntVar(&ov.sweepBatch, "sweep-batch", 0, "Maximum orders per sweep batch")
	fs.IntVar(&ov.sweepWorkers, "sweep-workers", 0, "Number of concurrent sweep workers")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := loadDotEnv(lookup); err != nil {
		return nil, err
	}

	path := ov.configPath
	if path == "" {
		path, _ = lookup("CONFIG_PATH")
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := applyOverrides(fs, &ov, &cfg); err != nil {
		return nil, err
	}

	normalize(&cfg)

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return &cfg, nil
}

func loadDotEnv(lookup envLookup) error {
	path := ".env"
	if custom, ok := lookup("DOTENV_PATH"); ok && custom != "" {
		path = custom
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyOverrides(fs *flag.FlagSet, ov *overrides, cfg *Config) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "env":
			cfg.Env = ov.env
		case "a":
			cfg.RunAddress = ov.runAddress
		case "d":
			cfg.DatabaseURI = ov.databaseURI
		case "sweep-batch":
			cfg.Sweep.BatchSize = ov.sweepBatch
		case "sweep-workers":
			cfg.Sweep.Workers = ov.sweepWorkers
		case "shutdown-timeout":
			if cfg.ShutdownTimeout, err = time.ParseDuration(ov.shutdownTimeout); err != nil {
				err = fmt.Errorf("invalid shutdown timeout: %w", err)
			}
		case "sweep-interval":
			if cfg.Sweep.Interval, err = time.ParseDuration(ov.sweepInterval); err != nil {
				err = fmt.Errorf("invalid sweep interval: %w", err)
			}
		case "payment-expiry":
			if cfg.Sweep.PaymentExpiry, err = time.ParseDuration(ov.paymentExpiry); err != nil {
				err = fmt.Errorf("invalid payment expiry: %w", err)
			}
		}
	})
	return err
}

func normalize(cfg *Config) {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Sweep.Interval <= 0 {
		cfg.Sweep.Interval = defaultSweepInterval
	}
	if cfg.Sweep.BatchSize <= 0 {
		cfg.Sweep.BatchSize = defaultSweepBatchSize
	}
	if cfg.Sweep.Workers <= 0 {
		cfg.Sweep.Workers = defaultSweepWorkers
	}
	if cfg.Sweep.PaymentExpiry <= 0 {
		cfg.Sweep.PaymentExpiry = defaultPaymentExpiry
	}
	if cfg.Mpesa.Timeout <= 0 {
		cfg.Mpesa.Timeout = defaultMpesaTimeout
	}
	if cfg.Mpesa.RateLimit < 0 {
		cfg.Mpesa.RateLimit = 0
	}
	if cfg.Kafka.PaymentsTopic == "" {
		cfg.Kafka.PaymentsTopic = defaultPaymentsTopic
	}
	cfg.Kafka.Brokers = compact(cfg.Kafka.Brokers)
	cfg.CORSAllowedOrigins = compact(cfg.CORSAllowedOrigins)
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
