package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// SourceType and TargetType name the resolver on each side of a
	// migration or comparison.
	SourceType string `koanf:"source_type" validate:"required,oneof=coredns unbound"`
	TargetType string `koanf:"target_type" validate:"required,oneof=coredns unbound"`

	// SourceServer and TargetServer are resolver endpoints in ip:port format.
	SourceServer string `koanf:"source_server" validate:"required,ip_port"`
	TargetServer string `koanf:"target_server" validate:"required,ip_port"`

	// SourceConfig and TargetConfig are resolver config file paths. Empty
	// means the conventional per-resolver default.
	SourceConfig string `koanf:"source_config"`
	TargetConfig string `koanf:"target_config"`

	// BackupDir is where migration backups are written.
	BackupDir string `koanf:"backup_dir" validate:"required"`

	// HistoryDB is the path of the migration/shadow history database.
	HistoryDB string `koanf:"history_db" validate:"required"`

	// QueryTimeout bounds a single DNS query during comparison.
	QueryTimeout time.Duration `koanf:"query_timeout"`

	// Retries is the per-query retry count when a resolver leg fails.
	Retries int `koanf:"retries" validate:"gte=0"`

	// MaxInFlight caps concurrent queries in bulk comparison. Zero means
	// unlimited.
	MaxInFlight int `koanf:"max_in_flight" validate:"gte=0"`

	// SampleRate is the fraction of shadow-mode queries that get compared.
	SampleRate float64 `koanf:"sample_rate" validate:"gte=0,lte=1"`

	// AlertThreshold is the shadow-mode mismatch rate that triggers alerts.
	AlertThreshold float64 `koanf:"alert_threshold" validate:"gte=0,lte=1"`

	// AlertCooldown is the minimum time between shadow-mode alerts. Zero
	// means alert on every over-threshold evaluation.
	AlertCooldown time.Duration `koanf:"alert_cooldown"`
}

// DEFAULT_APP_CONFIG defines the default application configuration: a local
// CoreDNS source on the standard port, an Unbound target on an alternate
// port, and the standard state paths.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:            "prod",
	LogLevel:       "info",
	SourceType:     "coredns",
	TargetType:     "unbound",
	SourceServer:   "127.0.0.1:53",
	TargetServer:   "127.0.0.1:5353",
	BackupDir:      "/var/lib/rr-shift/backups",
	HistoryDB:      "/var/lib/rr-shift/history.db",
	QueryTimeout:   5 * time.Second,
	Retries:        3,
	MaxInFlight:    0,
	SampleRate:     1.0,
	AlertThreshold: 0.01,
}

// validIPPort validates whether the provided field value is a valid IP address and port combination.
// It expects the value to be in the format "IP:Port". The function returns true if the IP address
// is valid and both the IP and port are non-empty; otherwise, it returns false.
func validIPPort(fl validator.FieldLevel) bool {
	// stringify the field value to get the IP:Port format.
	addr := fl.Field().String()
	// Split the address into IP and port.
	ip, port, err := net.SplitHostPort(addr)
	if err != nil || ip == "" || port == "" {
		return false
	}
	// Check if the IP address is valid.
	if net.ParseIP(ip) == nil {
		return false
	}
	// Check if the port is a valid number between 1 and 65535.
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0 && portNum < 65536
}

// envLoader is a function that loads environment variables with the prefix "SHIFT_".
// It transforms the keys to lowercase and removes the prefix.
// and can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	// Load environment variables with prefix "SHIFT_".
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "SHIFT_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "SHIFT_"))
			value = strings.TrimSpace(value)
			return key, value
		},
	}), nil)
}

// defaultLoader loads default configuration values into the provided Koanf instance
// using the structs provider and the DEFAULT_APP_CONFIG struct. It returns an error
// if loading fails.
var defaultLoader = func(k *koanf.Koanf) error {
	// Load default values using structs provider.
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers a custom validation function "ip_port" with the provided validator.
// It associates the "ip_port" tag with the validIPPort validation logic.
// Returns an error if registration fails.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("ip_port", validIPPort)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	// Load default values using structs provider.
	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	// Load environment variables with prefix "SHIFT_", using koanf/providers/env/v2 and Opt pattern.
	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig

	// Unmarshal the loaded configuration into AppConfig struct.
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Validate the configuration.
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Register the custom validation function for IP:Port format.
	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
