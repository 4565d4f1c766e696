package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Policy    PolicyConfig    `yaml:"policy"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// JWTConfig contains token validation settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// PolicyConfig contains the marketplace policy constants. They are
// configuration, not code, so operators can tune penalties without a deploy.
type PolicyConfig struct {
	EscrowAccountID      int32   `yaml:"escrow_account_id"`
	ForfeitAfterDays     int32   `yaml:"forfeit_after_days"`      // daysLate >= this routes to forfeiture
	RejectTrustPenalty   int32   `yaml:"reject_trust_penalty"`    // lessor penalty on owner reject
	ForfeitTrustPenalty  int32   `yaml:"forfeit_trust_penalty"`   // lessee penalty on forfeiture
	LatePenaltyTiersBps  []int32 `yaml:"late_penalty_tiers_bps"`  // deposit share per day late, basis points
	ExtensionExpiryHours int32   `yaml:"extension_expiry_hours"`
	LateAfterHours       int32   `yaml:"late_after_hours"`        // DUE_FOR_RETURN -> LATE_RETURN
	OverdueAfterHours    int32   `yaml:"overdue_after_hours"`     // LATE_RETURN -> OVERDUE
	AutoRefundAfterHours int32   `yaml:"auto_refund_after_hours"` // stuck PROCESSING return requests
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	BookingSweep         string `yaml:"booking_sweep"`
	AutoRefundSweep      string `yaml:"auto_refund_sweep"`
	ExtensionExpirySweep string `yaml:"extension_expiry_sweep"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Policy defaults
	if c.Policy.EscrowAccountID == 0 {
		c.Policy.EscrowAccountID = 1
	}
	if c.Policy.ForfeitAfterDays == 0 {
		c.Policy.ForfeitAfterDays = 4
	}
	if c.Policy.RejectTrustPenalty == 0 {
		c.Policy.RejectTrustPenalty = 10
	}
	if c.Policy.ForfeitTrustPenalty == 0 {
		c.Policy.ForfeitTrustPenalty = 50
	}
	if len(c.Policy.LatePenaltyTiersBps) == 0 {
		// 1 day late: 10% of deposit, 2 days: 25%, 3 days: 50%
		c.Policy.LatePenaltyTiersBps = []int32{1000, 2500, 5000}
	}
	if int32(len(c.Policy.LatePenaltyTiersBps)) != c.Policy.ForfeitAfterDays-1 {
		return fmt.Errorf("late penalty tiers must cover days 1..%d, got %d tiers",
			c.Policy.ForfeitAfterDays-1, len(c.Policy.LatePenaltyTiersBps))
	}
	if c.Policy.ExtensionExpiryHours == 0 {
		c.Policy.ExtensionExpiryHours = 48
	}
	if c.Policy.LateAfterHours == 0 {
		c.Policy.LateAfterHours = 24
	}
	if c.Policy.OverdueAfterHours == 0 {
		c.Policy.OverdueAfterHours = 72
	}
	if c.Policy.AutoRefundAfterHours == 0 {
		c.Policy.AutoRefundAfterHours = 72
	}

	// Scheduler defaults: hourly sweeps, staggered
	if c.Scheduler.BookingSweep == "" {
		c.Scheduler.BookingSweep = "0 0 * * * *"
	}
	if c.Scheduler.AutoRefundSweep == "" {
		c.Scheduler.AutoRefundSweep = "0 10 * * * *"
	}
	if c.Scheduler.ExtensionExpirySweep == "" {
		c.Scheduler.ExtensionExpirySweep = "0 20 * * * *"
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
