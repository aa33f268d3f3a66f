package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/abcenterprises/fbr-einvoicing/pkg/utils"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Seller   SellerConfig   `mapstructure:"seller"`
	FBR      FBRConfig      `mapstructure:"fbr"`
	AnnexC   AnnexCConfig   `mapstructure:"annexc"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// SellerConfig identifies the registered person issuing invoices
type SellerConfig struct {
	Name     string `mapstructure:"name"`
	STRN     string `mapstructure:"strn"`
	NTN      string `mapstructure:"ntn"`
	Address  string `mapstructure:"address"`
	Province string `mapstructure:"province"`
}

// FBRConfig holds settings for the tax authority gateway
type FBRConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Latency      time.Duration `mapstructure:"latency"`
	DeniedSTRNs  []string      `mapstructure:"denied_strns"`
}

// AnnexCConfig holds sales tax return report settings
type AnnexCConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/einvoicing.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Seller defaults
	viper.SetDefault("seller.name", "ABC Enterprises (Pvt) Ltd")
	viper.SetDefault("seller.strn", "32-00-0000-000-00")
	viper.SetDefault("seller.province", "Sindh")

	// FBR gateway defaults
	viper.SetDefault("fbr.poll_interval", 5*time.Second)
	viper.SetDefault("fbr.latency", 2*time.Second)

	// Annex-C defaults
	viper.SetDefault("annexc.output_dir", "reports")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("seller.name", "SELLER_NAME")
	viper.BindEnv("seller.strn", "SELLER_STRN")
	viper.BindEnv("seller.ntn", "SELLER_NTN")
	viper.BindEnv("database.path", "DATABASE_PATH")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Seller.Name == "" {
		return fmt.Errorf("seller.name is required")
	}
	if c.Seller.STRN == "" {
		return fmt.Errorf("seller.strn is required")
	}
	if c.Seller.NTN != "" && !utils.ValidNTN(c.Seller.NTN) {
		return fmt.Errorf("seller.ntn %q is not a valid NTN", c.Seller.NTN)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.FBR.PollInterval <= 0 {
		return fmt.Errorf("fbr.poll_interval must be positive")
	}
	return nil
}
