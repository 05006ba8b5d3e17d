package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Simulator SimulatorConfig
	Dividend  DividendConfig
}

// ServerConfig defines the HTTP/WebSocket listener settings.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MetricsEnabled bool          `mapstructure:"metrics_enabled"`
}

// DatabaseConfig defines the database connection settings.
// When Enabled is false preferences are kept in memory.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds a postgres connection URL.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// LogConfig defines the structured logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// SimulatorConfig holds the inputs offered to a session that has none stored.
type SimulatorConfig struct {
	InitialCapital   float64 `mapstructure:"initial_capital"`
	DailyRatePercent float64 `mapstructure:"daily_rate_percent"`
	DaysPerMonth     int     `mapstructure:"days_per_month"`
	Months           int
	Mode             string
	TakeProfitAmount float64 `mapstructure:"take_profit_amount"`
	TakeProfitPeriod string  `mapstructure:"take_profit_period"`
}

// DividendConfig defines the default flat dividend tax.
type DividendConfig struct {
	TaxPercent float64 `mapstructure:"tax_percent"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.metrics_enabled", true)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "fraksi")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "fraksi")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("simulator.initial_capital", 10_000_000)
	v.SetDefault("simulator.daily_rate_percent", 1)
	v.SetDefault("simulator.days_per_month", 20)
	v.SetDefault("simulator.months", 12)
	v.SetDefault("simulator.mode", "reinvest")
	v.SetDefault("simulator.take_profit_amount", 0)
	v.SetDefault("simulator.take_profit_period", "daily")

	v.SetDefault("dividend.tax_percent", 10)
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; defaults and FRAKSI_* variables apply.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("fraksi")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}
	err = config.Validate()
	return
}

// Validate checks the settings that would otherwise fail later at request time.
func (c Config) Validate() error {
	s := c.Simulator
	switch {
	case s.InitialCapital <= 0:
		return fmt.Errorf("simulator.initial_capital must be positive, got %v", s.InitialCapital)
	case s.DailyRatePercent < 0:
		return fmt.Errorf("simulator.daily_rate_percent must not be negative, got %v", s.DailyRatePercent)
	case s.DaysPerMonth < 1 || s.DaysPerMonth > 31:
		return fmt.Errorf("simulator.days_per_month must be within 1..31, got %d", s.DaysPerMonth)
	case s.Months < 1 || s.Months > 60:
		return fmt.Errorf("simulator.months must be within 1..60, got %d", s.Months)
	case s.Mode != "withdraw" && s.Mode != "reinvest":
		return fmt.Errorf("simulator.mode must be withdraw or reinvest, got %q", s.Mode)
	case s.TakeProfitPeriod != "daily" && s.TakeProfitPeriod != "monthly":
		return fmt.Errorf("simulator.take_profit_period must be daily or monthly, got %q", s.TakeProfitPeriod)
	case c.Dividend.TaxPercent < 0 || c.Dividend.TaxPercent > 100:
		return fmt.Errorf("dividend.tax_percent must be within 0..100, got %v", c.Dividend.TaxPercent)
	}
	return nil
}
