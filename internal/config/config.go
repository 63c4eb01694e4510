package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Auction  AuctionConfig  `mapstructure:"auction"`
	Crier    CrierConfig    `mapstructure:"crier"`
	Observer ObserverConfig `mapstructure:"observer"`
	Instance InstanceConfig `mapstructure:"instance"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type AuctionConfig struct {
	Duration        uint64        `mapstructure:"duration"`
	ReservePrice    uint64        `mapstructure:"reserve_price"`
	TimeBuffer      uint64        `mapstructure:"time_buffer"`
	MinBidIncrement uint64        `mapstructure:"min_bid_increment"`
	Treasury        string        `mapstructure:"treasury"`
	Deployer        string        `mapstructure:"deployer"`
	MaxSupply       uint64        `mapstructure:"max_supply"`
	PayoutBudget    time.Duration `mapstructure:"payout_budget"`
	// Accounts funded at startup, account name to native balance.
	SeedBalances map[string]uint64 `mapstructure:"seed_balances"`
}

type CrierConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type ObserverConfig struct {
	Port int `mapstructure:"port"`
}

type InstanceConfig struct {
	ID string `mapstructure:"id"`
}

func Load() (*Config, error) {
	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("mysql.dsn", "auction_user:auction_pass@tcp(localhost:3306)/auction_db?parseTime=true")
	viper.SetDefault("mysql.max_open_conns", 25)
	viper.SetDefault("mysql.max_idle_conns", 10)
	viper.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("auction.duration", 86400)
	viper.SetDefault("auction.reserve_price", 1)
	viper.SetDefault("auction.time_buffer", 300)
	viper.SetDefault("auction.min_bid_increment", 10)
	viper.SetDefault("auction.treasury", "treasury")
	viper.SetDefault("auction.deployer", "deployer")
	viper.SetDefault("auction.max_supply", 0)
	viper.SetDefault("auction.payout_budget", 50*time.Millisecond)
	viper.SetDefault("auction.seed_balances", map[string]uint64{})
	viper.SetDefault("crier.enabled", true)
	viper.SetDefault("crier.interval", 5*time.Second)
	viper.SetDefault("observer.port", 8081)
	viper.SetDefault("instance.id", "auction-house-1")

	// Configuration file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/auction-house/")

	// Environment variable support
	viper.AutomaticEnv()

	// Environment variable mappings
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("redis.address", "REDIS_ADDRESS")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("mysql.dsn", "MYSQL_DSN")
	viper.BindEnv("mysql.max_open_conns", "MYSQL_MAX_OPEN_CONNS")
	viper.BindEnv("mysql.max_idle_conns", "MYSQL_MAX_IDLE_CONNS")
	viper.BindEnv("mysql.conn_max_lifetime", "MYSQL_CONN_MAX_LIFETIME")
	viper.BindEnv("auction.duration", "AUCTION_DURATION")
	viper.BindEnv("auction.reserve_price", "AUCTION_RESERVE_PRICE")
	viper.BindEnv("auction.time_buffer", "AUCTION_TIME_BUFFER")
	viper.BindEnv("auction.min_bid_increment", "AUCTION_MIN_BID_INCREMENT")
	viper.BindEnv("auction.treasury", "AUCTION_TREASURY")
	viper.BindEnv("auction.deployer", "AUCTION_DEPLOYER")
	viper.BindEnv("auction.max_supply", "AUCTION_MAX_SUPPLY")
	viper.BindEnv("auction.payout_budget", "AUCTION_PAYOUT_BUDGET")
	viper.BindEnv("crier.enabled", "CRIER_ENABLED")
	viper.BindEnv("crier.interval", "CRIER_INTERVAL")
	viper.BindEnv("observer.port", "OBSERVER_PORT")
	viper.BindEnv("instance.id", "INSTANCE_ID")

	// Read configuration file (optional - will use defaults/env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, continue with defaults and environment variables
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetConfigString returns a formatted string representation of the config
func (c *Config) GetConfigString() string {
	return fmt.Sprintf(
		"Server: %s:%d, Redis: %s, MySQL: %s, Instance: %s",
		c.Server.Host,
		c.Server.Port,
		c.Redis.Address,
		c.MySQL.DSN,
		c.Instance.ID,
	)
}
