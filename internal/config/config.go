package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL         string
	ChainID        uint64
	Campaigns      []string
	Strategy       string
	ExplorerURL    string
	ExplorerAPIKey string
	SubgraphURL    string
	IPFSGateway    string
	CacheTTL       time.Duration
	ScanWindow     uint64
	ScanCeiling    uint64
	ScanDelay      time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Target         int
	PageSize       int
	Out            string
	PgDSN          string
	MetricsAddr    string
	LogLevel       string
}

// Load merges .env, config file, environment variables, and flags into
// Config. Precedence: flags > env > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	// A .env beside the binary feeds API keys into the environment
	// before viper reads it; absence is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("SCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("strategy", "chain")
	v.SetDefault("ipfs-gateway", "https://ipfs.io/ipfs/")
	v.SetDefault("cache-ttl", 45*time.Second)
	v.SetDefault("scan-window", uint64(1000))
	v.SetDefault("scan-ceiling", uint64(50000))
	v.SetDefault("scan-delay", 200*time.Millisecond)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("target", 10)
	v.SetDefault("page-size", 10)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:         v.GetString("rpc"),
		ChainID:        v.GetUint64("chain-id"),
		Campaigns:      getStringSlice(v, "campaign"),
		Strategy:       v.GetString("strategy"),
		ExplorerURL:    v.GetString("explorer-url"),
		ExplorerAPIKey: v.GetString("explorer-api-key"),
		SubgraphURL:    v.GetString("subgraph-url"),
		IPFSGateway:    v.GetString("ipfs-gateway"),
		CacheTTL:       v.GetDuration("cache-ttl"),
		ScanWindow:     v.GetUint64("scan-window"),
		ScanCeiling:    v.GetUint64("scan-ceiling"),
		ScanDelay:      v.GetDuration("scan-delay"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		Target:         v.GetInt("target"),
		PageSize:       v.GetInt("page-size"),
		Out:            v.GetString("out"),
		PgDSN:          v.GetString("pg-dsn"),
		MetricsAddr:    v.GetString("metrics-addr"),
		LogLevel:       v.GetString("log-level"),
	}

	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
