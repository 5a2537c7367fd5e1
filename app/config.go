package app

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gasparian/crypto-recommend-go/cluster"
	cm "github.com/gasparian/crypto-recommend-go/common"
	"github.com/gasparian/crypto-recommend-go/impute"
	"github.com/gasparian/crypto-recommend-go/lsh"
	"github.com/gasparian/crypto-recommend-go/sentiment"
	"gopkg.in/yaml.v2"
)

// ImputeConfig selects imputation denominator
type ImputeConfig struct {
	Mode string `yaml:"mode"` // "global" or "per-coordinate"
}

// ReportConfig holds number of currencies reported per user
type ReportConfig struct {
	TopN        int `yaml:"top_n"`
	ClusterTopN int `yaml:"cluster_top_n"`
}

// SentimentConfig holds scoring parameters
type SentimentConfig struct {
	Alpha  float64 `yaml:"alpha"`
	Center bool    `yaml:"center"` // shift known scores by the user's mean
}

// StorageConfig holds results database location; empty path disables storage
type StorageConfig struct {
	Path string `yaml:"path"`
}

// Config holds all needed variables to run the recommender
type Config struct {
	LSH       lsh.Config      `yaml:"lsh"`
	Cluster   cluster.Config  `yaml:"cluster"`
	Impute    ImputeConfig    `yaml:"impute"`
	Report    ReportConfig    `yaml:"report"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Storage   StorageConfig   `yaml:"storage"`
}

// DefaultConfig returns config used when nothing is specified
func DefaultConfig() Config {
	return Config{
		LSH:     lsh.DefaultConfig(),
		Cluster: cluster.DefaultConfig(),
		Impute:  ImputeConfig{Mode: impute.GlobalSum.String()},
		Report: ReportConfig{
			TopN:        5,
			ClusterTopN: 2,
		},
		Sentiment: SentimentConfig{Alpha: sentiment.DefaultAlpha},
	}
}

// LoadConfig reads yaml file on top of the default config
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	yamlText, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("error loading configuration file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(yamlText, &config); err != nil {
		return config, fmt.Errorf("error parsing configuration file %s: %w", path, err)
	}
	return config, nil
}

// ApplyEnv overrides config values with the environment variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	intVars := map[string]*int{
		"NUM_TABLES":    &c.LSH.NumTables,
		"HASH_WIDTH":    &c.LSH.HashWidth,
		"MAX_NN":        &c.LSH.NeighborsPerQuery,
		"NUM_CLUSTERS":  &c.Cluster.NumClusters,
		"TOP_N":         &c.Report.TopN,
		"CLUSTER_TOP_N": &c.Report.ClusterTopN,
	}
	for key, dst := range intVars {
		val, ok := lookup(key)
		if !ok {
			continue
		}
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%w: env %s: %v", cm.ErrInvalidArgument, key, err)
		}
		*dst = parsed
	}
	seedVars := map[string]*int64{
		"LSH_SEED":     &c.LSH.Seed,
		"CLUSTER_SEED": &c.Cluster.Seed,
	}
	for key, dst := range seedVars {
		val, ok := lookup(key)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: env %s: %v", cm.ErrInvalidArgument, key, err)
		}
		*dst = parsed
	}
	if val, ok := lookup("SENTIMENT_ALPHA"); ok {
		alpha, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("%w: env SENTIMENT_ALPHA: %v", cm.ErrInvalidArgument, err)
		}
		c.Sentiment.Alpha = alpha
	}
	if val, ok := lookup("IMPUTE_MODE"); ok {
		c.Impute.Mode = val
	}
	if val, ok := lookup("DB_PATH"); ok {
		c.Storage.Path = val
	}
	return nil
}

// Validate checks every config section
func (c Config) Validate() error {
	if err := c.LSH.Validate(); err != nil {
		return err
	}
	if err := c.Cluster.Validate(); err != nil {
		return err
	}
	if _, err := impute.ParseMode(c.Impute.Mode); err != nil {
		return err
	}
	if c.Report.TopN < 0 || c.Report.ClusterTopN < 0 {
		return fmt.Errorf("%w: report sizes can't be negative", cm.ErrInvalidArgument)
	}
	if c.Sentiment.Alpha <= 0 {
		return fmt.Errorf("%w: sentiment alpha must be positive, got %v", cm.ErrInvalidArgument, c.Sentiment.Alpha)
	}
	return nil
}
