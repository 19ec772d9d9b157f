package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mlsentiment/internal/featurize"
	"mlsentiment/internal/models"
)

type Config struct {
	Featurizer FeaturizerConfig `yaml:"featurizer"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Log        LogConfig        `yaml:"log"`
	History    HistoryConfig    `yaml:"history"`
}

type FeaturizerConfig struct {
	Tokenizer       string `yaml:"tokenizer"`
	WordNgramLength int    `yaml:"word_ngram_length"`
	CharNgramLength int    `yaml:"char_ngram_length"`
	CacheSize       int    `yaml:"cache_size"`
}

type ClassifierConfig struct {
	Algorithm          string  `yaml:"algorithm"`
	NumLeaves          int     `yaml:"num_leaves"`
	NumTrees           int     `yaml:"num_trees"`
	MinDocumentsInLeaf int     `yaml:"min_documents_in_leaf"`
	LearningRate       float64 `yaml:"learning_rate"`
	Parallel           bool    `yaml:"parallel"`
	MaxWorkers         int     `yaml:"max_workers"`
	Alpha              float64 `yaml:"alpha"`
}

type EvaluationConfig struct {
	CrossValidationFolds int `yaml:"cross_validation_folds"`
	BatchSize            int `yaml:"batch_size"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// HistoryConfig points at the SQLite run history. An empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

func Default() *Config {
	return &Config{
		Featurizer: FeaturizerConfig{
			Tokenizer:       featurize.TokenizerWord,
			WordNgramLength: 1,
			CharNgramLength: 3,
			CacheSize:       10000,
		},
		Classifier: ClassifierConfig{
			Algorithm:          models.AlgorithmFastTree,
			NumLeaves:          5,
			NumTrees:           5,
			MinDocumentsInLeaf: 2,
			LearningRate:       0.2,
			Parallel:           true,
			MaxWorkers:         4,
			Alpha:              1.0,
		},
		Evaluation: EvaluationConfig{
			CrossValidationFolds: 0,
			BatchSize:            1000,
		},
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Featurizer.Tokenizer {
	case featurize.TokenizerWord, featurize.TokenizerBPE:
	default:
		return fmt.Errorf("unknown tokenizer: %q", c.Featurizer.Tokenizer)
	}
	if c.Featurizer.WordNgramLength < 0 || c.Featurizer.CharNgramLength < 0 {
		return fmt.Errorf("n-gram lengths must not be negative")
	}
	if c.Featurizer.WordNgramLength == 0 && c.Featurizer.CharNgramLength == 0 {
		return fmt.Errorf("at least one of word or char n-grams must be enabled")
	}

	switch c.Classifier.Algorithm {
	case models.AlgorithmFastTree:
		if c.Classifier.NumLeaves < 2 {
			return fmt.Errorf("num_leaves must be at least 2, got %d", c.Classifier.NumLeaves)
		}
		if c.Classifier.NumTrees < 1 {
			return fmt.Errorf("num_trees must be positive, got %d", c.Classifier.NumTrees)
		}
		if c.Classifier.MinDocumentsInLeaf < 1 {
			return fmt.Errorf("min_documents_in_leaf must be positive, got %d", c.Classifier.MinDocumentsInLeaf)
		}
		if c.Classifier.LearningRate <= 0 {
			return fmt.Errorf("learning_rate must be positive, got %g", c.Classifier.LearningRate)
		}
	case models.AlgorithmBayes:
		if c.Classifier.Alpha <= 0 {
			return fmt.Errorf("alpha must be positive, got %g", c.Classifier.Alpha)
		}
	default:
		return fmt.Errorf("unknown algorithm: %q", c.Classifier.Algorithm)
	}

	if c.Evaluation.CrossValidationFolds == 1 || c.Evaluation.CrossValidationFolds < 0 {
		return fmt.Errorf("cross_validation_folds must be 0 (off) or at least 2, got %d", c.Evaluation.CrossValidationFolds)
	}

	return nil
}

func (c *Config) FeaturizerOptions() featurize.Options {
	return featurize.Options{
		Tokenizer:       c.Featurizer.Tokenizer,
		WordNgramLength: c.Featurizer.WordNgramLength,
		CharNgramLength: c.Featurizer.CharNgramLength,
		CacheSize:       c.Featurizer.CacheSize,
	}
}

func (c *Config) ModelConfig() models.ModelConfig {
	return models.ModelConfig{
		Algorithm:          c.Classifier.Algorithm,
		NumLeaves:          c.Classifier.NumLeaves,
		NumTrees:           c.Classifier.NumTrees,
		MinDocumentsInLeaf: c.Classifier.MinDocumentsInLeaf,
		LearningRate:       c.Classifier.LearningRate,
		Parallel:           c.Classifier.Parallel,
		MaxWorkers:         c.Classifier.MaxWorkers,
		Alpha:              c.Classifier.Alpha,
	}
}
