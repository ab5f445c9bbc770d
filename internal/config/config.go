package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DataConfig locates the embeddings and the corpus and fixes how texts
// are encoded and partitioned.
type DataConfig struct {
	GlovePath      string `yaml:"glove_path"`
	CorpusDir      string `yaml:"corpus_dir"`
	EmbeddingDim   int    `yaml:"embedding_dim"`
	MaxVocab       int    `yaml:"max_vocab"`
	MaxSeqLen      int    `yaml:"max_seq_len"`
	TestSize       int    `yaml:"test_size"`
	ValidationSize int    `yaml:"validation_size"`
	Seed           uint64 `yaml:"seed"`
}

// ModelConfig fixes the network topology.
type ModelConfig struct {
	Channels   int `yaml:"channels"`
	KernelSize int `yaml:"kernel_size"`
	PoolSize   int `yaml:"pool_size"`
	HiddenSize int `yaml:"hidden_size"`
}

// TrainingConfig controls the optimization loop.
type TrainingConfig struct {
	BatchSize    int     `yaml:"batch_size"`
	Epochs       int     `yaml:"epochs"`
	LearningRate float64 `yaml:"learning_rate"`
	LogInterval  int     `yaml:"log_interval"`
}

// ExperimentConfig controls the per-run metrics directory. Recording is
// on unless disabled, and failures to create the directory only disable
// it for the run.
type ExperimentConfig struct {
	Disabled bool   `yaml:"disabled"`
	LogDir   string `yaml:"log_dir"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Data       DataConfig       `yaml:"data"`
	Model      ModelConfig      `yaml:"model"`
	Training   TrainingConfig   `yaml:"training"`
	Experiment ExperimentConfig `yaml:"experiment"`
	LogLevel   string           `yaml:"log_level"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/textcnn/config.yaml.
// If neither exists, it writes defaults to ~/.config/textcnn/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects values the pipeline cannot run with.
func (cfg *AppConfig) Validate() error {
	d := cfg.Data
	switch {
	case d.EmbeddingDim <= 0:
		return fmt.Errorf("config: embedding_dim must be positive, got %d", d.EmbeddingDim)
	case d.MaxVocab <= 1:
		return fmt.Errorf("config: max_vocab must be at least 2, got %d", d.MaxVocab)
	case d.MaxSeqLen <= 0:
		return fmt.Errorf("config: max_seq_len must be positive, got %d", d.MaxSeqLen)
	case d.TestSize < 0 || d.ValidationSize < 0:
		return fmt.Errorf("config: split sizes must not be negative, got test=%d validation=%d", d.TestSize, d.ValidationSize)
	}
	m := cfg.Model
	if m.Channels <= 0 || m.KernelSize <= 0 || m.PoolSize <= 0 || m.HiddenSize <= 0 {
		return fmt.Errorf("config: model sizes must be positive, got channels=%d kernel=%d pool=%d hidden=%d",
			m.Channels, m.KernelSize, m.PoolSize, m.HiddenSize)
	}
	t := cfg.Training
	switch {
	case t.BatchSize <= 0:
		return fmt.Errorf("config: batch_size must be positive, got %d", t.BatchSize)
	case t.Epochs < 0:
		return fmt.Errorf("config: epochs must not be negative, got %d", t.Epochs)
	case t.LearningRate <= 0:
		return fmt.Errorf("config: learning_rate must be positive, got %g", t.LearningRate)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "textcnn", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Data: DataConfig{
			GlovePath:      filepath.Join("data", "glove.6B.100d.txt"),
			CorpusDir:      filepath.Join("data", "20_newsgroup"),
			EmbeddingDim:   100,
			MaxVocab:       10000,
			MaxSeqLen:      1000,
			TestSize:       4000,
			ValidationSize: 1000,
			Seed:           42,
		},
		Model: ModelConfig{
			Channels:   128,
			KernelSize: 5,
			PoolSize:   5,
			HiddenSize: 128,
		},
		Training: TrainingConfig{
			BatchSize:    128,
			Epochs:       20,
			LearningRate: 0.005,
			LogInterval:  200,
		},
		Experiment: ExperimentConfig{LogDir: "logs"},
		LogLevel:   "info",
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Data.GlovePath == "" {
		cfg.Data.GlovePath = def.Data.GlovePath
	}
	if cfg.Data.CorpusDir == "" {
		cfg.Data.CorpusDir = def.Data.CorpusDir
	}
	if cfg.Data.EmbeddingDim == 0 {
		cfg.Data.EmbeddingDim = def.Data.EmbeddingDim
	}
	if cfg.Data.MaxVocab == 0 {
		cfg.Data.MaxVocab = def.Data.MaxVocab
	}
	if cfg.Data.MaxSeqLen == 0 {
		cfg.Data.MaxSeqLen = def.Data.MaxSeqLen
	}
	if cfg.Data.TestSize == 0 {
		cfg.Data.TestSize = def.Data.TestSize
	}
	if cfg.Data.ValidationSize == 0 {
		cfg.Data.ValidationSize = def.Data.ValidationSize
	}
	if cfg.Data.Seed == 0 {
		cfg.Data.Seed = def.Data.Seed
	}
	if cfg.Model.Channels == 0 {
		cfg.Model.Channels = def.Model.Channels
	}
	if cfg.Model.KernelSize == 0 {
		cfg.Model.KernelSize = def.Model.KernelSize
	}
	if cfg.Model.PoolSize == 0 {
		cfg.Model.PoolSize = def.Model.PoolSize
	}
	if cfg.Model.HiddenSize == 0 {
		cfg.Model.HiddenSize = def.Model.HiddenSize
	}
	if cfg.Training.BatchSize == 0 {
		cfg.Training.BatchSize = def.Training.BatchSize
	}
	if cfg.Training.Epochs == 0 {
		cfg.Training.Epochs = def.Training.Epochs
	}
	if cfg.Training.LearningRate == 0 {
		cfg.Training.LearningRate = def.Training.LearningRate
	}
	if cfg.Training.LogInterval == 0 {
		cfg.Training.LogInterval = def.Training.LogInterval
	}
	if cfg.Experiment.LogDir == "" {
		cfg.Experiment.LogDir = def.Experiment.LogDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
}

// applyEnvOverrides lets the environment (or a .env file loaded at
// startup) relocate the big on-disk inputs without editing the config.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("TEXTCNN_GLOVE"); v != "" {
		cfg.Data.GlovePath = v
	}
	if v := os.Getenv("TEXTCNN_CORPUS"); v != "" {
		cfg.Data.CorpusDir = v
	}
	if v := os.Getenv("TEXTCNN_LOGDIR"); v != "" {
		cfg.Experiment.LogDir = v
	}
}
