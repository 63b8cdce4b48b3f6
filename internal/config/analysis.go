package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AnalysisConfig tunes the credibility analyzer without a redeploy.
type AnalysisConfig struct {
	Model          string  `mapstructure:"model"`
	Temperature    float64 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeoutSeconds"`
	SystemPrompt   string  `mapstructure:"systemPrompt"`
}

func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Model:          "gpt-4o-mini",
		Temperature:    0.3,
		TimeoutSeconds: 30,
		SystemPrompt: "You are a media literacy expert who evaluates the credibility of news sources " +
			"and online content. Provide objective, balanced assessments.",
	}
}

// AnalysisConfigHolder serves the current analyzer settings and hot-reloads
// them when the config file changes on disk.
type AnalysisConfigHolder struct {
	current atomic.Value // holds AnalysisConfig
}

func NewAnalysisConfigHolder() (*AnalysisConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("analysis")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/tamedachi/config")
	v.AddConfigPath("/etc/tamedachi")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TAMEDACHI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultAnalysisConfig()
		v.SetDefault("analysis.model", defaults.Model)
		v.SetDefault("analysis.temperature", defaults.Temperature)
		v.SetDefault("analysis.timeoutSeconds", defaults.TimeoutSeconds)
		v.SetDefault("analysis.systemPrompt", defaults.SystemPrompt)
	}

	var cfg AnalysisConfig
	if err := v.UnmarshalKey("analysis", &cfg); err != nil {
		return nil, err
	}
	if err := validateAnalysisConfig(cfg); err != nil {
		return nil, err
	}

	holder := &AnalysisConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated AnalysisConfig
		if err := v.UnmarshalKey("analysis", &updated); err != nil {
			log.Printf("[analysis-config] reload failed: %v", err)
			return
		}
		if err := validateAnalysisConfig(updated); err != nil {
			log.Printf("[analysis-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[analysis-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *AnalysisConfigHolder) Get() AnalysisConfig {
	return h.current.Load().(AnalysisConfig)
}

func validateAnalysisConfig(cfg AnalysisConfig) error {
	if strings.TrimSpace(cfg.Model) == "" {
		return errors.New("analysis.model cannot be empty")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return errors.New("analysis.temperature must be in [0,2]")
	}
	if cfg.TimeoutSeconds <= 0 {
		return errors.New("analysis.timeoutSeconds must be positive")
	}
	return nil
}
