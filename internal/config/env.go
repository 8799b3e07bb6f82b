package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyConfig        = "config"
	KeyDebug         = "debug"
	KeyLLMProvider   = "llm.provider"
	KeyOpenAIKey     = "llm.api_key"
	KeyOpenAIBaseURL = "llm.base_url"
	KeyOpenAIModel   = "llm.model"
	KeyAnthropicKey  = "llm.anthropic_api_key"
	KeyLogLevel      = "log.level"
	KeyServerAddress = "server.address"
	KeyRedisAddr     = "redis.addr"
	KeyRedisPassword = "redis.password"
	KeyScheduleSync  = "schedule.sync"
)

const DefaultConfigPath = "config.yaml"

var envBindings = map[string][]string{
	KeyLLMProvider:   {"LLM_PROVIDER"},
	KeyOpenAIKey:     {"OPENAI_API_KEY"},
	KeyOpenAIBaseURL: {"OPENAI_BASE_URL"},
	KeyOpenAIModel:   {"OPENAI_MODEL"},
	KeyAnthropicKey:  {"ANTHROPIC_API_KEY"},
	KeyLogLevel:      {"LOG_LEVEL"},
	KeyServerAddress: {"SERVER_ADDRESS"},
	KeyRedisAddr:     {"REDIS_ADDR"},
	KeyRedisPassword: {"REDIS_PASSWORD"},
	KeyScheduleSync:  {"SYNC_SCHEDULE"},
}

// BindEnv maps the supported environment variables onto v.
func BindEnv(v *viper.Viper) error {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", strings.Join(envs, ", "), err)
		}
	}
	return nil
}

// ApplyOverrides copies values set in v (env or flags) over the file config.
func (c *Config) ApplyOverrides(v *viper.Viper) {
	overrideString(v, KeyLLMProvider, &c.LLM.Provider)
	overrideString(v, KeyOpenAIKey, &c.LLM.APIKey)
	overrideString(v, KeyOpenAIBaseURL, &c.LLM.BaseURL)
	overrideString(v, KeyOpenAIModel, &c.LLM.Model)
	overrideString(v, KeyAnthropicKey, &c.LLM.AnthropicAPIKey)
	overrideString(v, KeyLogLevel, &c.Log.Level)
	overrideString(v, KeyServerAddress, &c.Server.Address)
	overrideString(v, KeyRedisAddr, &c.Redis.Addr)
	overrideString(v, KeyRedisPassword, &c.Redis.Password)
	overrideString(v, KeyScheduleSync, &c.Schedule.Sync)

	if v.GetBool(KeyDebug) {
		c.Log.Level = "debug"
		c.Log.Development = true
	}
}

func overrideString(v *viper.Viper, key string, dst *string) {
	if s := v.GetString(key); s != "" {
		*dst = s
	}
}

// Load reads the YAML file named by v (or DefaultConfigPath) and overlays v.
func Load(v *viper.Viper) (*Config, error) {
	path := v.GetString(KeyConfig)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.ApplyOverrides(v)
	return cfg, nil
}
