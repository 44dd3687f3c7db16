package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Face-swap provider names accepted by faceswap.provider.
const (
	ProviderSegmind   = "segmind"
	ProviderReplicate = "replicate"
	ProviderRemaker   = "remaker"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Fal       FalConfig
	FaceSwap  FaceSwapConfig
	Segmind   SegmindConfig
	Replicate ReplicateConfig
	Remaker   RemakerConfig
	Pipeline  PipelineConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	LogLevel    string
	BodyLimitMB int
}

type FalConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	UseReferenceImage bool
}

type FaceSwapConfig struct {
	Provider string
}

type SegmindConfig struct {
	APIKey     string
	BaseURL    string
	WorkflowID string
}

type ReplicateConfig struct {
	APIKey  string
	BaseURL string
	Version string
}

type RemakerConfig struct {
	APIKey  string
	BaseURL string
}

type PipelineConfig struct {
	// RequirePhoto rejects poster requests without at least one reference photo.
	RequirePhoto bool
}

func Load() (*Config, error) {
	// Local development env files, .env.local before .env. Variables already set win.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("FAL_KEY")
	readSecret("SEGMIND_API_KEY")
	readSecret("REPLICATE_API_TOKEN")
	readSecret("REMAKER_API_KEY")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables
	v.AutomaticEnv()

	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.env", "SERVER_ENV")
	_ = v.BindEnv("server.log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.body_limit_mb", "BODY_LIMIT_MB")
	_ = v.BindEnv("fal.api_key", "FAL_KEY")
	_ = v.BindEnv("fal.base_url", "FAL_BASE_URL")
	_ = v.BindEnv("fal.model", "FAL_MODEL")
	_ = v.BindEnv("fal.use_reference_image", "FAL_USE_REFERENCE_IMAGE")
	_ = v.BindEnv("faceswap.provider", "FACESWAP_PROVIDER")
	_ = v.BindEnv("segmind.api_key", "SEGMIND_API_KEY")
	_ = v.BindEnv("segmind.base_url", "SEGMIND_BASE_URL")
	_ = v.BindEnv("segmind.workflow_id", "SEGMIND_WORKFLOW_ID")
	_ = v.BindEnv("replicate.api_key", "REPLICATE_API_TOKEN")
	_ = v.BindEnv("replicate.base_url", "REPLICATE_BASE_URL")
	_ = v.BindEnv("replicate.version", "REPLICATE_FACESWAP_VERSION")
	_ = v.BindEnv("remaker.api_key", "REMAKER_API_KEY")
	_ = v.BindEnv("remaker.base_url", "REMAKER_BASE_URL")
	_ = v.BindEnv("pipeline.require_photo", "REQUIRE_PHOTO")

	// Defaults
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.body_limit_mb", 20)

	v.SetDefault("fal.base_url", "https://queue.fal.run")
	v.SetDefault("fal.model", "fal-ai/flux-pro")
	v.SetDefault("fal.use_reference_image", false)

	v.SetDefault("faceswap.provider", ProviderSegmind)

	v.SetDefault("segmind.base_url", "https://api.segmind.com")
	v.SetDefault("segmind.workflow_id", "6759c2ad2de40ed56063a1f8-v1")

	v.SetDefault("replicate.base_url", "https://api.replicate.com")
	v.SetDefault("replicate.version", "cdingram/face-swap:d1d6ea8c8be89d664a07a457526f7128109dee7030fdac424788d762c71ed111")

	v.SetDefault("remaker.base_url", "https://developer.remaker.ai/api/pai/v4")

	v.SetDefault("pipeline.require_photo", false)

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetString("server.port"),
			Env:         v.GetString("server.env"),
			LogLevel:    v.GetString("server.log_level"),
			BodyLimitMB: v.GetInt("server.body_limit_mb"),
		},
		Fal: FalConfig{
			APIKey:            v.GetString("fal.api_key"),
			BaseURL:           strings.TrimRight(v.GetString("fal.base_url"), "/"),
			Model:             strings.Trim(v.GetString("fal.model"), "/"),
			UseReferenceImage: v.GetBool("fal.use_reference_image"),
		},
		FaceSwap: FaceSwapConfig{
			Provider: strings.ToLower(strings.TrimSpace(v.GetString("faceswap.provider"))),
		},
		Segmind: SegmindConfig{
			APIKey:     v.GetString("segmind.api_key"),
			BaseURL:    strings.TrimRight(v.GetString("segmind.base_url"), "/"),
			WorkflowID: v.GetString("segmind.workflow_id"),
		},
		Replicate: ReplicateConfig{
			APIKey:  v.GetString("replicate.api_key"),
			BaseURL: strings.TrimRight(v.GetString("replicate.base_url"), "/"),
			Version: v.GetString("replicate.version"),
		},
		Remaker: RemakerConfig{
			APIKey:  v.GetString("remaker.api_key"),
			BaseURL: strings.TrimRight(v.GetString("remaker.base_url"), "/"),
		},
		Pipeline: PipelineConfig{
			RequirePhoto: v.GetBool("pipeline.require_photo"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be defaulted away.
func (c *Config) Validate() error {
	switch c.FaceSwap.Provider {
	case ProviderSegmind, ProviderReplicate, ProviderRemaker:
	default:
		return fmt.Errorf("unknown face-swap provider %q", c.FaceSwap.Provider)
	}
	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("body limit must be positive, got %d", c.Server.BodyLimitMB)
	}
	return nil
}
