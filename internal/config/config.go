package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"exam-prep-be/pkg/quality"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Keys       APIKeys
	Ai         AIConfig
	Generation GenerationConfig
	Sweep      SweepConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	GenerationLogPath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	JwtSecret   string
	Anthropic   string
	HuggingFace string
	BatchTopic  string // watermill topic for async syllabus batches
}

type AIConfig struct {
	LLMProvider   string // "ollama", "anthropic", "huggingface"
	LLMModel      string
	OllamaBaseURL string
	// HuggingFaceBaseURL points at any OpenAI-compatible endpoint.
	HuggingFaceBaseURL string
	Language           string
	Temperature        float64
}

type GenerationConfig struct {
	Policy      quality.Policy
	MaxAttempts int
	BatchSize   int
	LockTTL     time.Duration
	TopicCap    int
	CacheTTL    time.Duration
	PolicyFile  string
	// Overrides maps an assistant id to its own policy.
	Overrides map[string]quality.Policy
}

type SweepConfig struct {
	Enabled     bool
	Interval    time.Duration
	Concurrency int
}

// PolicyFor returns the policy of one assistant, falling back to the default.
func (g GenerationConfig) PolicyFor(assistantId string) quality.Policy {
	if p, ok := g.Overrides[assistantId]; ok {
		return p
	}
	return g.Policy
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	defaults := quality.DefaultPolicy()
	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			GenerationLogPath:  getEnv("GENERATION_LOG_PATH", "logs/generation.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
			OtelEnabled:        getEnv("OTEL_ENABLED", "false") == "true",
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			JwtSecret:   getEnv("JWT_SECRET", ""),
			Anthropic:   getEnv("ANTHROPIC_API_KEY", ""),
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
			BatchTopic:  getEnv("GENERATION_BATCH_TOPIC", "GENERATE_SYLLABUS"),
		},
		Ai: AIConfig{
			LLMProvider:        getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:           getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceBaseURL: getEnv("HUGGINGFACE_BASE_URL", ""),
			Language:           getEnv("GENERATION_LANGUAGE", "Spanish"),
			Temperature:        getEnvAsFloat("LLM_TEMPERATURE", 0.8),
		},
		Generation: GenerationConfig{
			Policy: quality.Policy{
				RequiredTestCount: getEnvAsInt("REQUIRED_TEST_COUNT", defaults.RequiredTestCount),
				MinFlashcardCount: getEnvAsInt("MIN_FLASHCARD_COUNT", defaults.MinFlashcardCount),
				MinRewriteRatio:   getEnvAsFloat("MIN_REWRITE_RATIO", defaults.MinRewriteRatio),
			},
			MaxAttempts: getEnvAsInt("GENERATION_MAX_ATTEMPTS", 3),
			BatchSize:   getEnvAsInt("GENERATION_BATCH_SIZE", 25),
			LockTTL:     getEnvAsDuration("GENERATION_LOCK_TTL", 5*time.Minute),
			TopicCap:    getEnvAsInt("SYLLABUS_TOPIC_CAP", 46),
			CacheTTL:    getEnvAsDuration("CONTENT_CACHE_TTL", 10*time.Minute),
			PolicyFile:  getEnv("GENERATION_POLICY_FILE", ""),
			Overrides:   map[string]quality.Policy{},
		},
		Sweep: SweepConfig{
			Enabled:     getEnv("DEDUP_SWEEP_ENABLED", "false") == "true",
			Interval:    getEnvAsDuration("DEDUP_SWEEP_INTERVAL", time.Hour),
			Concurrency: getEnvAsInt("DEDUP_SWEEP_CONCURRENCY", 4),
		},
	}

	if cfg.Generation.PolicyFile != "" {
		if err := cfg.Generation.LoadPolicyFile(cfg.Generation.PolicyFile); err != nil {
			log.Fatalf("[FATAL] %v", err)
		}
	}
	return cfg
}

// policyFile is the YAML layout of GENERATION_POLICY_FILE. Fields left out
// keep the value already configured.
type policyFile struct {
	Default    *policyPatch            `yaml:"default"`
	Assistants map[string]*policyPatch `yaml:"assistants"`
}

type policyPatch struct {
	RequiredTestCount *int     `yaml:"required_test_count"`
	MinFlashcardCount *int     `yaml:"min_flashcard_count"`
	MinRewriteRatio   *float64 `yaml:"min_rewrite_ratio"`
}

func (p *policyPatch) apply(base quality.Policy) quality.Policy {
	if p == nil {
		return base
	}
	if p.RequiredTestCount != nil {
		base.RequiredTestCount = *p.RequiredTestCount
	}
	if p.MinFlashcardCount != nil {
		base.MinFlashcardCount = *p.MinFlashcardCount
	}
	if p.MinRewriteRatio != nil {
		base.MinRewriteRatio = *p.MinRewriteRatio
	}
	return base
}

func (g *GenerationConfig) LoadPolicyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read policy file: %w", err)
	}
	return g.ApplyPolicyYAML(raw)
}

// ApplyPolicyYAML layers a policy document over the current configuration.
// Assistant overrides start from the resulting default.
func (g *GenerationConfig) ApplyPolicyYAML(raw []byte) error {
	var doc policyFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse policy file: %w", err)
	}

	g.Policy = doc.Default.apply(g.Policy)
	if err := g.Policy.Validate(); err != nil {
		return fmt.Errorf("default policy: %w", err)
	}

	if g.Overrides == nil {
		g.Overrides = map[string]quality.Policy{}
	}
	for assistantId, patch := range doc.Assistants {
		p := patch.apply(g.Policy)
		if err := p.Validate(); err != nil {
			return fmt.Errorf("policy for assistant %s: %w", assistantId, err)
		}
		g.Overrides[assistantId] = p
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
