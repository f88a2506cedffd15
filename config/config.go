// Package config loads process-wide settings for the pipeline from
// environment variables, with an optional YAML file for the one setting
// that benefits from structured override: the graph's edge-type vocabulary.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

// LLMProvider selects which backend the llm package talks to.
type LLMProvider string

const (
	LLMProviderAnthropic LLMProvider = "anthropic"
	LLMProviderOpenAI    LLMProvider = "openai"
)

// Config holds everything main needs to wire the pipeline together.
type Config struct {
	LLMProvider      LLMProvider
	AnthropicAPIKey  string
	AnthropicModel   string
	OpenAIAPIKey     string
	OpenAIModel      string
	TavilyAPIKey     string
	RedisAddr        string
	PlanTimeout      time.Duration
	EdgeVocabulary   []schemas.EdgeType
}

const (
	defaultAnthropicModel = "claude-3-5-haiku-latest"
	defaultOpenAIModel    = "gpt-4o-mini"
)

// Load reads settings from the environment. Every field has a usable
// default except the API keys, whose absence only matters to actions that
// actually need them (a fully local, LLM-free run works with none set).
func Load() Config {
	cfg := Config{
		LLMProvider:     LLMProvider(getEnv("PIPELINE_LLM_PROVIDER", string(LLMProviderAnthropic))),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", defaultAnthropicModel),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getEnv("OPENAI_MODEL", defaultOpenAIModel),
		TavilyAPIKey:    os.Getenv("TAVILY_API_KEY"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		PlanTimeout:     getEnvDuration("PIPELINE_PLAN_TIMEOUT_SECONDS", 30*time.Second),
	}

	if path := os.Getenv("PIPELINE_EDGE_VOCABULARY_FILE"); path != "" {
		vocab, err := LoadEdgeVocabulary(path)
		if err == nil {
			cfg.EdgeVocabulary = vocab
		}
	}
	if cfg.EdgeVocabulary == nil {
		cfg.EdgeVocabulary = defaultEdgeVocabulary
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	seconds, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return time.Duration(seconds * float64(time.Second))
}

var defaultEdgeVocabulary = []schemas.EdgeType{
	schemas.EdgeAboutTopic,
	schemas.EdgeStudiedWhile,
	schemas.EdgeListenedTo,
	schemas.EdgeWatched,
	schemas.EdgeUsedApp,
	schemas.EdgeVisitedDomain,
	schemas.EdgeCoOccurredWith,
	schemas.EdgeDocReference,
}

// edgeVocabularyFile is the on-disk shape LoadEdgeVocabulary parses.
type edgeVocabularyFile struct {
	EdgeTypes []string `yaml:"edge_types"`
}

// LoadEdgeVocabulary reads a list of edge types from a YAML file's
// edge_types key. Load stores the result in Config.EdgeVocabulary in place of
// the built-in list; nothing else in the module reads that field, so it does
// not change which edge types the graph store or the actions accept.
func LoadEdgeVocabulary(path string) ([]schemas.EdgeType, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading edge vocabulary file: %w", err)
	}
	var doc edgeVocabularyFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing edge vocabulary file: %w", err)
	}
	out := make([]schemas.EdgeType, 0, len(doc.EdgeTypes))
	for _, t := range doc.EdgeTypes {
		out = append(out, schemas.EdgeType(t))
	}
	return out, nil
}
