// Package config reads the service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

type LLM struct {
	GatewayURL string
	APIKey     string
	Model      string
	UseMock    bool
	RetryTime  time.Duration
}

type Config struct {
	Port      string
	ClientIDs []string

	AnalysisHours  int
	MaxSessions    int
	MaxTopics      int
	ClusterTimeout time.Duration
	InsightTimeout time.Duration

	LLM LLM

	StoreBackend string // memory | sqlite | mongo
	SQLitePath   string
	MongoURI     string
	MongoDB      string

	ConversationSource  string // store | http | xlsx
	ConversationsAPIURL string
	ConversationsAPIKey string
	DatasetPath         string

	CacheBackend    string // local | redis
	RedisAddr       string
	InsightCacheTTL time.Duration

	ScheduleEnabled bool
	DailyCron       string
	WeeklyCron      string

	LexiconPath string
}

// Load builds a Config from the environment, applying defaults for every
// unset key.
func Load() (Config, error) {
	var err error
	num := func(key string, def int) int {
		if err != nil {
			return def
		}
		n, convErr := cast.ToIntE(envOr(key, cast.ToString(def)))
		if convErr != nil {
			err = fmt.Errorf("%s: %w", key, convErr)
			return def
		}
		return n
	}

	cfg := Config{
		Port:      envOr("PORT", "8080"),
		ClientIDs: splitList(os.Getenv("CLIENT_IDS")),

		AnalysisHours:  num("ANALYSIS_HOURS", 24),
		MaxSessions:    num("MAX_SESSIONS", 100),
		MaxTopics:      num("MAX_TOPICS", 15),
		ClusterTimeout: time.Duration(num("CLUSTER_TIMEOUT_SEC", 60)) * time.Second,
		InsightTimeout: time.Duration(num("INSIGHT_TIMEOUT_SEC", 30)) * time.Second,

		LLM: LLM{
			GatewayURL: os.Getenv("LLM_GATEWAY_URL"),
			APIKey:     os.Getenv("LLM_API_KEY"),
			Model:      envOr("LLM_MODEL", "gpt-4o-mini"),
			UseMock:    cast.ToBool(os.Getenv("USE_MOCK_LLM")),
			RetryTime:  time.Duration(num("LLM_RETRY_SEC", 20)) * time.Second,
		},

		StoreBackend: strings.ToLower(envOr("STORE_BACKEND", "memory")),
		SQLitePath:   envOr("SQLITE_PATH", "topic-insights.db"),
		MongoURI:     envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      envOr("MONGO_DB", "topic_insights"),

		ConversationSource:  strings.ToLower(envOr("CONVERSATION_SOURCE", "store")),
		ConversationsAPIURL: os.Getenv("CONVERSATIONS_API_URL"),
		ConversationsAPIKey: os.Getenv("CONVERSATIONS_API_KEY"),
		DatasetPath:         os.Getenv("DATASET_PATH"),

		CacheBackend:    strings.ToLower(envOr("CACHE_BACKEND", "local")),
		RedisAddr:       envOr("REDIS_ADDR", "localhost:6379"),
		InsightCacheTTL: time.Duration(num("INSIGHT_CACHE_TTL_MIN", 360)) * time.Minute,

		ScheduleEnabled: cast.ToBool(os.Getenv("SCHEDULE_ENABLED")),
		DailyCron:       envOr("DAILY_CRON", "0 2 * * *"),
		WeeklyCron:      envOr("WEEKLY_CRON", "0 3 * * 0"),

		LexiconPath: os.Getenv("LEXICON_PATH"),
	}
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if err := oneOf("STORE_BACKEND", c.StoreBackend, "memory", "sqlite", "mongo"); err != nil {
		return err
	}
	if err := oneOf("CONVERSATION_SOURCE", c.ConversationSource, "store", "http", "xlsx"); err != nil {
		return err
	}
	if err := oneOf("CACHE_BACKEND", c.CacheBackend, "local", "redis"); err != nil {
		return err
	}
	switch {
	case c.ConversationSource == "http" && c.ConversationsAPIURL == "":
		return fmt.Errorf("CONVERSATIONS_API_URL is required when CONVERSATION_SOURCE=http")
	case c.ConversationSource == "xlsx" && c.DatasetPath == "":
		return fmt.Errorf("DATASET_PATH is required when CONVERSATION_SOURCE=xlsx")
	case c.AnalysisHours <= 0:
		return fmt.Errorf("ANALYSIS_HOURS must be positive, got %d", c.AnalysisHours)
	}
	return nil
}

func oneOf(key, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s: unsupported value %q (want one of %s)", key, v, strings.Join(allowed, ", "))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
