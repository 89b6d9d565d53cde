package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"topic-insights-go/internal/actionable"
	"topic-insights-go/internal/api"
	"topic-insights-go/internal/cache"
	"topic-insights-go/internal/config"
	"topic-insights-go/internal/conversations"
	"topic-insights-go/internal/dataset"
	"topic-insights-go/internal/extractor"
	"topic-insights-go/internal/logger"
	"topic-insights-go/internal/pipeline"
	"topic-insights-go/internal/store/memstore"
	"topic-insights-go/internal/store/mongostore"
	"topic-insights-go/internal/store/sqlstore"
)

// backend is what every store implementation offers.
type backend interface {
	pipeline.TopicStore
	pipeline.ConversationSource
	api.MessageWriter
}

type app struct {
	deps     pipeline.Deps
	store    pipeline.TopicStore
	messages api.MessageWriter
	closers  []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func build(ctx context.Context, cfg config.Config, log *logger.Logger) (*app, error) {
	a := &app{}

	st, err := openStore(ctx, cfg, log, a)
	if err != nil {
		return nil, err
	}
	a.store, a.messages = st, st

	src, err := openSource(cfg, st, log)
	if err != nil {
		a.close()
		return nil, err
	}

	lex, err := config.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		a.close()
		return nil, err
	}
	filt, intents, detector := lex.Build()

	clusterer, insighter, err := llmCollaborators(cfg, log)
	if err != nil {
		a.close()
		return nil, err
	}
	insightCache := openCache(cfg, log, a)

	a.deps = pipeline.Deps{
		Source:    src,
		Store:     st,
		Clusterer: clusterer,
		Insights:  actionable.NewGenerator(insighter, insightCache, cfg.InsightCacheTTL, log),
		Filter:    filt,
		Intents:   intents,
		Gaps:      detector,
		Log:       log,
	}
	return a, nil
}

func openStore(ctx context.Context, cfg config.Config, log *logger.Logger, a *app) (backend, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		s, err := sqlstore.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		log.WithField("path", cfg.SQLitePath).Info("using sqlite store")
		return s, nil
	case "mongo":
		client, s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })
		log.WithField("db", cfg.MongoDB).Info("using mongo store")
		return s, nil
	default:
		log.Info("using in-memory store")
		return memstore.New(), nil
	}
}

func openSource(cfg config.Config, st backend, log *logger.Logger) (pipeline.ConversationSource, error) {
	switch cfg.ConversationSource {
	case "http":
		log.WithField("url", cfg.ConversationsAPIURL).Info("reading conversations from api")
		return conversations.New(cfg.ConversationsAPIURL, cfg.ConversationsAPIKey, log), nil
	case "xlsx":
		src, summary, err := dataset.Open(cfg.DatasetPath)
		if err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		log.WithField("dataset_path", cfg.DatasetPath).
			WithField("messages", summary.TotalMessages).
			WithField("sessions", summary.Sessions).
			Info("dataset loaded")
		return src, nil
	default:
		return st, nil
	}
}

// llmCollaborators returns the keyword mock only when USE_MOCK_LLM is set. A
// missing gateway is a startup error so runs never persist mock topics.
func llmCollaborators(cfg config.Config, log *logger.Logger) (pipeline.Clusterer, actionable.Insighter, error) {
	if cfg.LLM.UseMock {
		log.Warn("USE_MOCK_LLM set, using keyword clusterer")
		return extractor.MockClusterer{}, extractor.MockInsight{}, nil
	}
	client, err := extractor.NewClient(extractor.ClientConfig{
		BaseURL:      cfg.LLM.GatewayURL,
		APIKey:       cfg.LLM.APIKey,
		Model:        cfg.LLM.Model,
		MaxRetryTime: cfg.LLM.RetryTime,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("llm gateway: %w (set LLM_GATEWAY_URL and LLM_API_KEY, or USE_MOCK_LLM=true)", err)
	}
	return extractor.NewClusterer(client, log), extractor.NewInsightGenerator(client, log), nil
}

func openCache(cfg config.Config, log *logger.Logger, a *app) cache.Store {
	if cfg.CacheBackend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, func() { _ = client.Close() })
		log.WithField("addr", cfg.RedisAddr).Info("using redis insight cache")
		return cache.NewRedis(client)
	}
	return cache.NewLocal(cfg.InsightCacheTTL)
}
