package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topic-insights-go/internal/config"
	"topic-insights-go/internal/extractor"
	"topic-insights-go/internal/logger"
	"topic-insights-go/internal/store/memstore"
)

func TestLLMCollaborators(t *testing.T) {
	tests := []struct {
		name    string
		llm     config.LLM
		wantErr bool
		mock    bool
	}{
		{name: "unconfigured", llm: config.LLM{}, wantErr: true},
		{name: "missing key", llm: config.LLM{GatewayURL: "http://gateway/v1"}, wantErr: true},
		{name: "mock requested", llm: config.LLM{UseMock: true}, mock: true},
		{name: "gateway", llm: config.LLM{GatewayURL: "http://gateway/v1", APIKey: "k", Model: "m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clusterer, insighter, err := llmCollaborators(config.Config{LLM: tt.llm}, logger.Discard())
			if tt.wantErr {
				assert.ErrorIs(t, err, extractor.ErrNotConfigured)
				assert.Nil(t, clusterer)
				assert.Nil(t, insighter)
				return
			}
			require.NoError(t, err)
			if tt.mock {
				assert.IsType(t, extractor.MockClusterer{}, clusterer)
				assert.IsType(t, extractor.MockInsight{}, insighter)
				return
			}
			assert.IsType(t, &extractor.Clusterer{}, clusterer)
			assert.IsType(t, &extractor.InsightGenerator{}, insighter)
		})
	}
}

func TestBuildFailsWithoutLLMGateway(t *testing.T) {
	a, err := build(context.Background(), config.Config{}, logger.Discard())
	assert.ErrorIs(t, err, extractor.ErrNotConfigured)
	assert.Nil(t, a)
}

func TestBuildWithMockLLM(t *testing.T) {
	a, err := build(context.Background(), config.Config{LLM: config.LLM{UseMock: true}}, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(a.close)

	assert.IsType(t, &memstore.Store{}, a.store)
	assert.IsType(t, extractor.MockClusterer{}, a.deps.Clusterer)
	assert.NotNil(t, a.deps.Insights)
}
