package dataset

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"topic-insights-go/internal/types"
)

func writeSheet(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", addr, &row))
	}
	path := filepath.Join(t.TempDir(), "conversations.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func fixture(t *testing.T) string {
	return writeSheet(t, [][]any{
		{"Client ID", "Session", "Sender", "Message text", "Created at"},
		{"acme", "s1", "user", "Ile kosztuje pakiet?", "2025-06-01 10:00:00"},
		{"acme", "s1", "bot", "Nie wiem.", "2025-06-01 10:00:05"},
		{"acme", "s2", "customer", "Czy macie API?", "2025-05-20T08:00:00Z"},
		{"acme", "s3", "user", "Godziny otwarcia?", ""},
		{"globex", "s4", "user", "Hello there friend", "2025-06-01 11:00:00"},
		{"acme", "s1", "system", "ignored role", "2025-06-01 10:00:06"},
		{"acme", "", "user", "no session", "2025-06-01 10:00:07"},
		{"acme", "s1", "user", "   ", "2025-06-01 10:00:08"},
	})
}

func TestLoad(t *testing.T) {
	rows, err := Load(fixture(t))
	require.NoError(t, err)

	require.Len(t, rows, 5)
	assert.Equal(t, Row{ClientID: "acme", Message: types.Message{
		SessionID: "s1",
		Role:      types.RoleUser,
		Text:      "Ile kosztuje pakiet?",
		Timestamp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}}, rows[0])
	assert.Equal(t, types.RoleAssistant, rows[1].Message.Role)
	assert.Equal(t, time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC), rows[2].Message.Timestamp)
	assert.True(t, rows[3].Message.Timestamp.IsZero())
}

func TestLoadRejectsUnknownLayout(t *testing.T) {
	path := writeSheet(t, [][]any{
		{"a", "b"},
		{"1", "2"},
	})
	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestSource(t *testing.T) {
	src, summary, err := Open(fixture(t))
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TotalMessages)
	assert.Equal(t, 4, summary.Sessions)
	assert.Equal(t, []string{"acme", "globex"}, summary.Clients)
	assert.Equal(t, 4, summary.UserMessages)

	ctx := context.Background()
	ids, err := src.SessionIDs(ctx, "acme", time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3"}, ids)

	ids, err = src.SessionIDs(ctx, "acme", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids)

	msgs, err := src.SessionMessages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Nie wiem.", msgs[1].Text)

	msgs, err = src.SessionMessages(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
