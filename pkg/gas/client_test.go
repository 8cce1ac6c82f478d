package gas

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tg-notes-bot/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path string
	Body map[string]interface{}
}

func newTestServer(t *testing.T, reply string, status int) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(raw, &body)
		captured = append(captured, capturedRequest{Path: r.URL.Path, Body: body})

		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestUpsertNoteSendsRecord(t *testing.T) {
	srv, captured := newTestServer(t, `{"ok":true}`, http.StatusOK)
	client := NewClient(srv.URL+"/", "deploy-1", time.Second, logger.NewNopLogger())

	resp := client.UpsertNote(context.Background(), "SergeyAY", Record{
		ID:       "101",
		When:     "2025-03-01 15:00:00",
		What:     "walked home",
		Emotions: []string{"joy"},
		Tags:     []string{},
	})

	assert.True(t, resp.OK)
	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, "/deploy-1/exec", req.Path)
	assert.Equal(t, "upsert_note", req.Body["action"])
	assert.Equal(t, "SergeyAY", req.Body["user"])

	record := req.Body["record"].(map[string]interface{})
	assert.Equal(t, "101", record["id"])
	assert.Equal(t, "walked home", record["what"])
	assert.Equal(t, []interface{}{"joy"}, record["emotions"])
	assert.Equal(t, []interface{}{}, record["tags"])
}

func TestExists(t *testing.T) {
	tests := []struct {
		name   string
		reply  string
		status int
		want   bool
	}{
		{"row exists", `{"ok":true,"exists":true}`, http.StatusOK, true},
		{"row missing", `{"ok":true,"exists":false}`, http.StatusOK, false},
		{"script error", `{"ok":false,"error":"Unknown user: x"}`, http.StatusOK, false},
		{"http error", `oops`, http.StatusInternalServerError, false},
		{"not json", `<html></html>`, http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, captured := newTestServer(t, tt.reply, tt.status)
			client := NewClient(srv.URL, "d", time.Second, logger.NewNopLogger())

			assert.Equal(t, tt.want, client.Exists(context.Background(), "u", 77))
			require.Len(t, *captured, 1)
			assert.Equal(t, "exists", (*captured)[0].Body["action"])
			assert.Equal(t, "77", (*captured)[0].Body["id"])
		})
	}
}

func TestAddTracksDropsIncompleteItems(t *testing.T) {
	srv, captured := newTestServer(t, `{"ok":true,"added":1}`, http.StatusOK)
	client := NewClient(srv.URL, "d", time.Second, logger.NewNopLogger())

	resp := client.AddTracks(context.Background(), "u", 5, []TrackItem{
		{Link: " https://music.yandex.ru/track/1 ", Text: " Artist - Song "},
		{Link: "", Text: "no link"},
		{Link: "https://music.yandex.ru/track/2", Text: "  "},
	})

	assert.True(t, resp.OK)
	assert.Equal(t, 1, resp.Added)

	items := (*captured)[0].Body["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "https://music.yandex.ru/track/1", item["link"])
	assert.Equal(t, "Artist - Song", item["text"])
}

func TestTransportFailureIsSoft(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "d", 200*time.Millisecond, logger.NewNopLogger())

	resp := client.UpsertNote(context.Background(), "u", Record{ID: "1"})

	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
}
