package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/index"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "secret"})
	require.NoError(t, err)
	return client
}

func TestUpsert_Success(t *testing.T) {
	var gotPath, gotKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")

		var req upsertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := upsertResponse{}
		for _, doc := range req.Documents {
			resp.Results = append(resp.Results, struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Error  string `json:"error,omitempty"`
			}{ID: doc.ID, Status: "ok"})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	records := []index.Record{
		{ID: "a-0-0", Content: "first", SourcePage: "a.txt", Vector: []float32{0.1, 0.2}},
		{ID: "a-0-1", Content: "second", SourcePage: "a.txt"},
	}
	written, err := client.Upsert(context.Background(), "kbindex", records)
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.Equal(t, "/v1/indexes/kbindex/documents", gotPath)
	assert.Equal(t, "secret", gotKey)
}

func TestUpsert_PartialWrite(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[
			{"id":"a-0-0","status":"ok"},
			{"id":"a-0-1","status":"failed","error":"document too large"},
			{"id":"a-0-2","status":"ok"}
		]}`))
	})

	records := []index.Record{
		{ID: "a-0-0", Content: "x"},
		{ID: "a-0-1", Content: "y"},
		{ID: "a-0-2", Content: "z"},
	}
	written, err := client.Upsert(context.Background(), "kbindex", records)
	assert.Equal(t, 2, written)

	var partial *index.PartialWriteError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 2, partial.Written)
	assert.Equal(t, []string{"a-0-1"}, partial.FailedIDs)
}

func TestUpsert_ServerErrorIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := client.Upsert(context.Background(), "kbindex", []index.Record{{ID: "a", Content: "x"}})
	require.Error(t, err)
	assert.True(t, core.IsTransient(err))
}

func TestUpsert_BadRequestNotTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "malformed document", http.StatusBadRequest)
	})

	_, err := client.Upsert(context.Background(), "kbindex", []index.Record{{ID: "a", Content: "x"}})
	require.Error(t, err)
	assert.False(t, core.IsTransient(err))
}

func TestQuery_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/indexes/kbindex/search", r.URL.Path)

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hybrid", req.Mode)
		assert.Equal(t, 5, req.Top)

		_, _ = w.Write([]byte(`{"results":[
			{"id":"a-0-0","content":"matching text","source_page":"a.pdf#page=1","score":2.4},
			{"id":"b-0-0","content":"weaker match","source_page":"b.txt","score":1.1}
		]}`))
	})

	hits, err := client.Query(context.Background(), "kbindex", "matching", 5, index.RankingHybrid)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a.pdf#page=1", hits[0].SourcePage)
	assert.Equal(t, 2.4, hits[0].Score)
}

func TestQuery_RankingUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "semantic ranking not provisioned", http.StatusNotImplemented)
	})

	_, err := client.Query(context.Background(), "kbindex", "q", 10, index.RankingHybrid)
	assert.ErrorIs(t, err, index.ErrRankingUnavailable)
}

func TestQuery_ConnectionErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(nil)
	server.Close()
	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Query(context.Background(), "kbindex", "q", 10, index.RankingLexical)
	require.Error(t, err)
	assert.True(t, core.IsTransient(err))
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestUpsert_EmptyRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty records")
	})

	written, err := client.Upsert(context.Background(), "kbindex", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, written)
}

func TestValidationErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.Upsert(context.Background(), "", []index.Record{{ID: "a"}})
	assert.ErrorIs(t, err, index.ErrIndexNameRequired)

	_, err = client.Query(context.Background(), "kbindex", "", 10, index.RankingLexical)
	assert.ErrorIs(t, err, index.ErrQueryRequired)
}
