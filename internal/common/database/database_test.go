package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reco-workers/internal/common/config"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisClient) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestRedisClient_JSONRoundTrip(t *testing.T) {
	mr, rc := setupMiniRedis(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	var got payload
	assert.ErrorIs(t, rc.GetJSON(ctx, "missing", &got), ErrCacheMiss)

	require.NoError(t, rc.SetJSON(ctx, "k", payload{Name: "국밥집"}, time.Minute))
	require.NoError(t, rc.GetJSON(ctx, "k", &got))
	assert.Equal(t, "국밥집", got.Name)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	require.NoError(t, rc.Del(ctx, "k"))
	assert.False(t, mr.Exists("k"))
	assert.NoError(t, rc.Ping(ctx))
}

func TestPostgresClient_WithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	pg := NewPostgresFromDB(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = pg.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO t VALUES (1)")
		return err
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	err = pg.WithTx(context.Background(), func(tx *sql.Tx) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElasticsearchClient_IndexDocument(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	defer server.Close()

	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{server.URL}})
	require.NoError(t, err)

	err = es.IndexDocument(context.Background(), "restaurants", "12345", map[string]interface{}{"name": "스시집"})
	require.NoError(t, err)
	assert.Equal(t, "/restaurants/_doc/12345", gotPath)
	assert.Equal(t, "스시집", gotBody["name"])
}

func TestElasticsearchClient_IndexDocumentError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer server.Close()

	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{server.URL}})
	require.NoError(t, err)

	err = es.IndexDocument(context.Background(), "restaurants", "1", map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
