package apify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liexport/pkg/errors"
	"liexport/pkg/logger"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client, *logger.TestLogger) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.NewTestLogger()
	client := NewClient(server.URL+"/v2/acts/test~actor/run-sync-get-dataset-items", 5*time.Second, log)
	return server, client, log
}

func TestFetchPostsSendsInput(t *testing.T) {
	var gotInput RunInput
	var gotToken, gotMethod, gotContentType string

	_, client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotToken = r.URL.Query().Get("token")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotInput))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"url":"https://www.linkedin.com/posts/1","posted_at":{"date":"2025-02-01 10:00:00"},"stats":{"like":12345678901234567890}}]`))
	})

	posts, err := client.FetchPosts(context.Background(), "tok en", RunInput{
		Username:   "janedoe",
		Limit:      100,
		TotalPosts: 500,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "tok en", gotToken)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, RunInput{Username: "janedoe", Limit: 100, TotalPosts: 500}, gotInput)

	require.Len(t, posts, 1)
	assert.Equal(t, "https://www.linkedin.com/posts/1", posts[0].String(PathURL))
	assert.Equal(t, "2025-02-01 10:00:00", posts[0].PostedAt())
	// Large counts are not rounded through float64
	assert.Equal(t, "12345678901234567890", posts[0].String(PathLike))
}

func TestFetchPostsNonSuccessStatus(t *testing.T) {
	_, client, log := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"type":"run-failed","message":"Actor crashed"}}`))
	})

	posts, err := client.FetchPosts(context.Background(), "secret", RunInput{Username: "janedoe", Limit: 10, TotalPosts: 10})
	require.Error(t, err)
	assert.Nil(t, posts)

	assert.True(t, errors.Is(err, errors.KindUpstream))
	assert.Equal(t, 500, errors.StatusCode(err))
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "Actor crashed")

	// The token never reaches the logs
	for _, msg := range log.GetMessages() {
		for _, v := range msg.Fields {
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, "secret")
			}
		}
	}
}

func TestFetchPostsNonArrayIsEmpty(t *testing.T) {
	_, client, log := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	})

	posts, err := client.FetchPosts(context.Background(), "t", RunInput{Username: "u", Limit: 1, TotalPosts: 1})
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NotNil(t, posts)
	assert.Len(t, log.GetMessagesByLevel("WARN"), 1)
}

func TestFetchPostsSkipsNonObjects(t *testing.T) {
	_, client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"url":"a"}, 42, "text", null, {"url":"b"}]`))
	})

	posts, err := client.FetchPosts(context.Background(), "t", RunInput{Username: "u", Limit: 1, TotalPosts: 5})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "a", posts[0].String(PathURL))
	assert.Equal(t, "b", posts[1].String(PathURL))
}

func TestFetchPostsInvalidJSON(t *testing.T) {
	_, client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway</html>`))
	})

	_, err := client.FetchPosts(context.Background(), "t", RunInput{Username: "u", Limit: 1, TotalPosts: 1})
	require.Error(t, err)
	assert.Equal(t, errors.KindUpstream, errors.KindOf(err))
}

func TestFetchPostsTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, 50*time.Millisecond, logger.NewTestLogger())
	_, err := client.FetchPosts(context.Background(), "supersecret", RunInput{Username: "u", Limit: 1, TotalPosts: 1})
	require.Error(t, err)
	assert.Equal(t, errors.KindUpstream, errors.KindOf(err))
	assert.NotContains(t, err.Error(), "supersecret")
}

func TestFetchPostsContextCancelled(t *testing.T) {
	_, client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchPosts(ctx, "t", RunInput{Username: "u", Limit: 1, TotalPosts: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("http://actor", 0, nil)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.NotNil(t, client.logger)
	assert.Equal(t, "http://actor", client.Endpoint())

	client.SetHeader("X-Trace", "1")
	assert.Equal(t, "1", client.headers["X-Trace"])
}
