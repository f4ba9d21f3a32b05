package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, status int, reply string, seen *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
}

func TestGenerate_ReturnsFirstChoice(t *testing.T) {
	var body map[string]interface{}
	server := chatServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1,
		"model": "travel-model",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"destinations\":[\"Pune\"]}"}}]
	}`, &body)
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/v1", APIKey: "test-key", Model: "travel-model", Timeout: time.Second})

	got, err := client.Generate(context.Background(), "extract", "Trip to Pune")

	require.NoError(t, err)
	assert.Equal(t, `{"destinations":["Pune"]}`, got)
	assert.Equal(t, "travel-model", body["model"])
	messages := body["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])
}

func TestGenerate_NoChoices(t *testing.T) {
	server := chatServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`, nil)
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/v1/", APIKey: "test-key", Model: "m"})

	_, err := client.Generate(context.Background(), "s", "u")

	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestGenerate_ServerError(t *testing.T) {
	server := chatServer(t, http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, nil)
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/v1", APIKey: "test-key", Model: "m"})

	_, err := client.Generate(context.Background(), "s", "u")

	assert.Error(t, err)
}

func TestGenerate_SlowReplyTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/v1", APIKey: "test-key", Model: "m", Timeout: 50 * time.Millisecond})

	_, err := client.Generate(context.Background(), "s", "u")

	assert.ErrorIs(t, err, ErrTimeout)
}
