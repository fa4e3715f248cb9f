package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealhound/dealhound/internal/models"
)

func aiServer(t *testing.T, label string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Messages, 2)

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: label}},
			},
		})
	}))
}

func newTestAIStrategy(endpoint string) *AIStrategy {
	return NewAIStrategy(AIConfig{
		Endpoint: endpoint,
		APIKey:   "test-key",
		Model:    "test-model",
	})
}

func TestAIStrategyReturnsValidLabel(t *testing.T) {
	server := aiServer(t, "Electronics", http.StatusOK)
	defer server.Close()

	got, err := newTestAIStrategy(server.URL).Classify(context.Background(), models.RawItem{
		Title: "iPhone 15 case",
	})

	require.NoError(t, err)
	assert.Equal(t, models.CategoryElectronics, got)
}

func TestAIStrategyRejectsUnknownLabel(t *testing.T) {
	server := aiServer(t, "Spaceships", http.StatusOK)
	defer server.Close()

	_, err := newTestAIStrategy(server.URL).Classify(context.Background(), models.RawItem{})

	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestAIStrategyReportsServerError(t *testing.T) {
	server := aiServer(t, "", http.StatusInternalServerError)
	defer server.Close()

	_, err := newTestAIStrategy(server.URL).Classify(context.Background(), models.RawItem{})

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAIStrategyRequiresCredentials(t *testing.T) {
	assert.Nil(t, NewAIStrategy(AIConfig{}))
	assert.Nil(t, NewAIStrategy(AIConfig{Endpoint: "https://example.com"}))
}
