package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatbotGenerate(t *testing.T) {
	var captured geminiRequestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Floss daily."}],"role":"model"}}]}`))
	}))
	defer srv.Close()

	s := NewChatbotServiceWithURL("secret-key", srv.URL)
	reply, err := s.Generate(context.Background(), "Should I floss?")
	require.NoError(t, err)
	assert.Equal(t, "Floss daily.", reply)

	// the fixed instruction precedes the user message
	require.Len(t, captured.Contents, 3)
	assert.Contains(t, captured.Contents[0].Parts[0].Text, "dental")
	assert.Equal(t, "Should I floss?", captured.Contents[2].Parts[0].Text)
}

func TestChatbotGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := NewChatbotServiceWithURL("k", srv.URL).Generate(context.Background(), "hi")
	assert.Error(t, err)
}
