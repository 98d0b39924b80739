package enhance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wire shapes of the generateContent REST call, as seen by the server.
type blob struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

type wirePart struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type wireContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []wirePart `json:"parts"`
}

type wireRequest struct {
	Contents         []wireContent `json:"contents"`
	GenerationConfig struct {
		ResponseModalities []string `json:"responseModalities"`
	} `json:"generationConfig"`
}

func newTestGemini(t *testing.T, handler http.HandlerFunc) *Gemini {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGemini(context.Background(), GeminiConfig{APIKey: "test-key", Model: "models/test", Endpoint: srv.URL})
	require.NoError(t, err)
	return g
}

func decodeRequest(t *testing.T, r *http.Request) wireRequest {
	t.Helper()
	var req wireRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	require.Len(t, req.Contents, 1)
	require.Len(t, req.Contents[0].Parts, 2)
	return req
}

func reply(w http.ResponseWriter, parts ...wirePart) {
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{
		"candidates": []map[string]any{{"content": wireContent{Role: "model", Parts: parts}}},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func TestGeminiEnhance(t *testing.T) {
	enhanced := []byte("enhanced-png-bytes")

	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/test:generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		req := decodeRequest(t, r)
		parts := req.Contents[0].Parts
		require.NotNil(t, parts[0].InlineData)
		assert.Equal(t, []byte("original"), parts[0].InlineData.Data)
		assert.Equal(t, "image/png", parts[0].InlineData.MimeType)
		assert.Contains(t, parts[1].Text, `Hidden message: "meet at noon"`)
		assert.Equal(t, []string{"TEXT", "IMAGE"}, req.GenerationConfig.ResponseModalities)

		reply(w, wirePart{Text: "here you go"}, wirePart{InlineData: &blob{MimeType: "image/png", Data: enhanced}})
	})

	out, err := g.Enhance(context.Background(), []byte("original"), "meet at noon", "")
	require.NoError(t, err)
	assert.Equal(t, enhanced, out)
}

func TestGeminiEnhanceTruncatesPrompt(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Len(t, []rune(req.Contents[0].Parts[1].Text), maxPromptChars)
		reply(w, wirePart{InlineData: &blob{MimeType: "image/png", Data: []byte("ok")}})
	})

	_, err := g.Enhance(context.Background(), []byte("x"), "m", strings.Repeat("é", maxPromptChars+50))
	require.NoError(t, err)
}

func TestGeminiEnhanceWithoutImage(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, wirePart{Text: "I cannot edit images"})
	})

	_, err := g.Enhance(context.Background(), []byte("x"), "m", "custom prompt")
	assert.ErrorContains(t, err, "missing inline image")
}

func TestGeminiReveal(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
		err    error
	}{
		{"message", "  the eagle has landed \n", "the eagle has landed", nil},
		{"sentinel", "no_message", "", ErrNoMessage},
		{"empty", "", "", ErrNoMessage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
				req := decodeRequest(t, r)
				require.NotNil(t, req.Contents[0].Parts[0].InlineData)
				assert.Equal(t, "image/jpeg", req.Contents[0].Parts[0].InlineData.MimeType)
				assert.Contains(t, req.Contents[0].Parts[1].Text, NoMessageSentinel)
				reply(w, wirePart{Text: tc.answer})
			})

			got, err := g.Reveal(context.Background(), []byte("img"), "image/jpeg")
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGeminiAPIError(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	})

	_, err := g.Reveal(context.Background(), []byte("img"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.NotErrorIs(t, err, ErrNoMessage)
}

func TestGeminiHonoursContext(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := g.Enhance(ctx, []byte("img"), "m", "")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewGemini(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiConfig{Model: "m"})
	assert.ErrorContains(t, err, "api key")

	_, err = NewGemini(context.Background(), GeminiConfig{APIKey: "k"})
	assert.ErrorContains(t, err, "model")

	g, err := NewGemini(context.Background(), GeminiConfig{APIKey: "k", Model: "models/gemini-2.0-flash"})
	require.NoError(t, err)
	assert.Equal(t, "models/gemini-2.0-flash", g.model)
}

func TestDisabled(t *testing.T) {
	var e Enhancer = Disabled{}

	out, err := e.Enhance(context.Background(), []byte("same"), "m", "")
	require.NoError(t, err)
	assert.Equal(t, []byte("same"), out)

	_, err = e.Reveal(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "日本", truncate("日本語", 2))
	assert.Equal(t, strings.Repeat("a", 5), truncate(strings.Repeat("a", 5), 10))
}
