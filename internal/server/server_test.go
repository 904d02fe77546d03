package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guru-api/internal/db"
	"guru-api/internal/keys"
	"guru-api/internal/models"
)

type fakeKeys struct {
	key        *db.APIKey
	authErr    error
	debitCalls int
	debitLeft  int
	debitErr   error
}

func (f *fakeKeys) Authorize(ctx context.Context, keyString string) (*db.APIKey, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.key, nil
}

func (f *fakeKeys) Debit(ctx context.Context, key *db.APIKey) (int, error) {
	f.debitCalls++
	return f.debitLeft, f.debitErr
}

type fakePipeline struct {
	result models.ChatResult
	calls  int
}

func (f *fakePipeline) Answer(ctx context.Context, req models.ChatRequest) models.ChatResult {
	f.calls++
	return f.result
}

func doChat(t *testing.T, srv *Server, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"question": "photosynthesis mokakda", "subject": "Science", "medium": "Sinhala"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("X-API-Key", apiKey)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestChatInvalidKey(t *testing.T) {
	pipeline := &fakePipeline{}
	srv := New(&fakeKeys{authErr: keys.ErrInvalidKey}, pipeline)

	rec := doChat(t, srv, "sk_bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, pipeline.calls)
}

func TestChatExpiredKey(t *testing.T) {
	pipeline := &fakePipeline{}
	srv := New(&fakeKeys{authErr: keys.ErrKeyExpired}, pipeline)

	rec := doChat(t, srv, "sk_old")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, pipeline.calls)
}

func TestChatQuotaExhausted(t *testing.T) {
	kfake := &fakeKeys{authErr: keys.ErrNoCredits}
	pipeline := &fakePipeline{}
	srv := New(kfake, pipeline)

	rec := doChat(t, srv, "sk_empty")
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	// rejection happens before any pipeline or ledger work
	assert.Zero(t, pipeline.calls)
	assert.Zero(t, kfake.debitCalls)
}

func TestChatSuccessDebitsOneCredit(t *testing.T) {
	kfake := &fakeKeys{key: &db.APIKey{ID: 1, Credits: 1}, debitLeft: 0}
	pipeline := &fakePipeline{result: models.ChatResult{
		Interpreted: "q?",
		Answer:      "See Figure 3.2.",
		Image:       &models.ImageInfo{ImageURL: "https://cdn/fig32.png", Description: "Figure 3.2", PageNumber: 40},
		Generated:   true,
	}}
	srv := New(kfake, pipeline)

	rec := doChat(t, srv, "sk_good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, kfake.debitCalls)

	body := decodeBody(t, rec)
	assert.Equal(t, "q?", body["question_interpreted"])
	assert.Equal(t, "See Figure 3.2.", body["answer"])
	assert.Equal(t, float64(0), body["credits_left"])
	image, ok := body["image"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://cdn/fig32.png", image["image_url"])
	assert.Equal(t, float64(40), image["page_number"])
}

func TestChatUnlimitedKeySkipsLedger(t *testing.T) {
	kfake := &fakeKeys{key: &db.APIKey{ID: 2, IsUnlimited: true}}
	pipeline := &fakePipeline{result: models.ChatResult{Interpreted: "q?", Answer: "a", Generated: true}}
	srv := New(kfake, pipeline)

	rec := doChat(t, srv, "sk_inf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, kfake.debitCalls)
	assert.Equal(t, "Unlimited", decodeBody(t, rec)["credits_left"])
}

func TestChatNoContextKeepsCredit(t *testing.T) {
	kfake := &fakeKeys{key: &db.APIKey{ID: 3, Credits: 5}}
	pipeline := &fakePipeline{result: models.ChatResult{
		Interpreted: "q?",
		Answer:      models.NoInformationMessage,
		Generated:   false,
	}}
	srv := New(kfake, pipeline)

	rec := doChat(t, srv, "sk_good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, kfake.debitCalls)

	body := decodeBody(t, rec)
	assert.Equal(t, models.NoInformationMessage, body["answer"])
	assert.Nil(t, body["image"])
	assert.Equal(t, float64(5), body["credits_left"])
}

func TestChatBadBody(t *testing.T) {
	srv := New(&fakeKeys{key: &db.APIKey{Credits: 1}}, &fakePipeline{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
	req.Header.Set("X-API-Key", "sk_good")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := New(&fakeKeys{}, &fakePipeline{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
