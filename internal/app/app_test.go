package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"vocaman_backend/internal/config"
	"vocaman_backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testClient struct {
	t      *testing.T
	router http.Handler
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: "test"},
		JWT:     config.JWTConfig{Secret: "integration-test-secret-0123456789"},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:8081"}},
	}
	app := New(cfg, testutil.NewDB(t), nil)
	return &testClient{t: t, router: app.Router}
}

func (c *testClient) do(method, path, token string, body interface{}) (int, apiResponse) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// signup registers and logs in, returning the user id and access token.
func (c *testClient) signup(email, role string) (string, string) {
	c.t.Helper()
	code, resp := c.do(http.MethodPost, "/api/v2/auth/register", "", gin.H{
		"email": email, "password": "password123", "nickname": email, "role": role,
	})
	require.Equal(c.t, http.StatusCreated, code, resp.Message)
	userID := decode[map[string]string](c.t, resp.Data)["userId"]

	code, resp = c.do(http.MethodPost, "/api/v2/auth/login", "", gin.H{"email": email, "password": "password123"})
	require.Equal(c.t, http.StatusOK, code, resp.Message)
	tokens := decode[struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}](c.t, resp.Data)
	return userID, tokens.AccessToken
}

func TestHomeworkFlowOverHTTP(t *testing.T) {
	c := newTestClient(t)

	_, parentToken := c.signup("mom@example.com", "parent")
	childID, childToken := c.signup("kid@example.com", "student")

	code, resp := c.do(http.MethodPost, "/api/v2/users/me/relations/request", parentToken, gin.H{"childEmail": "kid@example.com"})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	relationID := decode[map[string]string](t, resp.Data)["relationId"]

	code, resp = c.do(http.MethodPut, "/api/v2/users/me/relations/"+relationID, childToken, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, code, resp.Message)

	code, resp = c.do(http.MethodPost, "/api/v2/datasets", parentToken, gin.H{
		"name": "animals", "source_language_code": "ko", "target_language_code": "en",
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	datasetID := decode[map[string]string](t, resp.Data)["datasetId"]

	code, resp = c.do(http.MethodPost, "/api/v2/datasets/"+datasetID+"/terms", parentToken, gin.H{
		"imageUrl": "https://img.test/cat.png",
		"terms": []gin.H{
			{"language_code": "en", "text": "cat", "hints": []gin.H{{"hint_type": "text", "hint_content": "meow", "language_code": "en"}}},
			{"language_code": "ko", "text": "고양이"},
		},
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)

	code, resp = c.do(http.MethodGet, "/api/v2/game/session?dataset_id="+datasetID, childToken, nil)
	require.Equal(t, http.StatusOK, code, resp.Message)
	session := decode[struct {
		Concepts []struct {
			Terms []struct {
				TermID string `json:"termId"`
			} `json:"terms"`
		} `json:"concepts"`
	}](t, resp.Data)
	require.Len(t, session.Concepts, 1)
	require.Len(t, session.Concepts[0].Terms, 2)

	code, resp = c.do(http.MethodPost, "/api/v2/homework/assignments", parentToken, gin.H{
		"childUserId": childID, "datasetId": datasetID, "reward": 50,
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	assignmentID := decode[map[string]string](t, resp.Data)["assignmentId"]

	type submitResult struct {
		Status       string `json:"status"`
		RewardEarned int64  `json:"rewardEarned"`
	}
	terms := session.Concepts[0].Terms

	// only the child may submit
	code, _ = c.do(http.MethodPost, "/api/v2/homework/progress", parentToken, gin.H{
		"assignmentId": assignmentID, "termId": terms[0].TermID, "status": "correct",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = c.do(http.MethodPost, "/api/v2/homework/progress", childToken, gin.H{
		"assignmentId": assignmentID, "termId": terms[0].TermID, "status": "correct",
	})
	require.Equal(t, http.StatusOK, code, resp.Message)
	first := decode[submitResult](t, resp.Data)
	assert.Equal(t, "in_progress", first.Status)
	assert.Zero(t, first.RewardEarned)

	code, resp = c.do(http.MethodPost, "/api/v2/homework/progress", childToken, gin.H{
		"assignmentId": assignmentID, "termId": terms[1].TermID, "status": "correct",
	})
	require.Equal(t, http.StatusOK, code, resp.Message)
	last := decode[submitResult](t, resp.Data)
	assert.Equal(t, "completed", last.Status)
	assert.Equal(t, int64(50), last.RewardEarned)

	code, _ = c.do(http.MethodPost, "/api/v2/homework/progress", childToken, gin.H{
		"assignmentId": assignmentID, "termId": terms[1].TermID, "status": "correct",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, resp = c.do(http.MethodGet, "/api/v2/users/me", childToken, nil)
	require.Equal(t, http.StatusOK, code)
	profile := decode[struct {
		Mileage int64 `json:"mileage"`
	}](t, resp.Data)
	assert.Equal(t, int64(50), profile.Mileage)

	code, resp = c.do(http.MethodGet, "/api/v2/homework/assignments/"+assignmentID, childToken, nil)
	require.Equal(t, http.StatusOK, code)
	details := decode[struct {
		Status   string `json:"status"`
		Progress struct {
			CorrectCount int64 `json:"correctCount"`
			TotalTerms   int64 `json:"totalTerms"`
		} `json:"progress"`
	}](t, resp.Data)
	assert.Equal(t, "completed", details.Status)
	assert.Equal(t, int64(2), details.Progress.TotalTerms)
	assert.Equal(t, int64(2), details.Progress.CorrectCount)

	code, resp = c.do(http.MethodGet, "/api/v2/homework/assignments/"+assignmentID+"/progress", parentToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]map[string]interface{}](t, resp.Data), 2)

	code, resp = c.do(http.MethodGet, "/api/v2/notifications", parentToken, nil)
	require.Equal(t, http.StatusOK, code)
	notes := decode[struct {
		UnreadCount int64 `json:"unreadCount"`
	}](t, resp.Data)
	// relation handled + homework completed
	assert.Equal(t, int64(2), notes.UnreadCount)

	code, _ = c.do(http.MethodDelete, "/api/v2/datasets/"+datasetID, parentToken, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestRequestValidationAndAuth(t *testing.T) {
	c := newTestClient(t)
	_, parentToken := c.signup("mom@example.com", "parent")
	_, childToken := c.signup("kid@example.com", "student")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"no token", http.MethodGet, "/api/v2/users/me", "", nil, http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/v2/users/me", "not-a-jwt", nil, http.StatusUnauthorized},
		{"short password", http.MethodPost, "/api/v2/auth/register", "", gin.H{"email": "x@example.com", "password": "short", "nickname": "x"}, http.StatusBadRequest},
		{"duplicate email", http.MethodPost, "/api/v2/auth/register", "", gin.H{"email": "mom@example.com", "password": "password123", "nickname": "again"}, http.StatusConflict},
		{"admin signup", http.MethodPost, "/api/v2/auth/register", "", gin.H{"email": "root@example.com", "password": "password123", "nickname": "root", "role": "admin"}, http.StatusBadRequest},
		{"wrong password", http.MethodPost, "/api/v2/auth/login", "", gin.H{"email": "mom@example.com", "password": "password999"}, http.StatusUnauthorized},
		{"bad refresh", http.MethodPost, "/api/v2/auth/refresh", "", gin.H{"refreshToken": "nope"}, http.StatusUnauthorized},
		{"bad language code", http.MethodPost, "/api/v2/datasets", parentToken, gin.H{"name": "x", "source_language_code": "Korean", "target_language_code": "en"}, http.StatusBadRequest},
		{"student creates dataset", http.MethodPost, "/api/v2/datasets", childToken, gin.H{"name": "x", "source_language_code": "ko", "target_language_code": "en"}, http.StatusForbidden},
		{"invalid path id", http.MethodGet, "/api/v2/homework/assignments/abc", childToken, nil, http.StatusBadRequest},
		{"unknown assignment", http.MethodGet, "/api/v2/homework/assignments/404", childToken, nil, http.StatusNotFound},
		{"empty patch", http.MethodPut, "/api/v2/homework/assignments/1", parentToken, gin.H{}, http.StatusBadRequest},
		{"pending outcome", http.MethodPost, "/api/v2/homework/progress", childToken, gin.H{"assignmentId": "1", "termId": "1", "status": "pending"}, http.StatusBadRequest},
		{"assign without relation", http.MethodPost, "/api/v2/homework/assignments", parentToken, gin.H{"childUserId": "2", "datasetId": "1"}, http.StatusForbidden},
		{"student uploads audio", http.MethodPost, "/api/v2/audio", childToken, nil, http.StatusForbidden},
		{"unknown audio", http.MethodGet, "/api/v2/audio/missing.mp3", "", nil, http.StatusNotFound},
		{"self relation", http.MethodPost, "/api/v2/users/me/relations/request", parentToken, gin.H{"childEmail": "mom@example.com"}, http.StatusBadRequest},
		{"no default dataset", http.MethodGet, "/api/v2/game/session/default?grade=3", childToken, nil, http.StatusNotFound},
		{"stats zeros", http.MethodGet, "/api/v2/users/me/stats?lang_pair=ko-en", childToken, nil, http.StatusOK},
		{"health", http.MethodGet, "/api/health", "", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := c.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, code, resp.Message)
		})
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	c := newTestClient(t)
	_, token := c.signup("kid@example.com", "student")

	code, resp := c.do(http.MethodGet, "/api/v2/users/me/settings", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{}`, string(resp.Data))

	code, _ = c.do(http.MethodPut, "/api/v2/users/me/settings", token, gin.H{"sound": false, "theme": "dark"})
	require.Equal(t, http.StatusOK, code)

	code, resp = c.do(http.MethodGet, "/api/v2/users/me/settings", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"sound": false, "theme": "dark"}`, string(resp.Data))
}

func TestCORSPreflight(t *testing.T) {
	c := newTestClient(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v2/datasets", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:8081", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v2/datasets", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
