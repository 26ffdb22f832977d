package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"vocaman_backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalidID, http.StatusBadRequest},
		{fmt.Errorf("%w: reward must not be negative", ErrInvalidInput), http.StatusBadRequest},
		{ErrTermNotInDataset, http.StatusBadRequest},
		{errors.Join(ErrInvalidToken, errors.New("expired")), http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrRelationNotApproved, http.StatusForbidden},
		{ErrAssignmentNotFound, http.StatusNotFound},
		{ErrAlreadyCompleted, http.StatusConflict},
		{fmt.Errorf("%w: completed -> assigned", ErrInvalidTransition), http.StatusConflict},
		{ErrGoogleLogin, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: deadline", ErrStoreUnavailable), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}

func TestHandleServiceErrorMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(err error) (int, Response) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		HandleServiceError(c, err)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return w.Code, resp
	}

	code, resp := run(fmt.Errorf("%w: nickname is required", ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "nickname is required")

	code, resp = run(errors.New("dial tcp: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotContains(t, resp.Message, "dial tcp")
}

func TestParseIDAndWireID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, bad)
	}
	assert.Equal(t, "18446744073709551615", FormatID(^uint64(0)))

	var body struct {
		A WireID `json:"a"`
		B WireID `json:"b"`
		C WireID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"7","b":8,"c":null}`), &body))
	assert.Equal(t, uint64(7), body.A.Uint64())
	assert.Equal(t, uint64(8), body.B.Uint64())
	assert.Zero(t, body.C.Uint64())

	assert.Error(t, json.Unmarshal([]byte(`{"a":"x"}`), &body))
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{ID: 9, Email: "kid@example.com", Nickname: "Kid", Role: model.Student}

	token, claims, err := GenerateJWT(user, TokenTypeAccess, "secret", time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := ParseJWT(token, TokenTypeAccess, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), parsed.UserID)
	assert.Equal(t, model.Student, parsed.Role)

	_, err = ParseJWT(token, TokenTypeRefresh, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ParseJWT(token, TokenTypeAccess, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := GenerateJWT(user, TokenTypeAccess, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, TokenTypeAccess, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseProbeOutput(t *testing.T) {
	info, err := parseProbeOutput(`{
		"streams": [{"codec_type": "audio", "codec_name": "mp3", "sample_rate": "44100", "channels": 2}],
		"format": {"duration": "1.250000", "size": "20480", "format_name": "mp3"}
	}`, 1)
	require.NoError(t, err)
	assert.Equal(t, "mp3", info.Codec)
	assert.Equal(t, 44100, info.SampleRate)
	assert.InDelta(t, 1.25, info.Duration, 0.0001)
	assert.Equal(t, int64(20480), info.Size)

	_, err = parseProbeOutput(`{"streams": [{"codec_type": "video"}], "format": {}}`, 1)
	assert.ErrorIs(t, err, ErrInvalidFileType)

	_, err = parseProbeOutput(`not json`, 1)
	assert.Error(t, err)
}

func TestAudioValidation(t *testing.T) {
	ext, ok := AudioExtension("Hello.MP3")
	assert.True(t, ok)
	assert.Equal(t, ".mp3", ext)
	_, ok = AudioExtension("notes.txt")
	assert.False(t, ok)

	// "ID3" is how http.DetectContentType recognises mp3
	mime, err := ValidateMimeType(bytes.NewReader([]byte("ID3\x03\x00\x00\x00\x00\x00\x00")), AllowedAudioMimeTypes)
	require.NoError(t, err)
	assert.True(t, IsAudio(mime))

	_, err = ValidateMimeType(bytes.NewReader([]byte("just some text")), AllowedAudioMimeTypes)
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestValidateLangCodeRule(t *testing.T) {
	for code, want := range map[string]bool{
		"en": true, "ko": true, "zh-Hant": true, "pt-BR": true,
		"EN": false, "e": false, "english": false, "en_US": false,
	} {
		assert.Equal(t, want, langCodePattern.MatchString(code), code)
	}
}
