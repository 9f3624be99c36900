package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statrater/pkg/config"
	"statrater/pkg/locale"
	"statrater/pkg/ocr"
	"statrater/pkg/rating"
	"statrater/pkg/stats"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("test-secret")
	require.NoError(t, initRating(config.Default()))
	r := gin.New()
	setupRoutes(r)
	return r
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/me", "/locales", "/ratings", "/presets"} {
		rec := performRequest(r, http.MethodGet, path, nil, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := performRequest(r, http.MethodGet, "/me", nil, "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeAndLocales(t *testing.T) {
	r := newTestRouter(t)
	token, err := signAccessToken("alice", "user", time.Minute)
	require.NoError(t, err)

	rec := performRequest(r, http.MethodGet, "/me", nil, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"username":"alice","role":"user"}`, rec.Body.String())

	rec = performRequest(r, http.MethodGet, "/locales", nil, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var locs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &locs))
	require.Len(t, locs, 2)
	assert.Equal(t, "en", locs[0]["id"])
	assert.Equal(t, false, locs[0]["default"])
	assert.Equal(t, "ja", locs[1]["id"])
	assert.Equal(t, "jpn", locs[1]["ocr_code"])
	assert.Equal(t, true, locs[1]["default"])
}

func TestExpiredTokenRejected(t *testing.T) {
	r := newTestRouter(t)
	token, err := signAccessToken("alice", "", -time.Minute)
	require.NoError(t, err)
	rec := performRequest(r, http.MethodGet, "/me", nil, token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func bindContext(body *bytes.Buffer, contentType string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/rate", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	return c
}

func TestBindRateRequestJSON(t *testing.T) {
	c := bindContext(bytes.NewBufferString(`{"text":"a\nb","locale":"en","buffs":"cr=5"}`), "application/json")
	req, err := bindRateRequest(c)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", req.Text)
	assert.Equal(t, "en", req.Locale)
	assert.Equal(t, "cr=5", req.Buffs)

	c = bindContext(bytes.NewBufferString(`{"text":"x","url":"https://example.com/a.png"}`), "application/json")
	_, err = bindRateRequest(c)
	assert.Error(t, err)

	c = bindContext(bytes.NewBufferString(`{"locale":"en"}`), "application/json")
	_, err = bindRateRequest(c)
	assert.Error(t, err)
}

func TestBindRateRequestMultipart(t *testing.T) {
	multipartBody := func(filename string) (*bytes.Buffer, string) {
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		_ = mw.WriteField("locale", "ja")
		_ = mw.WriteField("preset", "raiden")
		w, _ := mw.CreateFormFile("file", filename)
		_, _ = w.Write([]byte("PNG"))
		_ = mw.Close()
		return buf, mw.FormDataContentType()
	}

	body, ct := multipartBody("shot.png")
	req, err := bindRateRequest(bindContext(body, ct))
	require.NoError(t, err)
	require.NotNil(t, req.file)
	assert.Equal(t, "shot.png", req.file.Filename)
	assert.Equal(t, "ja", req.Locale)
	assert.Equal(t, "raiden", req.Preset)

	body, ct = multipartBody("shot.webp")
	req, err = bindRateRequest(bindContext(body, ct))
	require.NoError(t, err)
	assert.Equal(t, "shot.webp", req.file.Filename)

	body, ct = multipartBody("notes.txt")
	_, err = bindRateRequest(bindContext(body, ct))
	assert.Error(t, err)
}

func TestBindPresetRequest(t *testing.T) {
	c := bindContext(bytes.NewBufferString(`{"name":" raiden ","buffs":"atk=1000 cr=20"}`), "application/json")
	name, buffs, err := bindPresetRequest(c)
	require.NoError(t, err)
	assert.Equal(t, "raiden", name)
	assert.Equal(t, stats.BuffSet{stats.FieldAttack: 1000, stats.FieldCritRate: 20}, buffs)

	for _, body := range []string{
		`{"name":"   ","buffs":"cr=5"}`,
		`{"name":"x"}`,
		`{"name":"x","buffs":"cr"}`,
	} {
		_, _, err := bindPresetRequest(bindContext(bytes.NewBufferString(body), "application/json"))
		assert.Error(t, err, body)
	}
}

func TestRateErrorStatus(t *testing.T) {
	cases := map[error]int{
		&stats.ParseError{Field: stats.FieldAttackAdd, Err: stats.ErrLayoutMismatch}: http.StatusUnprocessableEntity,
		stats.ErrDivisionPrecondition:                                                http.StatusUnprocessableEntity,
		ocr.ErrNoText:                                                                http.StatusUnprocessableEntity,
		fmt.Errorf("%w: image: unknown format", ocr.ErrBadImage):                     http.StatusUnprocessableEntity,
		&ocr.UpstreamError{Messages: []string{"down"}}:                               http.StatusBadGateway,
		fmt.Errorf("x: %w", locale.ErrUnknownLocale):                                 http.StatusBadRequest,
		fmt.Errorf("x: %w", stats.ErrBadBuff):                                        http.StatusBadRequest,
		ocr.ErrTooLarge:                                                              http.StatusBadRequest,
		errors.New("boom"):                                                           http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, rateErrorStatus(err), err.Error())
	}
}

func TestWriteRateErrorUpstreamVerbatim(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	up := &ocr.UpstreamError{Messages: []string{"File failed validation", "Max size 5MB"}}
	writeRateError(c, rating.Outcome{Locale: locale.Japanese()}, up)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "エラー: File failed validation. Max size 5MB", body["error"])
	assert.Equal(t, "File failed validation. Max size 5MB", body["upstream"])
}

func TestWriteRateErrorParseDetails(t *testing.T) {
	out, err := rating.New(locale.NewRegistry("en"), nil).Text("en", strings.Repeat("x\n", 25)+"1,234", nil)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	writeRateError(c, out, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "atk_base", body["field"])
	assert.Equal(t, float64(26), body["line_count"])
	assert.Equal(t, []any{"1,234"}, body["tokens"])
}

func TestFeedAcceptsQueryToken(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()
	token, err := signAccessToken("carol", "user", time.Minute)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?access_token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return ratingFeed.Count("carol") == 1 }, 2*time.Second, 10*time.Millisecond)

	ratingFeed.Publish("carol", gin.H{"type": "rating"})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"rating"}`, string(msg))
}
