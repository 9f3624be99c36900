package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"statrater/pkg/config"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	appConfig = cfg
	jwtSecret = []byte(cfg.JWTSecret)
	if err := initRating(cfg); err != nil {
		t.Fatalf("init rating: %v", err)
	}
	initDB()
	t.Setenv("UPLOAD_BASE", t.TempDir())
	seedDB()
	r := gin.Default()
	setupRoutes(r)
	return r
}

// statusSheet is a 35 line OCR dump with base 1000, bonus 1200, crit 70/140.
func statusSheet() string {
	lines := make([]string, 0, 35)
	for len(lines) < 20 {
		lines = append(lines, "Artifact")
	}
	lines = append(lines, "19,888", "1,000", "812", "850", "70.0%", "140.0%", "180.2%", "0%",
		"25.0%", "110.5%", "46.6%", "0%", "+4,561", "+1,200", "+299")
	return strings.Join(lines, "\n")
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)
	username := fmt.Sprintf("rater%d", time.Now().UnixNano())

	// 1. Register user
	regBody, _ := json.Marshal(map[string]string{"username": username, "password": "pass123", "locale": "en"})
	resp := performRequest(r, http.MethodPost, "/register", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 2. Login
	loginBody, _ := json.Marshal(map[string]string{"username": username, "password": "pass123"})
	resp = performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(loginBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}

	// 3. Save a preset
	presetBody, _ := json.Marshal(map[string]string{"name": "bennett", "buffs": "atk=1000"})
	resp = performRequest(r, http.MethodPost, "/presets", bytes.NewBuffer(presetBody), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("save preset failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 4. Rate text with the preset
	rateBody, _ := json.Marshal(map[string]string{"text": statusSheet(), "preset": "bennett", "buffs": "cr=5"})
	resp = performRequest(r, http.MethodPost, "/rate", bytes.NewBuffer(rateBody), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("rate failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var rateResp struct {
		ID     uint               `json:"id"`
		Locale string             `json:"locale"`
		Record map[string]float64 `json:"record"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &rateResp)
	if rateResp.Locale != "en" || rateResp.Record["atk_add"] != 2200 || rateResp.Record["cr"] != 75 {
		t.Fatalf("unexpected rate response: %s", resp.Body.String())
	}

	// 5. Rating history
	resp = performRequest(r, http.MethodGet, "/ratings", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list ratings failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/ratings/%d", rateResp.ID), nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("get rating failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 6. Short dump is rejected with the parse details
	badBody, _ := json.Marshal(map[string]string{"text": "1,234\n+567"})
	resp = performRequest(r, http.MethodPost, "/rate", bytes.NewBuffer(badBody), token, "application/json")
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for short dump got %d body=%s", resp.Code, resp.Body.String())
	}

	// 7. Delete the preset, twice
	resp = performRequest(r, http.MethodDelete, "/presets/bennett", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("delete preset failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodDelete, "/presets/bennett", nil, token, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted preset got %d", resp.Code)
	}

	// 8. Unauthorized access to protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/ratings", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list ratings got %d", unauth.Code)
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	appConfig = cfg
	initDB()
}
