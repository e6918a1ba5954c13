package main

import (
	"DiningApi/internal/data"
	"DiningApi/internal/events"
	"DiningApi/internal/jsonlog"
	"DiningApi/internal/media"
	"bytes"
	"context"
	json2 "encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

type testServer struct {
	*httptest.Server
	app *application
}

func newTestApplication(t *testing.T) *application {
	t.Helper()

	cfg := defaultConfig()
	cfg.DB.Driver = "memory"
	cfg.Limiter.Enabled = false
	cfg.Media.Dir = t.TempDir()
	cfg.Media.BaseURL = "/media"
	cfg.Media.TempDir = t.TempDir()
	cfg.Media.MaxUploadBytes = 1 << 20

	store, err := media.NewLocalStore(cfg.Media.Dir, cfg.Media.BaseURL)
	if err != nil {
		t.Fatal(err)
	}

	hub := events.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	app := newApplication(cfg, jsonlog.Discard(), data.NewMemoryModels(), media.NewOffloader(store, 2),
		hub, hub)
	app.mediaHandler = store.Handler()

	return app
}

func newTestServer(t *testing.T, app *application) *testServer {
	t.Helper()

	ts := httptest.NewServer(app.routes())
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, app: app}
}

func (ts *testServer) do(t *testing.T, method, urlPath string, body io.Reader,
	contentType string) (int, http.Header, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, ts.URL+urlPath, body)
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rs, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer rs.Body.Close()

	b, err := io.ReadAll(rs.Body)
	if err != nil {
		t.Fatal(err)
	}

	return rs.StatusCode, rs.Header, bytes.TrimSpace(b)
}

func (ts *testServer) get(t *testing.T, urlPath string) (int, http.Header, []byte) {
	t.Helper()
	return ts.do(t, http.MethodGet, urlPath, nil, "")
}

func (ts *testServer) sendJSON(t *testing.T, method, urlPath string, payload any) (int, http.Header, []byte) {
	t.Helper()

	var body io.Reader
	switch p := payload.(type) {
	case string:
		body = bytes.NewBufferString(p)
	default:
		js, err := json2.Marshal(p)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(js)
	}

	return ts.do(t, method, urlPath, body, "application/json")
}

func (ts *testServer) upload(t *testing.T, urlPath, field, filename string, content []byte) (int, []byte) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("note", "profile picture"); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	code, _, body := ts.do(t, http.MethodPost, urlPath, &buf, mw.FormDataContentType())
	return code, body
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()

	var v T
	if err := json2.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}
