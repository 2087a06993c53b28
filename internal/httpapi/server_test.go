package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dpitt/club-bouncer/internal/config"
	"github.com/dpitt/club-bouncer/internal/guestlist"
	"github.com/dpitt/club-bouncer/internal/judge"
)

type recordingWebhook struct {
	calls   int
	verdict judge.Verdict
}

func (r *recordingWebhook) Judge(ctx context.Context, club string, img judge.Image) (judge.Verdict, error) {
	r.calls++
	return r.verdict, nil
}

func newTestEngine(cfg config.Config, wh judge.WebhookDelegate, gateCode string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	resolver := judge.NewResolver(cfg, wh, nil)
	resolver.Sleep = func(ctx context.Context, d time.Duration) {}
	srv := New(resolver, guestlist.New(gateCode))
	r := gin.New()
	srv.Mount(r)
	return r
}

type formField struct {
	name, value string
}

func multipartBody(t *testing.T, fields []formField, withPhoto bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if withPhoto {
		fw, err := w.CreateFormFile("photo", "outfit.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte("jpeg bytes"))
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func postJudge(t *testing.T, r *gin.Engine, fields []formField, withPhoto bool) (*httptest.ResponseRecorder, judge.Verdict) {
	t.Helper()
	body, ct := multipartBody(t, fields, withPhoto)
	req := httptest.NewRequest("POST", "/api/judge", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var v judge.Verdict
	json.Unmarshal(rec.Body.Bytes(), &v)
	return rec, v
}

func TestJudgeMissingClub(t *testing.T) {
	r := newTestEngine(config.Config{Mode: "mock"}, nil, "")
	rec, v := postJudge(t, r, nil, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if v.Verdict != judge.OutcomeError || v.Club != judge.UnknownClub {
		t.Fatalf("unexpected verdict %+v", v)
	}
}

func TestJudgeMockHappyPath(t *testing.T) {
	r := newTestEngine(config.Config{Mode: "mock"}, nil, "")
	rec, v := postJudge(t, r, []formField{{"club", "Sisyphus"}}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if v.Verdict != judge.OutcomeAccept && v.Verdict != judge.OutcomeReject {
		t.Fatalf("expected ACCEPT or REJECT, got %s", v.Verdict)
	}
	if !v.Mock {
		t.Fatal("mock verdict should carry _mock")
	}
}

func TestJudgeMockFailure(t *testing.T) {
	r := newTestEngine(config.Config{Mode: "mock"}, nil, "")
	rec, v := postJudge(t, r, []formField{{"club", "Berghain"}, {"mockFailure", "true"}}, false)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if v.Verdict != judge.OutcomeError || !v.Mock {
		t.Fatalf("unexpected verdict %+v", v)
	}
}

func TestJudgeWebhookForwardsPhoto(t *testing.T) {
	wh := &recordingWebhook{verdict: judge.Verdict{Verdict: judge.OutcomeAccept, Message: "Enter.", Club: "Berghain"}}
	r := newTestEngine(config.Config{Mode: "webhook", WebhookURL: "http://example.com/judge"}, wh, "")
	rec, v := postJudge(t, r, []formField{{"club", "Berghain"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if wh.calls != 1 {
		t.Fatalf("expected one delegate call, got %d", wh.calls)
	}
	if v.Message != "Enter." {
		t.Fatalf("verdict not passed through: %+v", v)
	}
}

func TestJudgeWebhookMissingPhoto(t *testing.T) {
	wh := &recordingWebhook{}
	r := newTestEngine(config.Config{Mode: "webhook", WebhookURL: "http://example.com/judge"}, wh, "")
	rec, v := postJudge(t, r, []formField{{"club", "Berghain"}}, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if v.Verdict != judge.OutcomeError {
		t.Fatalf("expected ERROR, got %s", v.Verdict)
	}
	if wh.calls != 0 {
		t.Fatalf("no outbound call expected, got %d", wh.calls)
	}
}

func TestJudgeGuestlistDenied(t *testing.T) {
	wh := &recordingWebhook{}
	r := newTestEngine(config.Config{Mode: "webhook", WebhookURL: "http://example.com/judge"}, wh, "VIP2024")

	rec, _ := postJudge(t, r, []formField{{"club", "Berghain"}, {"code", "WRONG"}}, true)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if wh.calls != 0 {
		t.Fatalf("denied request must not reach the delegate, got %d calls", wh.calls)
	}
	if strings.Contains(rec.Body.String(), "verdict") {
		t.Fatalf("denial must be distinct from a verdict envelope: %s", rec.Body.String())
	}
}

func TestJudgeGuestlistCaseInsensitive(t *testing.T) {
	wh := &recordingWebhook{verdict: judge.Verdict{Verdict: judge.OutcomeReject, Message: "Nein.", Club: "Berghain"}}
	r := newTestEngine(config.Config{Mode: "webhook", WebhookURL: "http://example.com/judge"}, wh, "VIP2024")

	rec, _ := postJudge(t, r, []formField{{"club", "Berghain"}, {"code", "vip2024"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for lowercase code, got %d", rec.Code)
	}
	if wh.calls != 1 {
		t.Fatalf("expected one delegate call, got %d", wh.calls)
	}
}

func TestVerifyGuestlist(t *testing.T) {
	r := newTestEngine(config.Config{Mode: "mock"}, nil, "VIP2024")

	tests := []struct {
		body   string
		status int
		valid  bool
	}{
		{`{"code":"vip2024"}`, http.StatusOK, true},
		{`{"code":"VIP2024"}`, http.StatusOK, true},
		{`{"code":"WRONG"}`, http.StatusUnauthorized, false},
		{`{"code":""}`, http.StatusUnauthorized, false},
		{`not json`, http.StatusUnauthorized, false},
	}
	for _, tc := range tests {
		req := httptest.NewRequest("POST", "/api/verify-guestlist", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("body %q: expected %d, got %d", tc.body, tc.status, rec.Code)
		}
		var resp struct {
			Valid bool `json:"valid"`
		}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Valid != tc.valid {
			t.Fatalf("body %q: expected valid=%v, got %v", tc.body, tc.valid, resp.Valid)
		}
	}
}

func TestVerifyGuestlistOpenWhenUnset(t *testing.T) {
	r := newTestEngine(config.Config{Mode: "mock"}, nil, "")
	req := httptest.NewRequest("POST", "/api/verify-guestlist", strings.NewReader(`{"code":""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with no code configured, got %d", rec.Code)
	}
}

func TestTestImagesEndpoint(t *testing.T) {
	r := newTestEngine(config.Config{Mode: "mock"}, nil, "")
	req := httptest.NewRequest("GET", "/api/test-images", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Images []string `json:"images"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Images) == 0 {
		t.Fatal("expected at least one bundled test image")
	}
}
