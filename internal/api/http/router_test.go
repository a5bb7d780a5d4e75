package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap/zaptest"

	"github.com/hairult/hairstyle-service/internal/api/http/handlers"
	"github.com/hairult/hairstyle-service/internal/auth"
	"github.com/hairult/hairstyle-service/internal/domain"
	"github.com/hairult/hairstyle-service/internal/imagecodec"
	"github.com/hairult/hairstyle-service/internal/observability"
	"github.com/hairult/hairstyle-service/internal/service"
	apperrors "github.com/hairult/hairstyle-service/pkg/util/errorutil"
)

const (
	testGuestID    = "3d6f1b0e-8a41-4c1e-9b0a-2f1f7c0e9d11"
	testCronSecret = "cron-secret"
)

type stubSubmitter struct {
	got service.SubmissionInput
	err error
}

func (s *stubSubmitter) Submit(_ context.Context, input service.SubmissionInput) (*service.Submission, error) {
	s.got = input
	if s.err != nil {
		return nil, s.err
	}
	sub := &service.Submission{Guest: domain.Guest{ID: testGuestID, Email: input.Email}}
	for _, id := range input.HairstyleIDs {
		sub.Suggestions = append(sub.Suggestions, domain.HairstyleSuggestion{
			ID: "s-" + id, GuestID: testGuestID, HairstyleID: id, Status: domain.SuggestionStatusPending,
		})
	}
	return sub, nil
}

type stubResults struct{}

func (stubResults) GetResults(_ context.Context, guestID string) (*service.Results, error) {
	if guestID != testGuestID {
		return nil, apperrors.NewNotFound("guest", nil)
	}
	return &service.Results{
		Guest:       domain.Guest{ID: guestID, Email: "guest@example.com"},
		PortraitURL: "https://cdn.test/p.png",
		Suggestions: []service.SuggestionResult{
			{ID: "s1", HairstyleName: "Bob", Status: domain.SuggestionStatusCompleted, ImageURL: "https://cdn.test/r.webp"},
			{ID: "s2", HairstyleName: "Pixie", Status: domain.SuggestionStatusFailed, Error: "no image returned"},
		},
	}, nil
}

type stubCatalog struct{ created int }

func (s *stubCatalog) List(context.Context) ([]domain.Hairstyle, error) {
	return []domain.Hairstyle{{ID: "h1", Name: "Bob", HairLength: domain.HairLengthEarToJaw}}, nil
}

func (s *stubCatalog) Get(_ context.Context, id string) (*domain.Hairstyle, error) {
	return nil, apperrors.NewNotFound("hairstyle", map[string]any{"id": id})
}

func (s *stubCatalog) Create(_ context.Context, input service.HairstyleInput) (*domain.Hairstyle, error) {
	s.created++
	return &domain.Hairstyle{ID: "h2", Name: input.Name, HairLength: domain.HairLength(input.HairLength)}, nil
}

type stubSweeper struct {
	calls   int
	hasDead bool
}

func (s *stubSweeper) Sweep(ctx context.Context) (service.SweepReport, error) {
	s.calls++
	_, s.hasDead = ctx.Deadline()
	return service.SweepReport{Fetched: 2, Claimed: 2, Completed: 1, Failed: 1}, nil
}

type stubAdmin struct{ olderThan time.Duration }

func (s *stubAdmin) ListSuggestions(_ context.Context, status domain.SuggestionStatus, _ int) ([]domain.HairstyleSuggestion, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", nil)
	}
	return []domain.HairstyleSuggestion{{ID: "s1", Status: status}}, nil
}

func (s *stubAdmin) SuggestionHistory(_ context.Context, id string) ([]domain.SuggestionHistory, error) {
	return []domain.SuggestionHistory{
		{ID: "e1", SuggestionID: id, EventType: "submission_received", Status: domain.SuggestionStatusPending},
		{ID: "e2", SuggestionID: id, EventType: "suggestion_claimed", Status: domain.SuggestionStatusGenerating},
	}, nil
}

func (s *stubAdmin) RecoverStale(_ context.Context, olderThan time.Duration) (int64, error) {
	s.olderThan = olderThan
	return 3, nil
}

func (s *stubAdmin) Login(_ context.Context, username, password string) (*service.AdminToken, error) {
	if username != "ops" || password != "pw" {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return &service.AdminToken{Token: "signed", Role: domain.AdminRoleAdmin}, nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testServer struct {
	app       *fiber.App
	submitter *stubSubmitter
	catalog   *stubCatalog
	sweeper   *stubSweeper
	admin     *stubAdmin
	tokens    *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	metrics := observability.NewMetrics()
	ts := &testServer{
		submitter: &stubSubmitter{},
		catalog:   &stubCatalog{},
		sweeper:   &stubSweeper{},
		admin:     &stubAdmin{},
		tokens:    auth.NewTokenManager("jwt-secret", time.Minute),
	}
	ts.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	RegisterMiddlewares(ts.app, logger, metrics, time.Second)
	RegisterRoutes(ts.app, RouteConfig{
		Health:          handlers.NewHealthHandler("test", "dev", map[string]handlers.Pinger{"postgres": failingPinger{}, "redis": nil}),
		Submissions:     handlers.NewSubmissionHandler(ts.submitter, "https://hair.example/", 1<<20),
		Results:         handlers.NewResultsHandler(stubResults{}),
		Hairstyles:      handlers.NewHairstylesHandler(ts.catalog),
		Sweep:           handlers.NewSweepHandler(ts.sweeper, time.Minute),
		Admin:           handlers.NewAdminHandler(ts.admin, ts.admin, ts.admin, metrics),
		AdminMiddleware: auth.NewAdminMiddleware(ts.tokens),
		CronSecret:      testCronSecret,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := ts.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	body := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode body %q: %v", raw, err)
		}
	}
	return resp, body
}

func (ts *testServer) token(t *testing.T, role domain.AdminRole) string {
	t.Helper()
	tok, _, err := ts.tokens.GenerateToken("ops", role)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return "Bearer " + tok
}

func jsonRequest(method, path string, payload any) *http.Request {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(payload)
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	return req
}

func multipartRequest(t *testing.T, email string, ids []string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("email", email)
	for _, id := range ids {
		_ = w.WriteField("hairstyle_ids", id)
	}
	part, err := w.CreateFormFile("image", "me.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = part.Write(image)
	_ = w.Close()
	req := httptest.NewRequest(http.MethodPost, "/submissions", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestSubmitJSON(t *testing.T) {
	ts := newTestServer(t)
	image := []byte("\x89PNG\r\n\x1a\nrest")

	resp, body := ts.do(t, jsonRequest(http.MethodPost, "/submissions", map[string]any{
		"email":         "guest@example.com",
		"hairstyle_ids": []string{"a", "b"},
		"image":         "data:image/png;base64," + imagecodec.EncodeBase64(image),
	}))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	if data["guest_id"] != testGuestID {
		t.Fatalf("guest_id = %v", data["guest_id"])
	}
	if data["results_url"] != "https://hair.example/results/"+testGuestID {
		t.Fatalf("results_url = %v", data["results_url"])
	}
	if n := len(data["suggestions"].([]any)); n != 2 {
		t.Fatalf("expected 2 suggestions, got %d", n)
	}
	if !bytes.Equal(ts.submitter.got.Image, image) {
		t.Fatalf("image not decoded: %q", ts.submitter.got.Image)
	}
}

func TestSubmitJSONRejectsBadImageEncoding(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, jsonRequest(http.MethodPost, "/submissions", map[string]any{
		"email": "guest@example.com", "hairstyle_ids": []string{"a"}, "image": "%%%not base64%%%",
	}))
	if resp.StatusCode != http.StatusBadRequest || errorCode(body) != "VALIDATION_FAILED" {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}
}

func TestSubmitMultipartRedirectsToResults(t *testing.T) {
	ts := newTestServer(t)
	image := []byte("\xff\xd8\xffjpeg-ish")

	resp, _ := ts.do(t, multipartRequest(t, "guest@example.com", []string{"a", "b"}, image))
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/results/"+testGuestID {
		t.Fatalf("Location = %q", loc)
	}
	got := ts.submitter.got
	if got.Email != "guest@example.com" || len(got.HairstyleIDs) != 2 || !bytes.Equal(got.Image, image) {
		t.Fatalf("unexpected input %+v", got)
	}
}

func TestSubmitMultipartWithJSONAccept(t *testing.T) {
	ts := newTestServer(t)
	req := multipartRequest(t, "guest@example.com", []string{"a"}, []byte("\x89PNG\r\n\x1a\n"))
	req.Header.Set("Accept", "application/json")

	resp, body := ts.do(t, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}
}

func TestSubmitDuplicateEmailConflict(t *testing.T) {
	ts := newTestServer(t)
	ts.submitter.err = apperrors.NewDuplicateEmail("guest@example.com")

	resp, body := ts.do(t, jsonRequest(http.MethodPost, "/submissions", map[string]any{
		"email": "guest@example.com", "hairstyle_ids": []string{"a"}, "image": imagecodec.EncodeBase64([]byte("x")),
	}))
	if resp.StatusCode != http.StatusConflict || errorCode(body) != "DUPLICATE_EMAIL" {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}
}

func TestResults(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/results/"+testGuestID, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	items := body["data"].(map[string]any)["suggestions"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(items))
	}
	failed := items[1].(map[string]any)
	if _, ok := failed["image_url"]; ok {
		t.Fatal("failed row must not carry an image url")
	}

	resp, body = ts.do(t, httptest.NewRequest(http.MethodGet, "/results/unknown", nil))
	if resp.StatusCode != http.StatusNotFound || errorCode(body) != "NOT_FOUND" {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}
}

func TestCronSweepRequiresSecret(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/cron/sweep", nil))
	if resp.StatusCode != http.StatusUnauthorized || errorCode(body) != "UNAUTHORIZED" {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}

	req := httptest.NewRequest(http.MethodGet, "/cron/sweep", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	if resp, _ := ts.do(t, req); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong secret status = %d", resp.StatusCode)
	}
	if ts.sweeper.calls != 0 {
		t.Fatal("sweep ran without valid secret")
	}

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req := httptest.NewRequest(method, "/cron/sweep", nil)
		req.Header.Set("Authorization", "Bearer "+testCronSecret)
		resp, body := ts.do(t, req)
		if resp.StatusCode != http.StatusOK || body["status"] != "done" {
			t.Fatalf("%s status = %d, body %v", method, resp.StatusCode, body)
		}
		report := body["report"].(map[string]any)
		if report["completed"] != float64(1) || report["failed"] != float64(1) {
			t.Fatalf("unexpected report %v", report)
		}
	}
	if !ts.sweeper.hasDead {
		t.Fatal("sweep should run under its own deadline")
	}
}

func TestAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	payload := map[string]any{"name": "Wolf Cut", "hair_length": "Shoulder"}

	resp, _ := ts.do(t, jsonRequest(http.MethodPost, "/admin/hairstyles", payload))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous create status = %d", resp.StatusCode)
	}

	req := jsonRequest(http.MethodPost, "/admin/hairstyles", payload)
	req.Header.Set("Authorization", ts.token(t, domain.AdminRoleOperator))
	resp, body := ts.do(t, req)
	if resp.StatusCode != http.StatusForbidden || errorCode(body) != "FORBIDDEN" {
		t.Fatalf("operator create status = %d, body %v", resp.StatusCode, body)
	}

	req = jsonRequest(http.MethodPost, "/admin/hairstyles", payload)
	req.Header.Set("Authorization", ts.token(t, domain.AdminRoleAdmin))
	if resp, _ := ts.do(t, req); resp.StatusCode != http.StatusCreated || ts.catalog.created != 1 {
		t.Fatalf("admin create status = %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/suggestions?status=failed&limit=5", nil)
	req.Header.Set("Authorization", ts.token(t, domain.AdminRoleOperator))
	resp, body = ts.do(t, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	if first := body["data"].([]any)[0].(map[string]any); first["status"] != "FAILED" {
		t.Fatalf("status filter not applied: %v", first)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/suggestions/s1/history", nil)
	req.Header.Set("Authorization", ts.token(t, domain.AdminRoleOperator))
	resp, body = ts.do(t, req)
	if resp.StatusCode != http.StatusOK || len(body["data"].([]any)) != 2 {
		t.Fatalf("history status = %d, body %v", resp.StatusCode, body)
	}

	req = jsonRequest(http.MethodPost, "/admin/suggestions/recover", map[string]any{"older_than_minutes": 30})
	req.Header.Set("Authorization", ts.token(t, domain.AdminRoleAdmin))
	resp, body = ts.do(t, req)
	if resp.StatusCode != http.StatusOK || ts.admin.olderThan != 30*time.Minute {
		t.Fatalf("recover status = %d, olderThan %v", resp.StatusCode, ts.admin.olderThan)
	}
	if body["data"].(map[string]any)["recovered"] != float64(3) {
		t.Fatalf("unexpected recover body %v", body)
	}
}

func TestAdminLogin(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, jsonRequest(http.MethodPost, "/admin/login", map[string]any{"username": "ops", "password": "pw"}))
	if resp.StatusCode != http.StatusOK || body["data"].(map[string]any)["access_token"] != "signed" {
		t.Fatalf("login status = %d, body %v", resp.StatusCode, body)
	}

	resp, _ = ts.do(t, jsonRequest(http.MethodPost, "/admin/login", map[string]any{"username": "ops", "password": "nope"}))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", resp.StatusCode)
	}
}

func TestHealthAndFallbacks(t *testing.T) {
	ts := newTestServer(t)

	if resp, _ := ts.do(t, httptest.NewRequest(http.MethodGet, "/health/live", nil)); resp.StatusCode != http.StatusOK {
		t.Fatalf("live status = %d", resp.StatusCode)
	}

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.StatusCode != http.StatusServiceUnavailable || errorCode(body) != "DEPENDENCY_UNAVAILABLE" {
		t.Fatalf("ready status = %d, body %v", resp.StatusCode, body)
	}
	details := body["error"].(map[string]any)["details"].(map[string]any)
	if details["redis"] != "disabled" {
		t.Fatalf("nil check should report disabled, got %v", details["redis"])
	}

	resp, body = ts.do(t, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if resp.StatusCode != http.StatusNotFound || errorCode(body) != "NOT_FOUND" {
		t.Fatalf("unknown route status = %d, body %v", resp.StatusCode, body)
	}

	resp, body = ts.do(t, httptest.NewRequest(http.MethodGet, "/hairstyles/missing", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing hairstyle status = %d, body %v", resp.StatusCode, body)
	}
}
