package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/craftlane/personalizer-backend/internal/template"
	"github.com/craftlane/personalizer-backend/pkg/logger"
	"github.com/craftlane/personalizer-backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func requestWithURLParam(method, url, key, value string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

type stubTemplateService struct {
	saveInput   *template.SaveInput
	saveResult  *template.SaveResult
	saveErr     error
	loadResult  *template.LoadResult
	loadErr     error
	summaries   []template.Summary
	nextCursor  *pagination.Cursor
	deactivated string
}

func (s *stubTemplateService) Save(_ context.Context, input template.SaveInput) (*template.SaveResult, error) {
	s.saveInput = &input
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return s.saveResult, nil
}

func (s *stubTemplateService) Load(_ context.Context, productID string) (*template.LoadResult, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.loadResult, nil
}

func (s *stubTemplateService) List(_ context.Context, _ pagination.Params) ([]template.Summary, *pagination.Cursor, error) {
	return s.summaries, s.nextCursor, nil
}

func (s *stubTemplateService) Deactivate(_ context.Context, productID string) error {
	s.deactivated = productID
	return nil
}

func TestAdminSaveTemplate(t *testing.T) {
	logg := testLogger()

	t.Run("created", func(t *testing.T) {
		stub := &stubTemplateService{
			saveResult: &template.SaveResult{OptionSetID: uuid.New(), LinkID: uuid.New(), Created: true},
		}
		body := `{"product_id":"gid://shopify/Product/42","template":{"viewName":"Mug"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/templates", strings.NewReader(body))
		rec := httptest.NewRecorder()
		AdminSaveTemplate(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.saveInput == nil || stub.saveInput.ProductID != "gid://shopify/Product/42" {
			t.Fatalf("expected product id passed through, got %+v", stub.saveInput)
		}
	})

	t.Run("updated returns 200", func(t *testing.T) {
		stub := &stubTemplateService{
			saveResult: &template.SaveResult{OptionSetID: uuid.New(), LinkID: uuid.New(), Created: false},
		}
		body := `{"product_id":"42","template":{"viewName":"Mug"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/templates", strings.NewReader(body))
		rec := httptest.NewRecorder()
		AdminSaveTemplate(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
	})

	t.Run("missing template body", func(t *testing.T) {
		stub := &stubTemplateService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/templates", strings.NewReader(`{"product_id":"42"}`))
		rec := httptest.NewRecorder()
		AdminSaveTemplate(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
		if stub.saveInput != nil {
			t.Fatalf("service should not be called on invalid payload")
		}
	})
}

func TestAdminLoadTemplate(t *testing.T) {
	logg := testLogger()
	tmpl := template.NewTemplate("Front")

	stub := &stubTemplateService{
		loadResult: &template.LoadResult{
			OptionSetID: uuid.New(),
			Name:        "Mug personalization",
			Template:    &tmpl,
			UpdatedAt:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		},
	}

	req := requestWithURLParam(http.MethodGet, "/api/v1/admin/templates/42", "productID", "42", nil)
	rec := httptest.NewRecorder()
	AdminLoadTemplate(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Data struct {
			Name      string          `json:"name"`
			Template  json.RawMessage `json:"template"`
			UpdatedAt string          `json:"updated_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Data.Name != "Mug personalization" {
		t.Fatalf("unexpected name %q", payload.Data.Name)
	}
	if payload.Data.UpdatedAt != "2025-06-15T12:00:00Z" {
		t.Fatalf("unexpected updated_at %q", payload.Data.UpdatedAt)
	}
	decoded, err := template.Decode(payload.Data.Template)
	if err != nil {
		t.Fatalf("returned template should decode: %v", err)
	}
	if decoded.ViewName != "Front" {
		t.Fatalf("unexpected view name %q", decoded.ViewName)
	}
}

func TestAdminLoadTemplateRequiresProductID(t *testing.T) {
	req := requestWithURLParam(http.MethodGet, "/api/v1/admin/templates/", "productID", " ", nil)
	rec := httptest.NewRecorder()
	AdminLoadTemplate(&stubTemplateService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAdminListTemplates(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	next := pagination.Cursor{CreatedAt: now, ID: uuid.New()}
	stub := &stubTemplateService{
		summaries: []template.Summary{
			{OptionSetID: uuid.New(), Name: "Mug", IsActive: true, CreatedAt: now, UpdatedAt: now},
		},
		nextCursor: &next,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/templates?limit=1", nil)
	rec := httptest.NewRecorder()
	AdminListTemplates(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var payload struct {
		Data struct {
			Templates  []template.Summary `json:"templates"`
			NextCursor string             `json:"next_cursor"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(payload.Data.Templates) != 1 {
		t.Fatalf("expected 1 template got %d", len(payload.Data.Templates))
	}
	if payload.Data.NextCursor == "" {
		t.Fatalf("expected next cursor to be set")
	}
	cursor, err := pagination.ParseCursor(payload.Data.NextCursor)
	if err != nil || cursor == nil {
		t.Fatalf("next cursor should round-trip: %v", err)
	}
	if !cursor.CreatedAt.Equal(now) {
		t.Fatalf("unexpected cursor time %v", cursor.CreatedAt)
	}
}

func TestAdminDeactivateTemplate(t *testing.T) {
	stub := &stubTemplateService{}
	req := requestWithURLParam(http.MethodDelete, "/api/v1/admin/templates/42", "productID", "42", nil)
	rec := httptest.NewRecorder()
	AdminDeactivateTemplate(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.deactivated != "42" {
		t.Fatalf("expected deactivate called with 42, got %q", stub.deactivated)
	}
}
