package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/ports"
)

type stubIncidentService struct {
	lastActor ports.Actor
	lastInput ports.IncidentInput
	lastID    int64
	detail    ports.IncidentDetail
	err       error
}

func (s *stubIncidentService) ListAll(_ context.Context, a ports.Actor) ([]ports.IncidentDetail, error) {
	s.lastActor = a
	return []ports.IncidentDetail{s.detail}, s.err
}

func (s *stubIncidentService) ListByReporter(_ context.Context, a ports.Actor, id int64) ([]ports.IncidentDetail, error) {
	s.lastActor, s.lastID = a, id
	return []ports.IncidentDetail{s.detail}, s.err
}

func (s *stubIncidentService) Get(_ context.Context, a ports.Actor, id int64) (*ports.IncidentDetail, error) {
	s.lastActor, s.lastID = a, id
	if s.err != nil {
		return nil, s.err
	}
	return &s.detail, nil
}

func (s *stubIncidentService) Create(_ context.Context, a ports.Actor, in ports.IncidentInput) (*ports.IncidentDetail, error) {
	s.lastActor, s.lastInput = a, in
	if s.err != nil {
		return nil, s.err
	}
	return &s.detail, nil
}

func (s *stubIncidentService) Update(_ context.Context, a ports.Actor, id int64, in ports.IncidentInput) (*ports.IncidentDetail, error) {
	s.lastActor, s.lastID, s.lastInput = a, id, in
	if s.err != nil {
		return nil, s.err
	}
	return &s.detail, nil
}

func (s *stubIncidentService) Delete(_ context.Context, a ports.Actor, id int64) error {
	s.lastActor, s.lastID = a, id
	return s.err
}

func sampleDetail() ports.IncidentDetail {
	reported := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	return ports.IncidentDetail{
		Incident: &domain.Incident{
			ID: 11, CategoryID: 2, ReporterID: 7, Description: "pothole",
			Status: domain.StatusReported, Location: domain.GeoPoint{Lng: -77.03, Lat: 3.88},
			ReportedAt: reported, UpdatedAt: reported,
		},
		Category: &domain.Category{ID: 2, Name: "Baches"},
		Reporter: &domain.User{ID: 7, Name: "Rita"},
	}
}

func withClaims(c echo.Context, id int64, roles ...string) {
	c.Set("claims", ports.TokenClaims{UserID: id, Roles: roles})
}

func TestIncidentHandler_Create(t *testing.T) {
	e := newEcho()
	stub := &stubIncidentService{detail: sampleDetail()}
	h := NewIncidentHandler(stub)

	body := `{"category_id":2,"description":"pothole","location":{"type":"Point","coordinates":[-77.03,3.88]}}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/incidents", body), rec)
	withClaims(c, 7, "reporter")

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if stub.lastInput.CategoryID != 2 || stub.lastInput.Location.Lng != -77.03 || stub.lastInput.Location.Lat != 3.88 {
		t.Fatalf("unexpected input: %+v", stub.lastInput)
	}
	if stub.lastActor.UserID != 7 || stub.lastActor.Admin {
		t.Fatalf("unexpected actor: %+v", stub.lastActor)
	}

	data, _ := decodeBody(t, rec)["data"].(map[string]any)
	attrs, _ := data["attributes"].(map[string]any)
	loc, _ := attrs["location"].(map[string]any)
	if loc["type"] != "Point" {
		t.Fatalf("expected GeoJSON location, got %v", attrs["location"])
	}
	rels, _ := data["relationships"].(map[string]any)
	if _, ok := rels["category"]; !ok {
		t.Fatalf("expected embedded category, got %v", rels)
	}
}

func TestIncidentHandler_Create_RejectsBadLocation(t *testing.T) {
	cases := map[string]string{
		"wrong type":   `{"category_id":2,"description":"x","location":{"type":"Polygon","coordinates":[1,2]}}`,
		"one coord":    `{"category_id":2,"description":"x","location":{"type":"Point","coordinates":[1]}}`,
		"out of range": `{"category_id":2,"description":"x","location":{"type":"Point","coordinates":[200,2]}}`,
		"no category":  `{"description":"x","location":{"type":"Point","coordinates":[1,2]}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			e := newEcho()
			stub := &stubIncidentService{detail: sampleDetail()}
			c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/incidents", body), httptest.NewRecorder())
			withClaims(c, 7)

			err := NewIncidentHandler(stub).Create(c)
			if _, ok := err.(FieldErrors); !ok {
				t.Fatalf("expected FieldErrors, got %T %v", err, err)
			}
			if stub.lastActor.UserID != 0 {
				t.Fatal("service must not be called")
			}
		})
	}
}

func TestIncidentHandler_ListByUser(t *testing.T) {
	e := newEcho()
	stub := &stubIncidentService{detail: sampleDetail()}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/users/7/incidents", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	withClaims(c, 7, "reporter")

	if err := NewIncidentHandler(stub).ListByUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastID != 7 {
		t.Fatalf("expected reporter 7, got %d", stub.lastID)
	}
	data, _ := decodeBody(t, rec)["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected one incident, got %d", len(data))
	}
}

func TestIncidentHandler_Update_PassesStatus(t *testing.T) {
	e := newEcho()
	stub := &stubIncidentService{detail: sampleDetail()}

	body := `{"category_id":2,"description":"x","location":{"type":"Point","coordinates":[1,2]},"status":"in_progress"}`
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/v1/incidents/11", body), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("11")
	withClaims(c, 1, "ADMIN")

	if err := NewIncidentHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastInput.Status != domain.StatusInProgress {
		t.Fatalf("expected status in_progress, got %q", stub.lastInput.Status)
	}
	if !stub.lastActor.Admin {
		t.Fatal("expected admin actor for ADMIN role")
	}
}

func TestIncidentHandler_Delete_BadID(t *testing.T) {
	e := newEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/v1/incidents/abc", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")
	withClaims(c, 1)

	err := NewIncidentHandler(&stubIncidentService{}).Delete(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
