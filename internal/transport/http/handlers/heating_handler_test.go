package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
	"github.com/ivankudzin/matchrank/internal/domain/model"
	"github.com/ivankudzin/matchrank/internal/transport/http/identity"
)

type stubHeatingManager struct {
	state       model.HeatingState
	expired     int64
	lastTrigger enums.HeatingTrigger
}

func (s *stubHeatingManager) Activate(_ context.Context, userID int64, trigger enums.HeatingTrigger) (model.HeatingState, error) {
	if !trigger.Valid() {
		return model.HeatingState{}, enums.ErrUnknownHeatingTrigger
	}
	s.lastTrigger = trigger
	s.state.UserID = userID
	return s.state, nil
}

func (s *stubHeatingManager) GetCurrent(_ context.Context, userID int64) (model.HeatingState, error) {
	s.state.UserID = userID
	return s.state, nil
}

func (s *stubHeatingManager) Deactivate(_ context.Context, _ int64) (int64, error) {
	return s.expired, nil
}

func heatingRouter(h *HeatingHandler) chi.Router {
	r := chi.NewRouter()
	r.Get("/users/{id}/heating", h.Get)
	r.Post("/internal/heating/activate", h.Activate)
	r.Delete("/admin/users/{id}/heating", h.Deactivate)
	return r
}

func TestHeatingGetSelfOnly(t *testing.T) {
	handler := NewHeatingHandler(&stubHeatingManager{}, nil)
	router := heatingRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/users/2/heating", nil)
	req = req.WithContext(identity.With(req.Context(), 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusForbidden)
	}
}

func TestHeatingGetReturnsState(t *testing.T) {
	manager := &stubHeatingManager{state: model.HeatingState{
		IsHeated:  true,
		HeatLevel: 72.5,
		Trigger:   enums.HeatingTriggerMatchReceived,
	}}
	handler := NewHeatingHandler(manager, nil)
	router := heatingRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/users/1/heating", nil)
	req = req.WithContext(identity.With(req.Context(), 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var state model.HeatingState
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !state.IsHeated || state.HeatLevel != 72.5 || state.UserID != 1 {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestHeatingActivate(t *testing.T) {
	manager := &stubHeatingManager{state: model.HeatingState{IsHeated: true, HeatLevel: 80}}
	handler := NewHeatingHandler(manager, nil)
	router := heatingRouter(handler)

	body := `{"user_id": 7, "trigger": "MATCH_RECEIVED"}`
	req := httptest.NewRequest(http.MethodPost, "/internal/heating/activate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if manager.lastTrigger != enums.HeatingTriggerMatchReceived {
		t.Fatalf("trigger not forwarded: %s", manager.lastTrigger)
	}
}

func TestHeatingActivateUnknownTrigger(t *testing.T) {
	handler := NewHeatingHandler(&stubHeatingManager{}, nil)
	router := heatingRouter(handler)

	body := `{"user_id": 7, "trigger": "WOKE_UP"}`
	req := httptest.NewRequest(http.MethodPost, "/internal/heating/activate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHeatingDeactivate(t *testing.T) {
	manager := &stubHeatingManager{expired: 2}
	handler := NewHeatingHandler(manager, nil)
	router := heatingRouter(handler)

	req := httptest.NewRequest(http.MethodDelete, "/admin/users/7/heating", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Expired int64 `json:"expired"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Expired != 2 {
		t.Fatalf("unexpected expired count: got %d want 2", payload.Expired)
	}
}
