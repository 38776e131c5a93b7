package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
	"github.com/ivankudzin/matchrank/internal/domain/model"
	signalsvc "github.com/ivankudzin/matchrank/internal/services/signals"
	"github.com/ivankudzin/matchrank/internal/transport/http/dto"
	"github.com/ivankudzin/matchrank/internal/transport/http/identity"
)

type stubSignalRecorder struct {
	lastInput signalsvc.RecordInput
	lastCall  string
	mutual    bool
}

func (s *stubSignalRecorder) result(t enums.SignalType) signalsvc.RecordResult {
	return signalsvc.RecordResult{
		Signal:      model.Signal{ID: "sig-1", Type: t},
		MutualMatch: s.mutual,
	}
}

func (s *stubSignalRecorder) Record(_ context.Context, in signalsvc.RecordInput) (signalsvc.RecordResult, error) {
	s.lastCall = "record"
	s.lastInput = in
	if !in.Type.Valid() {
		return signalsvc.RecordResult{}, enums.ErrUnknownSignalType
	}
	return s.result(in.Type), nil
}

func (s *stubSignalRecorder) RecordProfileView(_ context.Context, actorUserID, targetUserID, _ int64) (signalsvc.RecordResult, error) {
	s.lastCall = "view"
	s.lastInput = signalsvc.RecordInput{ActorUserID: actorUserID, TargetUserID: targetUserID}
	return s.result(enums.SignalProfileViewLong), nil
}

func (s *stubSignalRecorder) RecordSwipe(_ context.Context, actorUserID, targetUserID int64, direction string, _ int64) (signalsvc.RecordResult, error) {
	s.lastCall = "swipe"
	s.lastInput = signalsvc.RecordInput{ActorUserID: actorUserID, TargetUserID: targetUserID}
	if direction == "right" {
		return s.result(enums.SignalRightSwipe), nil
	}
	return s.result(enums.SignalLeftSwipe), nil
}

func (s *stubSignalRecorder) RecordPaidInteraction(_ context.Context, actorUserID, targetUserID int64, _ string) (signalsvc.RecordResult, error) {
	s.lastCall = "paid"
	s.lastInput = signalsvc.RecordInput{ActorUserID: actorUserID, TargetUserID: targetUserID}
	return s.result(enums.SignalGiftSent), nil
}

func postSignal(t *testing.T, handler *SignalsHandler, viewerID int64, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/signals", strings.NewReader(body))
	if viewerID > 0 {
		req = req.WithContext(identity.With(req.Context(), viewerID))
	}
	rec := httptest.NewRecorder()
	handler.Record(rec, req)
	return rec
}

func TestSignalsHandlerRequiresIdentity(t *testing.T) {
	handler := NewSignalsHandler(&stubSignalRecorder{}, nil)

	rec := postSignal(t, handler, 0, `{"target_user_id": 2, "type": "RIGHT_SWIPE"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestSignalsHandlerDispatchesSwipePayload(t *testing.T) {
	recorder := &stubSignalRecorder{mutual: true}
	handler := NewSignalsHandler(recorder, nil)

	rec := postSignal(t, handler, 1, `{"target_user_id": 2, "swipe": {"direction": "right", "view_duration_ms": 3000}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if recorder.lastCall != "swipe" {
		t.Fatalf("dispatched to %q, want swipe", recorder.lastCall)
	}

	var payload dto.RecordSignalResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.SignalID != "sig-1" || !payload.MutualMatch {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestSignalsHandlerRawType(t *testing.T) {
	recorder := &stubSignalRecorder{}
	handler := NewSignalsHandler(recorder, nil)

	rec := postSignal(t, handler, 1, `{"target_user_id": 2, "type": "MESSAGE_SENT"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if recorder.lastCall != "record" {
		t.Fatalf("dispatched to %q, want record", recorder.lastCall)
	}
	if recorder.lastInput.ActorUserID != 1 || recorder.lastInput.TargetUserID != 2 {
		t.Fatalf("identity not forwarded: %+v", recorder.lastInput)
	}
}

func TestSignalsHandlerRejectsEmptyBody(t *testing.T) {
	handler := NewSignalsHandler(&stubSignalRecorder{}, nil)

	rec := postSignal(t, handler, 1, `{"target_user_id": 2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("payload without a signal shape must 400, got %d", rec.Code)
	}

	rec = postSignal(t, handler, 1, `{"target_user_id": 2, "type": "SUPER_POKE"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown type must 400, got %d", rec.Code)
	}

	rec = postSignal(t, handler, 1, `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body must 400, got %d", rec.Code)
	}
}
