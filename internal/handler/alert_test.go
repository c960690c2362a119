package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/apiwatch/apiwatch/internal/diag"
	"github.com/apiwatch/apiwatch/internal/model"
	"github.com/apiwatch/apiwatch/internal/repository"
)

// fakeAlertStore records calls and returns canned results.
type fakeAlertStore struct {
	updateCalls int
	lastUserID  string
	lastAlertID string
	lastFields  map[string]any

	alert *model.Alert
	err   error
}

func (f *fakeAlertStore) UpdateAlert(_ context.Context, userID, alertID string, fields map[string]any) (*model.Alert, error) {
	f.updateCalls++
	f.lastUserID = userID
	f.lastAlertID = alertID
	f.lastFields = fields
	if f.err != nil {
		return nil, f.err
	}
	return f.alert, nil
}

func (f *fakeAlertStore) ListAlerts(_ context.Context, userID string) ([]*model.Alert, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.alert == nil {
		return nil, nil
	}
	return []*model.Alert{f.alert}, nil
}

func testAlert() *model.Alert {
	return &model.Alert{
		ID:        "alert-1",
		UserID:    "user-1",
		APIID:     "api-1",
		Status:    model.AlertStatusAcknowledged,
		Severity:  "warning",
		Message:   "latency above threshold",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestAlertUpdate_Unauthenticated(t *testing.T) {
	store := &fakeAlertStore{alert: testAlert()}
	l, _ := newDiag()
	h := NewAlertHandler(store, l, discardLogger())

	req := httptest.NewRequest(http.MethodPatch, "/alerts/alert-1", strings.NewReader(`{"status":"acknowledged"}`))
	req = withURLParam(req, "id", "alert-1")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if store.updateCalls != 0 {
		t.Error("store must not be touched for unauthenticated requests")
	}
}

func TestAlertUpdate_Success(t *testing.T) {
	store := &fakeAlertStore{alert: testAlert()}
	l, sink := newDiag()
	h := NewAlertHandler(store, l, discardLogger())

	req := httptest.NewRequest(http.MethodPatch, "/alerts/alert-1", strings.NewReader(`{"status":"acknowledged","acknowledged":true}`))
	req = withSession(req, testSession())
	req = withURLParam(req, "id", "alert-1")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if store.lastUserID != "user-1" || store.lastAlertID != "alert-1" {
		t.Errorf("update not scoped to caller: user=%s alert=%s", store.lastUserID, store.lastAlertID)
	}
	if store.lastFields["status"] != "acknowledged" {
		t.Errorf("fields not passed through: %v", store.lastFields)
	}

	var got model.Alert
	decodeJSON(t, rec, &got)
	if got.ID != "alert-1" {
		t.Errorf("unexpected alert in response: %+v", got)
	}

	drainDiag(t, l)
	if len(sink.ByStep(diag.StepAlertUpdate)) != 1 {
		t.Error("expected an alert_update diagnostic event")
	}
}

func TestAlertUpdate_WrongOwnerIsGenericFailure(t *testing.T) {
	// Zero matched rows: wrong id or wrong owner, the store cannot tell.
	store := &fakeAlertStore{err: repository.ErrNoRowsUpdated}
	l, sink := newDiag()
	h := NewAlertHandler(store, l, discardLogger())

	req := httptest.NewRequest(http.MethodPatch, "/alerts/alert-2", strings.NewReader(`{"status":"resolved"}`))
	req = withSession(req, testSession())
	req = withURLParam(req, "id", "alert-2")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "owner") {
		t.Errorf("response leaked internal detail: %s", rec.Body.String())
	}

	drainDiag(t, l)
	errEvents := sink.ByStep(diag.StepError)
	if len(errEvents) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(errEvents))
	}
	if len(errEvents[0].Errors) == 0 || errEvents[0].Errors[0] == "" {
		t.Error("error event must carry a non-empty message")
	}
}

func TestAlertUpdate_StoreFailure(t *testing.T) {
	store := &fakeAlertStore{err: errors.New("connection reset")}
	l, sink := newDiag()
	h := NewAlertHandler(store, l, discardLogger())

	req := httptest.NewRequest(http.MethodPatch, "/alerts/alert-1", strings.NewReader(`{"status":"resolved"}`))
	req = withSession(req, testSession())
	req = withURLParam(req, "id", "alert-1")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Errorf("response leaked store error: %s", rec.Body.String())
	}

	drainDiag(t, l)
	if len(sink.ByStep(diag.StepError)) != 1 {
		t.Error("expected an error diagnostic event")
	}
}

func TestAlertUpdate_MalformedBody(t *testing.T) {
	store := &fakeAlertStore{alert: testAlert()}
	l, _ := newDiag()
	h := NewAlertHandler(store, l, discardLogger())

	req := httptest.NewRequest(http.MethodPatch, "/alerts/alert-1", strings.NewReader(`{not json`))
	req = withSession(req, testSession())
	req = withURLParam(req, "id", "alert-1")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if store.updateCalls != 0 {
		t.Error("store must not be touched for malformed bodies")
	}
}

func TestAlertUpdate_EmptyPayload(t *testing.T) {
	store := &fakeAlertStore{err: repository.ErrNoFieldsToUpdate}
	l, _ := newDiag()
	h := NewAlertHandler(store, l, discardLogger())

	req := httptest.NewRequest(http.MethodPatch, "/alerts/alert-1", strings.NewReader(`{}`))
	req = withSession(req, testSession())
	req = withURLParam(req, "id", "alert-1")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAlertList_Success(t *testing.T) {
	store := &fakeAlertStore{alert: testAlert()}
	l, _ := newDiag()
	h := NewAlertHandler(store, l, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	req = withSession(req, testSession())
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got []*model.Alert
	decodeJSON(t, rec, &got)
	if len(got) != 1 || got[0].ID != "alert-1" {
		t.Errorf("unexpected alerts: %+v", got)
	}
}
