package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apiwatch/apiwatch/internal/diag"
	"github.com/apiwatch/apiwatch/internal/handler/dto"
	"github.com/apiwatch/apiwatch/internal/model"
)

type fakePortalClient struct {
	url string
	err error

	calls          int
	lastCustomerID string
	lastReturnURL  string
}

func (f *fakePortalClient) CreatePortalSession(_ context.Context, customerID, returnURL string) (string, error) {
	f.calls++
	f.lastCustomerID = customerID
	f.lastReturnURL = returnURL
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func billingUser(customerID string) *model.User {
	u := testUser()
	if customerID != "" {
		u.StripeCustomerID = &customerID
	}
	return u
}

func TestBillingCreatePortal_Unauthenticated(t *testing.T) {
	portal := &fakePortalClient{url: "https://billing.example.com/p/sess_1"}
	l, _ := newDiag()
	h := NewBillingHandler(&fakeUserStore{user: billingUser("cus_123")}, portal, "https://apiwatch.dev/billing", l, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/billing/create-portal", nil)
	rec := httptest.NewRecorder()

	h.CreatePortal(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if portal.calls != 0 {
		t.Error("portal must not be called for anonymous requests")
	}
}

func TestBillingCreatePortal_Success(t *testing.T) {
	portal := &fakePortalClient{url: "https://billing.example.com/p/sess_1"}
	l, _ := newDiag()
	h := NewBillingHandler(&fakeUserStore{user: billingUser("cus_123")}, portal, "https://apiwatch.dev/billing", l, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/billing/create-portal", nil)
	req = withSession(req, testSession())
	rec := httptest.NewRecorder()

	h.CreatePortal(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if portal.lastCustomerID != "cus_123" {
		t.Errorf("portal called with wrong customer: %s", portal.lastCustomerID)
	}
	if portal.lastReturnURL != "https://apiwatch.dev/billing" {
		t.Errorf("portal called with wrong return URL: %s", portal.lastReturnURL)
	}

	var got dto.PortalResponse
	decodeJSON(t, rec, &got)
	if got.URL == "" {
		t.Error("response must carry a non-empty portal URL")
	}
}

func TestBillingCreatePortal_NoCustomer(t *testing.T) {
	portal := &fakePortalClient{url: "https://billing.example.com/p/sess_1"}
	l, _ := newDiag()
	h := NewBillingHandler(&fakeUserStore{user: billingUser("")}, portal, "https://apiwatch.dev/billing", l, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/billing/create-portal", nil)
	req = withSession(req, testSession())
	rec := httptest.NewRecorder()

	h.CreatePortal(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if portal.calls != 0 {
		t.Error("portal must not be called without a linked customer")
	}
	if strings.Contains(rec.Body.String(), "url") {
		t.Errorf("404 body must not carry a portal URL: %s", rec.Body.String())
	}
}

func TestBillingCreatePortal_UserLookupFailure(t *testing.T) {
	portal := &fakePortalClient{}
	l, sink := newDiag()
	h := NewBillingHandler(&fakeUserStore{err: errors.New("db down")}, portal, "https://apiwatch.dev/billing", l, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/billing/create-portal", nil)
	req = withSession(req, testSession())
	rec := httptest.NewRecorder()

	h.CreatePortal(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "db down") {
		t.Errorf("response leaked store error: %s", rec.Body.String())
	}

	drainDiag(t, l)
	if len(sink.ByStep(diag.StepError)) != 1 {
		t.Error("expected an error diagnostic event")
	}
}

func TestBillingCreatePortal_ProcessorFailureIsOpaque(t *testing.T) {
	// Processor detail stays in logs; the caller gets the generic body.
	portal := &fakePortalClient{err: errors.New("stripe: invalid api key sk_live_xyz")}
	l, sink := newDiag()
	h := NewBillingHandler(&fakeUserStore{user: billingUser("cus_123")}, portal, "https://apiwatch.dev/billing", l, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/billing/create-portal", nil)
	req = withSession(req, testSession())
	rec := httptest.NewRecorder()

	h.CreatePortal(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "stripe") || strings.Contains(body, "sk_live") {
		t.Errorf("response leaked processor detail: %s", body)
	}

	drainDiag(t, l)
	errEvents := sink.ByStep(diag.StepError)
	if len(errEvents) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(errEvents))
	}
	if len(errEvents[0].Errors) == 0 {
		t.Error("error event must carry the processor failure")
	}
}
