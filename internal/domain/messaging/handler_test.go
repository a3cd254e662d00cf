package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsys/medsys/internal/domain/identity"
	"github.com/medsys/medsys/internal/platform/auth"
)

func newRequestContext(method, target, body, userID, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID)
	ctx = context.WithValue(ctx, auth.UserRoleKey, role)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSendHandler_NoAssignedDoctorIs403(t *testing.T) {
	svc, repo, _, profiles := newTestService()
	senderUserID, _ := addPatientSender(repo, profiles, "Pat Doe")
	h := NewHandler(svc)

	c, _ := newRequestContext(http.MethodPost, "/patient/message/send/",
		`{"subject":"pain","body":"it hurts"}`, senderUserID.String(), string(identity.RolePatient))

	err := h.Send(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
	if httpErr.Message != "no assigned doctor" {
		t.Errorf("unexpected message: %v", httpErr.Message)
	}
}

func TestSendHandler_Created(t *testing.T) {
	svc, repo, resolver, profiles := newTestService()
	senderUserID, patientID := addPatientSender(repo, profiles, "Pat Doe")
	resolver.recipients[patientID] = uuid.New()
	h := NewHandler(svc)

	c, rec := newRequestContext(http.MethodPost, "/patient/message/send/",
		`{"subject":"pain","body":"it hurts"}`, senderUserID.String(), string(identity.RolePatient))

	if err := h.Send(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestInboxHandler(t *testing.T) {
	svc, repo, resolver, profiles := newTestService()
	doctorUserID := uuid.New()
	alice, alicePatient := addPatientSender(repo, profiles, "Alice One")
	resolver.recipients[alicePatient] = doctorUserID
	if _, err := svc.Send(context.Background(), alice, SendRequest{Subject: "s", Body: "b"}); err != nil {
		t.Fatalf("sending: %v", err)
	}
	h := NewHandler(svc)

	c, rec := newRequestContext(http.MethodGet, "/staff/inbox/", "", doctorUserID.String(), string(identity.RoleStaff))
	if err := h.Inbox(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Alice One") {
		t.Error("expected sender's patient name in inbox payload")
	}
}

func TestMarkReadHandler_NonRecipientIs403(t *testing.T) {
	svc, repo, resolver, profiles := newTestService()
	doctorUserID := uuid.New()
	alice, alicePatient := addPatientSender(repo, profiles, "Alice One")
	resolver.recipients[alicePatient] = doctorUserID
	m, err := svc.Send(context.Background(), alice, SendRequest{Subject: "s", Body: "b"})
	if err != nil {
		t.Fatalf("sending: %v", err)
	}
	h := NewHandler(svc)

	c, _ := newRequestContext(http.MethodPost, "/", "", uuid.NewString(), string(identity.RoleStaff))
	c.SetParamNames("id")
	c.SetParamValues(m.ID.String())

	handlerErr := h.MarkRead(c)
	httpErr, ok := handlerErr.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", handlerErr)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestMarkReadHandler_UnknownMessageIs404(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)

	c, _ := newRequestContext(http.MethodPost, "/", "", uuid.NewString(), string(identity.RoleStaff))
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.MarkRead(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}
