package controllers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitordesk/internal/domain"
)

// fakeActionTokens accepts only "good-<visitorID>".
type fakeActionTokens struct{}

func (fakeActionTokens) Issue(visitorID string) string { return "good-" + visitorID }

func (fakeActionTokens) Verify(visitorID, token string) bool {
	return token == "good-"+visitorID
}

func newEmailActionRequest(method, action, visitorID, token string, body string) *http.Request {
	target := "http://test/email-actions/" + action + "/" + visitorID + "/" + token
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.SetPathValue("visitorID", visitorID)
	req.SetPathValue("token", token)
	return req
}

func TestEmailActionController_ApproveSuccess(t *testing.T) {
	fake := &fakeVisitorService{
		getVisitor:   sampleVisitor(domain.StatusAwaitingApproval),
		transVisitor: sampleVisitor(domain.StatusApproved),
	}
	ctrl := NewEmailActionController(controllerLogger(), fake, fakeActionTokens{})

	rr := httptest.NewRecorder()
	ctrl.Approve(rr, newEmailActionRequest(http.MethodGet, "approve", "v-1", "good-v-1", ""))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Visit approved")
	assert.Equal(t, domain.StatusApproved, fake.lastTarget)
	assert.Equal(t, "email", fake.lastActor)
}

// A bad token and an unknown visitor must be indistinguishable from the
// response: same status, same page.
func TestEmailActionController_InvalidLinkIsUniform(t *testing.T) {
	badToken := httptest.NewRecorder()
	ctrl := NewEmailActionController(controllerLogger(), &fakeVisitorService{
		getVisitor: sampleVisitor(domain.StatusAwaitingApproval),
	}, fakeActionTokens{})
	ctrl.Approve(badToken, newEmailActionRequest(http.MethodGet, "approve", "v-1", "wrong", ""))

	unknownVisitor := httptest.NewRecorder()
	ctrl = NewEmailActionController(controllerLogger(), &fakeVisitorService{
		getErr: domain.ErrNotFound,
	}, fakeActionTokens{})
	ctrl.Approve(unknownVisitor, newEmailActionRequest(http.MethodGet, "approve", "v-1", "good-v-1", ""))

	require.Equal(t, http.StatusForbidden, badToken.Code)
	require.Equal(t, http.StatusForbidden, unknownVisitor.Code)
	assert.Equal(t, badToken.Body.String(), unknownVisitor.Body.String())
}

func TestEmailActionController_ApproveAlreadyProcessed(t *testing.T) {
	fake := &fakeVisitorService{
		getVisitor: sampleVisitor(domain.StatusRejected),
		transErr:   &domain.AlreadyProcessedError{Current: domain.StatusRejected},
	}
	ctrl := NewEmailActionController(controllerLogger(), fake, fakeActionTokens{})

	rr := httptest.NewRecorder()
	ctrl.Approve(rr, newEmailActionRequest(http.MethodGet, "approve", "v-1", "good-v-1", ""))

	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "Already processed")
	assert.Contains(t, rr.Body.String(), "rejected")
}

func TestEmailActionController_RejectWithReason(t *testing.T) {
	fake := &fakeVisitorService{
		getVisitor:   sampleVisitor(domain.StatusAwaitingApproval),
		transVisitor: sampleVisitor(domain.StatusRejected),
	}
	ctrl := NewEmailActionController(controllerLogger(), fake, fakeActionTokens{})

	form := url.Values{"reason": {"no rooms available"}}.Encode()
	rr := httptest.NewRecorder()
	ctrl.Reject(rr, newEmailActionRequest(http.MethodPost, "reject", "v-1", "good-v-1", form))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Visit rejected")
	assert.Equal(t, "no rooms available", fake.lastReason)
	assert.Equal(t, "email", fake.lastActor)
}

func TestEmailActionController_RejectForm(t *testing.T) {
	fake := &fakeVisitorService{getVisitor: sampleVisitor(domain.StatusAwaitingApproval)}
	ctrl := NewEmailActionController(controllerLogger(), fake, fakeActionTokens{})

	rr := httptest.NewRecorder()
	ctrl.RejectForm(rr, newEmailActionRequest(http.MethodGet, "reject-form", "v-1", "good-v-1", ""))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Ada Visitor")
	assert.Contains(t, body, `action="/email-actions/reject/v-1/good-v-1"`)
}

func TestEmailActionController_RejectFormAlreadySettled(t *testing.T) {
	fake := &fakeVisitorService{getVisitor: sampleVisitor(domain.StatusApproved)}
	ctrl := NewEmailActionController(controllerLogger(), fake, fakeActionTokens{})

	rr := httptest.NewRecorder()
	ctrl.RejectForm(rr, newEmailActionRequest(http.MethodGet, "reject-form", "v-1", "good-v-1", ""))

	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "Already processed")
}
