package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitordesk/internal/delivery/http/helpers"
	"visitordesk/internal/delivery/http/middleware"
	"visitordesk/internal/domain"
)

// fakeVisitorService implements domain.VisitorService for handler tests.
type fakeVisitorService struct {
	registerErr    error
	getVisitor     *domain.Visitor
	getErr         error
	listVisitors   []*domain.Visitor
	listTotal      int
	listErr        error
	transVisitor   *domain.Visitor
	transErr       error
	lastTarget     domain.VisitorStatus
	lastActor      string
	lastReason     string
	setVisitor     *domain.Visitor
	setErr         error
	deleteErr      error
	lastRegistered *domain.Visitor
}

func (f *fakeVisitorService) Register(ctx context.Context, v *domain.Visitor) error {
	f.lastRegistered = v
	if f.registerErr != nil {
		return f.registerErr
	}
	v.ID = "v-created"
	return nil
}

func (f *fakeVisitorService) GetByID(ctx context.Context, id string) (*domain.Visitor, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getVisitor, nil
}

func (f *fakeVisitorService) List(ctx context.Context, status domain.VisitorStatus, locationID string, params domain.PaginationParams) ([]*domain.Visitor, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listVisitors, f.listTotal, nil
}

func (f *fakeVisitorService) AttemptTransition(ctx context.Context, id string, target domain.VisitorStatus, actor, reason string, newSchedule *time.Time) (*domain.Visitor, error) {
	f.lastTarget = target
	f.lastActor = actor
	f.lastReason = reason
	if f.transErr != nil {
		return nil, f.transErr
	}
	return f.transVisitor, nil
}

func (f *fakeVisitorService) SetStatus(ctx context.Context, id string, target domain.VisitorStatus, actor, reason string, newSchedule *time.Time) (*domain.Visitor, error) {
	f.lastTarget = target
	f.lastActor = actor
	if f.setErr != nil {
		return nil, f.setErr
	}
	return f.setVisitor, nil
}

func (f *fakeVisitorService) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

func controllerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sampleVisitor(status domain.VisitorStatus) *domain.Visitor {
	now := time.Now()
	return &domain.Visitor{
		ID:          "v-1",
		Name:        "Ada Visitor",
		Email:       "ada@example.com",
		LocationID:  "loc-1",
		MeetWith:    "Jane Doe",
		Status:      status,
		ScheduledAt: now.Add(24 * time.Hour),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestVisitorController_Register(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "success",
			body:       `{"name":"Ada Visitor","email":"ada@example.com","location_id":"loc-1","meet_with":"Jane Doe","purpose":"interview","scheduled_at":"2025-06-01T10:00:00Z"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:         "invalid json",
			body:         `{invalid`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "missing email",
			body:         `{"name":"Ada","location_id":"loc-1","scheduled_at":"2025-06-01T10:00:00Z"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "service rejects input",
			body:         `{"name":"Ada","email":"ada@example.com","location_id":"loc-1","scheduled_at":"2025-06-01T10:00:00Z"}`,
			fakeErr:      domain.ErrInvalidInput,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "service failure",
			body:         `{"name":"Ada","email":"ada@example.com","location_id":"loc-1","scheduled_at":"2025-06-01T10:00:00Z"}`,
			fakeErr:      assert.AnError,
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeVisitorService{registerErr: tt.fakeErr}
			ctrl := NewVisitorController(controllerLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/visitors", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.Register(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				require.NotNil(t, fake.lastRegistered)
				assert.Equal(t, domain.StatusAwaitingApproval, fake.lastRegistered.Status)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestVisitorController_Approve(t *testing.T) {
	tests := []struct {
		name          string
		contextUserID string
		fakeVisitor   *domain.Visitor
		fakeErr       error
		wantStatus    int
		wantBodyCode  string
	}{
		{
			name:          "success",
			contextUserID: "staff-1",
			fakeVisitor:   sampleVisitor(domain.StatusApproved),
			wantStatus:    http.StatusOK,
		},
		{
			name:         "no user in context",
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:          "not found",
			contextUserID: "staff-1",
			fakeErr:       domain.ErrNotFound,
			wantStatus:    http.StatusNotFound,
			wantBodyCode:  helpers.ErrCodeNotFound,
		},
		{
			name:          "already processed",
			contextUserID: "staff-1",
			fakeErr:       &domain.AlreadyProcessedError{Current: domain.StatusRejected},
			wantStatus:    http.StatusConflict,
			wantBodyCode:  helpers.ErrCodeAlreadyProcessed,
		},
		{
			name:          "illegal transition",
			contextUserID: "staff-1",
			fakeErr:       domain.ErrIllegalTransition,
			wantStatus:    http.StatusUnprocessableEntity,
			wantBodyCode:  helpers.ErrCodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeVisitorService{transVisitor: tt.fakeVisitor, transErr: tt.fakeErr}
			ctrl := NewVisitorController(controllerLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/visitors/v-1/approve", nil)
			req.SetPathValue("visitorID", "v-1")
			if tt.contextUserID != "" {
				req = req.WithContext(middleware.SetUserID(req.Context(), tt.contextUserID))
			}
			rr := httptest.NewRecorder()

			ctrl.Approve(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				assert.Equal(t, domain.StatusApproved, fake.lastTarget)
				assert.Equal(t, "staff-1", fake.lastActor)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestVisitorController_RejectCarriesReason(t *testing.T) {
	fake := &fakeVisitorService{transVisitor: sampleVisitor(domain.StatusRejected)}
	ctrl := NewVisitorController(controllerLogger(), fake)

	req := httptest.NewRequest(http.MethodPost, "http://test/visitors/v-1/reject",
		bytes.NewBufferString(`{"reason":"room unavailable"}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("visitorID", "v-1")
	req = req.WithContext(middleware.SetUserID(req.Context(), "staff-1"))
	rr := httptest.NewRecorder()

	ctrl.Reject(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.StatusRejected, fake.lastTarget)
	assert.Equal(t, "room unavailable", fake.lastReason)
}

func TestVisitorController_OverrideStatus(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		fakeVisitor  *domain.Visitor
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:        "success",
			body:        `{"status":"checked_out","reason":"manual correction"}`,
			fakeVisitor: sampleVisitor(domain.StatusCheckedOut),
			wantStatus:  http.StatusOK,
		},
		{
			name:         "unknown status",
			body:         `{"status":"vanished"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "missing status",
			body:         `{}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "not found",
			body:         `{"status":"approved"}`,
			fakeErr:      domain.ErrNotFound,
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeVisitorService{setVisitor: tt.fakeVisitor, setErr: tt.fakeErr}
			ctrl := NewVisitorController(controllerLogger(), fake)

			req := httptest.NewRequest(http.MethodPut, "http://test/visitors/v-1/status", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("visitorID", "v-1")
			req = req.WithContext(middleware.SetUserID(req.Context(), "staff-1"))
			rr := httptest.NewRecorder()

			ctrl.OverrideStatus(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestVisitorController_List(t *testing.T) {
	visitors := []*domain.Visitor{sampleVisitor(domain.StatusAwaitingApproval)}
	fake := &fakeVisitorService{listVisitors: visitors, listTotal: 1}
	ctrl := NewVisitorController(controllerLogger(), fake)

	req := httptest.NewRequest(http.MethodGet, "http://test/visitors?status=awaiting_approval", nil)
	rr := httptest.NewRecorder()

	ctrl.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Nil(t, envelope.Error)

	dataBytes, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var resp ListVisitorsResponse
	require.NoError(t, json.Unmarshal(dataBytes, &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Pagination.Total)
}

func TestVisitorController_List_UnknownStatus(t *testing.T) {
	ctrl := NewVisitorController(controllerLogger(), &fakeVisitorService{})

	req := httptest.NewRequest(http.MethodGet, "http://test/visitors?status=bogus", nil)
	rr := httptest.NewRecorder()

	ctrl.List(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
