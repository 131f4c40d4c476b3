package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitordesk/internal/domain"
)

type mockStaffDirectory struct {
	active      []*domain.Staff
	locAdmins   map[string][]*domain.Staff
	globals     []*domain.Staff
	activeErr   error
	locErr      error
	globalsErr  error
}

func (m *mockStaffDirectory) ListActive(ctx context.Context) ([]*domain.Staff, error) {
	return m.active, m.activeErr
}

func (m *mockStaffDirectory) ListLocationAdmins(ctx context.Context, locationID string) ([]*domain.Staff, error) {
	if m.locErr != nil {
		return nil, m.locErr
	}
	return m.locAdmins[locationID], nil
}

func (m *mockStaffDirectory) ListGlobalAdmins(ctx context.Context) ([]*domain.Staff, error) {
	return m.globals, m.globalsErr
}

// mockPendingSender records visitor-pending sends and fails for addresses
// listed in failFor.
type mockPendingSender struct {
	sent    []*domain.VisitorPendingEmailData
	failFor map[string]bool
}

func (m *mockPendingSender) SendVisitorPending(ctx context.Context, data *domain.VisitorPendingEmailData) error {
	if m.failFor[data.Email] {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, data)
	return nil
}

func (m *mockPendingSender) SendVisitorApproved(ctx context.Context, data *domain.VisitorResultEmailData) error {
	return nil
}

func (m *mockPendingSender) SendVisitorRejected(ctx context.Context, data *domain.VisitorResultEmailData) error {
	return nil
}

func (m *mockPendingSender) SendVisitorRescheduled(ctx context.Context, data *domain.VisitorResultEmailData) error {
	return nil
}

func (m *mockPendingSender) recipients() []string {
	out := make([]string, 0, len(m.sent))
	for _, d := range m.sent {
		out = append(out, d.Email)
	}
	return out
}

type mockTokenIssuer struct{}

func (mockTokenIssuer) Issue(visitorID string) string         { return "tok-" + visitorID }
func (mockTokenIssuer) Verify(visitorID, token string) bool    { return token == "tok-"+visitorID }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func staffEntry(first, last, email string) *domain.Staff {
	return &domain.Staff{FirstName: first, LastName: last, Email: email, Role: domain.RoleStaff, Active: true}
}

func adminEntry(first, last, email, locationID string) *domain.Staff {
	return &domain.Staff{FirstName: first, LastName: last, Email: email, Role: domain.RoleAdmin, LocationID: locationID, Active: true}
}

func pendingVisitor(meetWith string) *domain.Visitor {
	return &domain.Visitor{
		ID:          "v1",
		Name:        "Ada Visitor",
		Email:       "ada@visitors.example",
		LocationID:  "loc-1",
		MeetWith:    meetWith,
		Status:      domain.StatusAwaitingApproval,
		ScheduledAt: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestResolver_Tier1_StaffMatch(t *testing.T) {
	dir := &mockStaffDirectory{
		active: []*domain.Staff{
			staffEntry("John", "Smith", "john@x.com"),
			staffEntry("Jane", "Doe", "jane@x.com"),
		},
		locAdmins: map[string][]*domain.Staff{
			"loc-1": {adminEntry("Amy", "Admin", "amy@x.com", "loc-1")},
		},
	}
	sender := &mockPendingSender{}
	resolver := NewNotificationResolver(dir, sender, mockTokenIssuer{}, "https://visits.example/", testLogger())

	outcome, err := resolver.NotifyNewVisitor(context.Background(), pendingVisitor("Jane Doe"))
	require.NoError(t, err)
	assert.Equal(t, domain.TierStaffMatch, outcome.Tier)
	assert.Equal(t, []string{"jane@x.com"}, outcome.Notified)
	// Fallback tiers must not fire when tier 1 succeeded.
	assert.Equal(t, []string{"jane@x.com"}, sender.recipients())

	require.Len(t, sender.sent, 1)
	data := sender.sent[0]
	assert.Equal(t, "Jane Doe", data.StaffName)
	assert.Equal(t, "https://visits.example/email-actions/approve/v1/tok-v1", data.ApproveURL)
	assert.Equal(t, "https://visits.example/email-actions/reject/v1/tok-v1", data.RejectURL)
	assert.Equal(t, "https://visits.example/email-actions/reject-form/v1/tok-v1", data.RejectFormURL)
}

func TestResolver_Tier2_LocationAdmins(t *testing.T) {
	dir := &mockStaffDirectory{
		active: []*domain.Staff{staffEntry("John", "Smith", "john@x.com")},
		locAdmins: map[string][]*domain.Staff{
			"loc-1": {
				adminEntry("Amy", "Admin", "amy@x.com", "loc-1"),
				adminEntry("Bob", "Boss", "bob@x.com", "loc-1"),
			},
		},
		globals: []*domain.Staff{adminEntry("Greta", "Global", "greta@x.com", "loc-2")},
	}
	sender := &mockPendingSender{}
	resolver := NewNotificationResolver(dir, sender, mockTokenIssuer{}, "https://visits.example", testLogger())

	outcome, err := resolver.NotifyNewVisitor(context.Background(), pendingVisitor("Nonexistent Person"))
	require.NoError(t, err)
	assert.Equal(t, domain.TierLocationAdmins, outcome.Tier)
	assert.ElementsMatch(t, []string{"amy@x.com", "bob@x.com"}, outcome.Notified)
	assert.NotContains(t, sender.recipients(), "greta@x.com")
}

func TestResolver_Tier3_GlobalAdmins(t *testing.T) {
	dir := &mockStaffDirectory{
		active: []*domain.Staff{staffEntry("John", "Smith", "john@x.com")},
		globals: []*domain.Staff{
			adminEntry("Greta", "Global", "greta@x.com", "loc-2"),
			adminEntry("Gary", "Global", "gary@x.com", "loc-3"),
		},
	}
	sender := &mockPendingSender{}
	resolver := NewNotificationResolver(dir, sender, mockTokenIssuer{}, "https://visits.example", testLogger())

	outcome, err := resolver.NotifyNewVisitor(context.Background(), pendingVisitor("Nonexistent Person"))
	require.NoError(t, err)
	assert.Equal(t, domain.TierGlobalAdmins, outcome.Tier)
	assert.ElementsMatch(t, []string{"greta@x.com", "gary@x.com"}, outcome.Notified)
}

func TestResolver_Tier1FailureFallsThrough(t *testing.T) {
	// A matched staff member whose mailbox is unreachable must not swallow
	// the notification: the cascade advances on delivery failure, not just
	// on a missing match.
	dir := &mockStaffDirectory{
		active: []*domain.Staff{staffEntry("Jane", "Doe", "jane@x.com")},
		locAdmins: map[string][]*domain.Staff{
			"loc-1": {adminEntry("Amy", "Admin", "amy@x.com", "loc-1")},
		},
	}
	sender := &mockPendingSender{failFor: map[string]bool{"jane@x.com": true}}
	resolver := NewNotificationResolver(dir, sender, mockTokenIssuer{}, "https://visits.example", testLogger())

	outcome, err := resolver.NotifyNewVisitor(context.Background(), pendingVisitor("Jane Doe"))
	require.NoError(t, err)
	assert.Equal(t, domain.TierLocationAdmins, outcome.Tier)
	assert.Equal(t, []string{"amy@x.com"}, outcome.Notified)
	assert.Equal(t, []string{"jane@x.com"}, outcome.Failed)
}

func TestResolver_TotalFailure(t *testing.T) {
	dir := &mockStaffDirectory{
		globals: []*domain.Staff{adminEntry("Greta", "Global", "greta@x.com", "loc-2")},
	}
	sender := &mockPendingSender{failFor: map[string]bool{"greta@x.com": true}}
	resolver := NewNotificationResolver(dir, sender, mockTokenIssuer{}, "https://visits.example", testLogger())

	outcome, err := resolver.NotifyNewVisitor(context.Background(), pendingVisitor("Nobody"))
	require.ErrorIs(t, err, domain.ErrNoRecipientNotified)
	assert.Equal(t, domain.TierNone, outcome.Tier)
	assert.Empty(t, outcome.Notified)
}

func TestMatchStaff_PreferenceOrder(t *testing.T) {
	jane := staffEntry("Jane", "Doe", "jane@x.com")
	doeFirst := staffEntry("Doe", "Smith", "doe.smith@x.com")
	bob := staffEntry("Bob", "Stone", "bob@x.com")
	directory := []*domain.Staff{bob, doeFirst, jane}

	tests := []struct {
		name     string
		meetWith string
		want     *domain.Staff
	}{
		{"full name", "Jane Doe", jane},
		{"full name is case-insensitive", "  jane DOE ", jane},
		{"email", "jane@x.com", jane},
		{"first name beats last name", "doe", doeFirst},
		{"last name only", "stone", bob},
		{"query contains full name", "Dr. Jane Doe, PhD", jane},
		{"full name contains query fragment", "ane Do", jane},
		{"no match", "Nonexistent Person", nil},
		{"empty", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchStaff(directory, tt.meetWith)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want.Email, got.Email)
		})
	}
}
