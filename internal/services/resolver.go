package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"visitordesk/internal/domain"
)

type notificationResolver struct {
	directory domain.StaffDirectory
	emails    domain.EmailService
	tokens    domain.ActionTokenIssuer
	baseURL   string
	logger    *slog.Logger
}

// NewNotificationResolver returns a NotificationResolver that notifies the
// matched staff member, falling back to location admins and then global
// admins. baseURL is the public address email action links are built on.
func NewNotificationResolver(
	directory domain.StaffDirectory,
	emails domain.EmailService,
	tokens domain.ActionTokenIssuer,
	baseURL string,
	logger *slog.Logger,
) domain.NotificationResolver {
	return &notificationResolver{
		directory: directory,
		emails:    emails,
		tokens:    tokens,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

// NotifyNewVisitor runs the cascade. A tier is skipped only when an earlier
// tier got at least one notification through; a tier whose recipients all
// fail (or that has no recipients) falls through to the next one. Errors
// from individual sends are collected into the outcome, never returned as
// failures of the visitor registration.
func (r *notificationResolver) NotifyNewVisitor(ctx context.Context, v *domain.Visitor) (*domain.NotificationOutcome, error) {
	outcome := &domain.NotificationOutcome{Tier: domain.TierNone}

	// Tier 1: fuzzy match against the active staff directory.
	staff, err := r.directory.ListActive(ctx)
	if err != nil {
		r.logger.Warn("staff directory lookup failed", "err", err)
	} else if match := MatchStaff(staff, v.MeetWith); match != nil {
		if r.notify(ctx, match, v, outcome) {
			outcome.Tier = domain.TierStaffMatch
			return outcome, nil
		}
	}

	// Tier 2: admins at the visitor's location.
	admins, err := r.directory.ListLocationAdmins(ctx, v.LocationID)
	if err != nil {
		r.logger.Warn("location admin lookup failed", "location_id", v.LocationID, "err", err)
	} else {
		reached := false
		for _, a := range admins {
			if r.notify(ctx, a, v, outcome) {
				reached = true
			}
		}
		if reached {
			outcome.Tier = domain.TierLocationAdmins
			return outcome, nil
		}
	}

	// Tier 3: every admin, regardless of location.
	globals, err := r.directory.ListGlobalAdmins(ctx)
	if err != nil {
		r.logger.Warn("global admin lookup failed", "err", err)
	} else {
		reached := false
		for _, a := range globals {
			if r.notify(ctx, a, v, outcome) {
				reached = true
			}
		}
		if reached {
			outcome.Tier = domain.TierGlobalAdmins
			return outcome, nil
		}
	}

	return outcome, domain.ErrNoRecipientNotified
}

func (r *notificationResolver) notify(ctx context.Context, s *domain.Staff, v *domain.Visitor, outcome *domain.NotificationOutcome) bool {
	token := r.tokens.Issue(v.ID)
	data := &domain.VisitorPendingEmailData{
		Email:         s.Email,
		StaffName:     s.FullName(),
		VisitorName:   v.Name,
		VisitorEmail:  v.Email,
		MeetWith:      v.MeetWith,
		Purpose:       v.Purpose,
		ScheduledAt:   v.ScheduledAt,
		ApproveURL:    fmt.Sprintf("%s/email-actions/approve/%s/%s", r.baseURL, v.ID, token),
		RejectURL:     fmt.Sprintf("%s/email-actions/reject/%s/%s", r.baseURL, v.ID, token),
		RejectFormURL: fmt.Sprintf("%s/email-actions/reject-form/%s/%s", r.baseURL, v.ID, token),
	}
	if err := r.emails.SendVisitorPending(ctx, data); err != nil {
		r.logger.Warn("visitor notification failed", "visitor_id", v.ID, "recipient", s.Email, "err", err)
		outcome.Failed = append(outcome.Failed, s.Email)
		return false
	}
	outcome.Notified = append(outcome.Notified, s.Email)
	return true
}

// staffMatcher reports whether the staff entry matches the normalized
// (lowercased, trimmed) query.
type staffMatcher func(s *domain.Staff, query string) bool

// staffMatchers is the tier-1 preference order. The order is a contract:
// full name beats email, email beats first name, first name beats last
// name, and substring containment in either direction comes last.
var staffMatchers = []staffMatcher{
	func(s *domain.Staff, q string) bool { return strings.ToLower(s.FullName()) == q },
	func(s *domain.Staff, q string) bool { return strings.ToLower(s.Email) == q },
	func(s *domain.Staff, q string) bool { return strings.ToLower(strings.TrimSpace(s.FirstName)) == q },
	func(s *domain.Staff, q string) bool { return strings.ToLower(strings.TrimSpace(s.LastName)) == q },
	func(s *domain.Staff, q string) bool {
		full := strings.ToLower(s.FullName())
		return full != "" && (strings.Contains(full, q) || strings.Contains(q, full))
	},
}

// MatchStaff resolves a visitor's free-text meet-with value to at most one
// staff entry. Matchers are tried in preference order across the whole
// directory; within one matcher, directory order decides. Returns nil when
// nothing matches or the query is empty.
func MatchStaff(staff []*domain.Staff, meetWith string) *domain.Staff {
	query := strings.ToLower(strings.TrimSpace(meetWith))
	if query == "" {
		return nil
	}
	for _, matches := range staffMatchers {
		for _, s := range staff {
			if matches(s, query) {
				return s
			}
		}
	}
	return nil
}
