package domain

import "context"

// NotificationTier identifies which tier of the recipient-resolution
// cascade produced a successful notification.
type NotificationTier int

const (
	TierNone NotificationTier = iota
	TierStaffMatch
	TierLocationAdmins
	TierGlobalAdmins
)

// String returns a short label for logging.
func (t NotificationTier) String() string {
	switch t {
	case TierStaffMatch:
		return "staff_match"
	case TierLocationAdmins:
		return "location_admins"
	case TierGlobalAdmins:
		return "global_admins"
	}
	return "none"
}

// NotificationOutcome reports who was reached by the cascade.
type NotificationOutcome struct {
	Tier     NotificationTier
	Notified []string
	Failed   []string
}

// NotificationResolver decides which staff addresses receive the
// new-visitor notification and sends it. A later tier fires only when no
// notification in an earlier tier succeeded. The resolver never fails the
// caller: a total miss is reported as ErrNoRecipientNotified alongside the
// outcome, for logging only.
type NotificationResolver interface {
	NotifyNewVisitor(ctx context.Context, v *Visitor) (*NotificationOutcome, error)
}
