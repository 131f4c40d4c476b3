package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"visitordesk/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// transitionSources maps each target status to the statuses it may be
// entered from via a guarded transition. Requests for any other pairing
// are rejected; AwaitingApproval is never a guarded target (only
// registration and the admin override produce it).
var transitionSources = map[domain.VisitorStatus][]domain.VisitorStatus{
	domain.StatusApproved:    {domain.StatusAwaitingApproval},
	domain.StatusRejected:    {domain.StatusAwaitingApproval},
	domain.StatusCheckedIn:   {domain.StatusApproved},
	domain.StatusCheckedOut:  {domain.StatusCheckedIn},
	domain.StatusRescheduled: {domain.StatusAwaitingApproval, domain.StatusApproved, domain.StatusRejected},
}

type visitorService struct {
	repo           domain.VisitorRepository
	resolver       domain.NotificationResolver
	emails         domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
	notifyTimeout  time.Duration
}

// NewVisitorService creates the VisitorService that owns the visitor
// lifecycle. notifyTimeout bounds each fire-and-forget notification
// dispatch so a slow mail relay cannot hold goroutines forever.
func NewVisitorService(
	repo domain.VisitorRepository,
	resolver domain.NotificationResolver,
	emails domain.EmailService,
	logger *slog.Logger,
	contextTimeout, notifyTimeout time.Duration,
) domain.VisitorService {
	return &visitorService{
		repo:           repo,
		resolver:       resolver,
		emails:         emails,
		logger:         logger,
		contextTimeout: contextTimeout,
		notifyTimeout:  notifyTimeout,
	}
}

func (s *visitorService) Register(ctx context.Context, v *domain.Visitor) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v.Name = strings.TrimSpace(v.Name)
	v.Email = strings.TrimSpace(strings.ToLower(v.Email))
	v.MeetWith = strings.TrimSpace(v.MeetWith)
	if v.Name == "" || !emailRegexp.MatchString(v.Email) || v.LocationID == "" || v.ScheduledAt.IsZero() {
		return domain.ErrInvalidInput
	}

	now := time.Now()
	v.Status = domain.StatusAwaitingApproval
	v.CreatedAt = now
	v.UpdatedAt = now
	if err := s.repo.Create(ctx, v); err != nil {
		return fmt.Errorf("create visitor: %w", err)
	}

	s.dispatchNotification(*v, "")
	return nil
}

func (s *visitorService) GetByID(ctx context.Context, id string) (*domain.Visitor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get visitor: %w", err)
	}
	return v, nil
}

func (s *visitorService) List(ctx context.Context, status domain.VisitorStatus, locationID string, params domain.PaginationParams) ([]*domain.Visitor, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if status != "" && !status.Valid() {
		return nil, 0, domain.ErrInvalidInput
	}
	visitors, total, err := s.repo.List(ctx, status, locationID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list visitors: %w", err)
	}
	if visitors == nil {
		visitors = []*domain.Visitor{}
	}
	return visitors, total, nil
}

func (s *visitorService) AttemptTransition(ctx context.Context, id string, target domain.VisitorStatus, actor, reason string, newSchedule *time.Time) (*domain.Visitor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get visitor: %w", err)
	}

	sources, ok := transitionSources[target]
	if !ok {
		return nil, domain.ErrIllegalTransition
	}
	if !statusIn(v.Status, sources) {
		// A settled approve/reject re-attempted (double click, racing
		// admins) is the expected AlreadyProcessed case. Anything else
		// is simply outside the graph.
		if isSingleUse(target) && (v.Status == domain.StatusApproved || v.Status == domain.StatusRejected) {
			return nil, &domain.AlreadyProcessedError{Current: v.Status}
		}
		return nil, domain.ErrIllegalTransition
	}

	update, err := buildStatusUpdate(target, actor, reason, newSchedule, time.Now())
	if err != nil {
		return nil, err
	}

	applied, err := s.repo.UpdateStatusCAS(ctx, id, v.Status, update)
	if err != nil {
		return nil, fmt.Errorf("update visitor status: %w", err)
	}
	if !applied {
		// Lost the race: someone else transitioned first. Report the
		// settled status rather than failing hard.
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("reread visitor: %w", err)
		}
		return nil, &domain.AlreadyProcessedError{Current: current.Status}
	}

	applyStatusUpdate(v, update)
	s.dispatchNotification(*v, reason)
	return v, nil
}

func (s *visitorService) SetStatus(ctx context.Context, id string, target domain.VisitorStatus, actor, reason string, newSchedule *time.Time) (*domain.Visitor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !target.Valid() {
		return nil, domain.ErrInvalidInput
	}
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get visitor: %w", err)
	}

	update, err := buildStatusUpdate(target, actor, reason, newSchedule, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetStatus(ctx, id, update); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set visitor status: %w", err)
	}

	applyStatusUpdate(v, update)
	s.dispatchNotification(*v, reason)
	return v, nil
}

func (s *visitorService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete visitor: %w", err)
	}
	return nil
}

// dispatchNotification sends the notification for the visitor's (new)
// status in the background. The persisted transition is authoritative by
// the time this runs; delivery failures are logged and never propagated.
func (s *visitorService) dispatchNotification(v domain.Visitor, reason string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		switch v.Status {
		case domain.StatusAwaitingApproval:
			outcome, err := s.resolver.NotifyNewVisitor(ctx, &v)
			if err != nil {
				s.logger.Error("visitor notification cascade failed", "visitor_id", v.ID, "err", err)
				return
			}
			s.logger.Info("visitor notification sent",
				"visitor_id", v.ID, "tier", outcome.Tier.String(), "recipients", len(outcome.Notified))
		case domain.StatusApproved:
			s.sendResult(ctx, &v, reason, s.emails.SendVisitorApproved)
		case domain.StatusRejected:
			s.sendResult(ctx, &v, reason, s.emails.SendVisitorRejected)
		case domain.StatusRescheduled:
			s.sendResult(ctx, &v, reason, s.emails.SendVisitorRescheduled)
		}
	}()
}

func (s *visitorService) sendResult(ctx context.Context, v *domain.Visitor, reason string, send func(context.Context, *domain.VisitorResultEmailData) error) {
	data := &domain.VisitorResultEmailData{
		Email:       v.Email,
		VisitorName: v.Name,
		Reason:      reason,
		ScheduledAt: v.ScheduledAt,
	}
	if err := send(ctx, data); err != nil {
		s.logger.Warn("visitor result notification failed", "visitor_id", v.ID, "status", string(v.Status), "err", err)
	}
}

func isSingleUse(target domain.VisitorStatus) bool {
	return target == domain.StatusApproved || target == domain.StatusRejected
}

func statusIn(status domain.VisitorStatus, set []domain.VisitorStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// buildStatusUpdate assembles the field changes each transition carries:
// approval stamps approver and time, rejection and reschedule overwrite
// notes with the reason, check-in/out stamp their timestamps, reschedule
// clears both check times and requires the new schedule.
func buildStatusUpdate(target domain.VisitorStatus, actor, reason string, newSchedule *time.Time, now time.Time) (domain.VisitorStatusUpdate, error) {
	update := domain.VisitorStatusUpdate{Status: target, UpdatedAt: now}
	switch target {
	case domain.StatusApproved:
		update.ApprovedBy = &actor
		update.ApprovedAt = &now
	case domain.StatusRejected:
		update.Notes = &reason
	case domain.StatusCheckedIn:
		update.CheckInAt = &now
	case domain.StatusCheckedOut:
		update.CheckOutAt = &now
	case domain.StatusRescheduled:
		if newSchedule == nil || newSchedule.IsZero() {
			return domain.VisitorStatusUpdate{}, domain.ErrInvalidInput
		}
		update.ScheduledAt = newSchedule
		update.Notes = &reason
		update.ClearCheckTimes = true
	}
	return update, nil
}

func applyStatusUpdate(v *domain.Visitor, update domain.VisitorStatusUpdate) {
	v.Status = update.Status
	v.UpdatedAt = update.UpdatedAt
	if update.Notes != nil {
		v.Notes = *update.Notes
	}
	if update.ScheduledAt != nil {
		v.ScheduledAt = *update.ScheduledAt
	}
	if update.ApprovedBy != nil {
		v.ApprovedBy = *update.ApprovedBy
	}
	if update.ApprovedAt != nil {
		v.ApprovedAt = update.ApprovedAt
	}
	if update.CheckInAt != nil {
		v.CheckInAt = update.CheckInAt
	}
	if update.CheckOutAt != nil {
		v.CheckOutAt = update.CheckOutAt
	}
	if update.ClearCheckTimes {
		v.CheckInAt = nil
		v.CheckOutAt = nil
	}
}
