package service

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"time"
)

// NotificationService lists notification records. Delivery is out of scope;
// scheduled notifications become visible once their time has come.
type NotificationService interface {
	ListNotifications(ctx context.Context, actor Actor) ([]domain.Notification, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	now  Clock
}

func NewNotificationService(repo repository.NotificationRepository, clock Clock) NotificationService {
	return &notificationService{repo: repo, now: clockOrDefault(clock)}
}

func (s *notificationService) ListNotifications(ctx context.Context, actor Actor) ([]domain.Notification, error) {
	all, err := s.repo.GetByRecipientID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	visible := make([]domain.Notification, 0, len(all))
	for _, n := range all {
		if due(n, now) {
			visible = append(visible, n)
		}
	}
	return visible, nil
}

// due reports whether n is visible at t.
func due(n domain.Notification, t time.Time) bool {
	return !n.ScheduledFor.After(t)
}
