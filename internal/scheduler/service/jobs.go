package service

import (
	"context"
	"time"
)

const (
	JobRefreshCurrencyRates   = "refresh-currency-rates"
	JobPurgeReadNotifications = "purge-read-notifications"
)

type RateRefresher interface {
	RefreshRates(ctx context.Context) error
}

type NotificationPurger interface {
	PurgeRead(ctx context.Context, olderThan time.Duration) (int, error)
}

// RegisterDefaults registers the jobs the service runs in production.
func RegisterDefaults(r *Registry, rates RateRefresher, notifications NotificationPurger, retention time.Duration) error {
	if err := r.Register(JobRefreshCurrencyRates, "@every 1h", rates.RefreshRates); err != nil {
		return err
	}
	return r.Register(JobPurgeReadNotifications, "0 3 * * *", func(ctx context.Context) error {
		_, err := notifications.PurgeRead(ctx, retention)
		return err
	})
}

// StartAll activates every registered job.
func (r *Registry) StartAll() error {
	for _, s := range r.Status() {
		if _, err := r.Start(s.Name); err != nil {
			return err
		}
	}
	return nil
}
