package services

import (
	"context"

	"dhaba/models"
)

// Notifier tells staff about things that need attention. Implementations must not block
// the caller for long; failures are theirs to log.
type Notifier interface {
	ReviewSubmitted(ctx context.Context, r *models.Review)
	CatalogReseeded(ctx context.Context, res *SeedResult)
}

type nopNotifier struct{}

func (nopNotifier) ReviewSubmitted(context.Context, *models.Review) {}
func (nopNotifier) CatalogReseeded(context.Context, *SeedResult) {}

// NopNotifier discards every notification.
func NopNotifier() Notifier { return nopNotifier{} }
