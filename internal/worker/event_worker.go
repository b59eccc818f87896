package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/cache"
	"github.com/cijene-me/cijene-api/internal/events"
)

// Invalidator drops cached responses for namespaces.
type Invalidator interface {
	Invalidate(ctx context.Context, namespaces ...cache.Namespace) error
}

var (
	catalogNamespaces = []cache.Namespace{cache.Products, cache.Categories, cache.ProductEntries}
	storeNamespaces   = []cache.Namespace{cache.StoreBrands, cache.StoreLocations, cache.ProductEntries}
)

// NamespacesFor returns the cache namespaces made stale by an event type.
func NamespacesFor(t events.EventType) []cache.Namespace {
	switch t {
	case events.EventProductChanged, events.EventCategoryChanged, events.EventProductEntryCreated:
		return catalogNamespaces
	case events.EventStoreBrandChanged, events.EventStoreLocationChanged:
		return storeNamespaces
	}
	return nil
}

// StartEventWorker subscribes cache invalidation, and forwarding when forward is
// non-nil, to every event type. A nil invalidator disables invalidation.
func StartEventWorker(d events.Dispatcher, inv Invalidator, forward events.EventHandler, logger *zap.Logger) {
	if d == nil {
		return
	}
	for _, t := range events.AllTypes {
		if inv != nil {
			if namespaces := NamespacesFor(t); len(namespaces) > 0 {
				d.Subscribe(t, invalidateHandler(inv, namespaces, logger))
			}
		}
		if forward != nil {
			d.Subscribe(t, forward)
		}
	}
	logger.Info("event worker started",
		zap.Bool("cache_invalidation", inv != nil),
		zap.Bool("forwarding", forward != nil),
	)
}

func invalidateHandler(inv Invalidator, namespaces []cache.Namespace, logger *zap.Logger) events.EventHandler {
	return func(ctx context.Context, e events.Event) error {
		if err := inv.Invalidate(ctx, namespaces...); err != nil {
			return err
		}
		logger.Debug("cache invalidated", zap.String("event_type", string(e.Type)), zap.Int("namespaces", len(namespaces)))
		return nil
	}
}
