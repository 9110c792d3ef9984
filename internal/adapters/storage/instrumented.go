package storage

import (
	"context"
	"time"

	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
)

// InstrumentedStore records the duration of every call on the wrapped store
type InstrumentedStore struct {
	next    providers.StorageProvider
	backend string
	metrics *observability.Metrics
}

// Instrument wraps store; a nil metrics value returns store unchanged
func Instrument(store providers.StorageProvider, backend string, metrics *observability.Metrics) providers.StorageProvider {
	if metrics == nil {
		return store
	}
	return &InstrumentedStore{next: store, backend: backend, metrics: metrics}
}

// Get reads key
func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	defer func() { observability.RecordStorageMetric(ctx, s.metrics, s.backend, "get", time.Since(start)) }()
	return s.next.Get(ctx, key)
}

// Set writes key
func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	defer func() { observability.RecordStorageMetric(ctx, s.metrics, s.backend, "set", time.Since(start)) }()
	return s.next.Set(ctx, key, value)
}

// Delete removes key
func (s *InstrumentedStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	defer func() { observability.RecordStorageMetric(ctx, s.metrics, s.backend, "delete", time.Since(start)) }()
	return s.next.Delete(ctx, key)
}
