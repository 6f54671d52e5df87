package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"minishop/cache"
	"minishop/events"
	"minishop/metrics"
	"minishop/models"
	"minishop/store"
)

// ProductSource is an alternative origin for the catalog listing.
type ProductSource interface {
	Products(ctx context.Context) ([]models.Product, error)
}

// ClearScope selects which cart lines a checkout removes.
type ClearScope string

const (
	ClearAll  ClearScope = "all"
	ClearUser ClearScope = "user"
)

type Service struct {
	store     store.Store
	cache     cache.CatalogCache
	remote    ProductSource
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
	scope     ClearScope

	loads singleflight.Group
}

type Option func(*Service)

func WithCache(c cache.CatalogCache) Option { return func(s *Service) { s.cache = c } }

// WithRemoteCatalog serves ListProducts from src, falling back to the store on failure.
func WithRemoteCatalog(src ProductSource) Option { return func(s *Service) { s.remote = src } }

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.publisher = p } }
func WithMetrics(m *metrics.Metrics) Option   { return func(s *Service) { s.metrics = m } }
func WithLogger(l *zap.Logger) Option         { return func(s *Service) { s.logger = l } }
func WithClock(now func() time.Time) Option   { return func(s *Service) { s.now = now } }
func WithClearScope(c ClearScope) Option      { return func(s *Service) { s.scope = c } }

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:     st,
		cache:     cache.Noop{},
		publisher: events.NoopPublisher{},
		logger:    zap.NewNop(),
		now:       time.Now,
		scope:     ClearAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNop()
	}
	return s
}

// Health pings the store.
func (s *Service) Health(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return storageErr("ping", err)
	}
	return nil
}
