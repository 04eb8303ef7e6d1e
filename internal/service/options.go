package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/loog-project/auditlog/internal/filter"
)

type actorKey struct{}

// WithActor returns a context carrying the actor responsible for changes.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor set by [WithActor].
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// options holds the configuration of an [AuditService].
type options struct {
	filter        *filter.Filter
	logger        zerolog.Logger
	actorProvider func(ctx context.Context) string
	clock         func() time.Time
	cache         bool
}

// Option configures an [AuditService].
type Option func(*options)

func defaultOptions() *options {
	return &options{
		filter:        filter.MustCompile(filter.DefaultExpression),
		logger:        log.Logger,
		actorProvider: ActorFromContext,
		clock:         time.Now,
		cache:         true,
	}
}

// WithFilter only stores entries matching [f].
func WithFilter(f *filter.Filter) Option {
	return func(o *options) {
		if f != nil {
			o.filter = f
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithActorProvider overrides how the actor of an entry is determined.
func WithActorProvider(p func(ctx context.Context) string) Option {
	return func(o *options) { o.actorProvider = p }
}

func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithCache enables or disables remembering the last state of every object.
// Without it [AuditService.Commit] treats every object as new.
func WithCache(enabled bool) Option {
	return func(o *options) { o.cache = enabled }
}
