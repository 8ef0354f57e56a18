package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"healthops/internal/domain"
	"healthops/pkg/logger"
)

// DefaultChannel is the NOTIFY channel used for invalidations.
const DefaultChannel = "healthops_invalidate"

// Execer runs a statement; *pgxpool.Pool satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Broadcaster publishes invalidated keys to every instance through
// PostgreSQL NOTIFY. The payload is the encoded key.
type Broadcaster struct {
	db      Execer
	channel string
}

// NewBroadcaster creates a Broadcaster on channel.
func NewBroadcaster(db Execer, channel string) *Broadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Broadcaster{db: db, channel: channel}
}

// Invalidate implements domain.Invalidator.
func (b *Broadcaster) Invalidate(ctx context.Context, key domain.CacheKey) error {
	if _, err := b.db.Exec(ctx, "SELECT pg_notify($1, $2)", b.channel, key.String()); err != nil {
		return fmt.Errorf("notify %s: %w", b.channel, err)
	}
	return nil
}

// Listener receives keys broadcast by any instance and applies them to
// local sinks, normally the RecordCache.
type Listener struct {
	pool    *pgxpool.Pool
	channel string
	sinks   []domain.Invalidator

	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewListener creates a Listener on channel.
func NewListener(pool *pgxpool.Pool, channel string, sinks ...domain.Invalidator) *Listener {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Listener{pool: pool, channel: channel, sinks: sinks}
}

// Start begins listening in the background.
func (l *Listener) Start(ctx context.Context) {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()
	if l.started {
		return
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.started = true

	l.wg.Add(1)
	go l.listenLoop()
	logger.Info(l.ctx, "invalidation listener started", "channel", l.channel)
}

// Stop cancels the listener and waits for it to exit.
func (l *Listener) Stop() {
	l.lifecycleMu.Lock()
	if !l.started {
		l.lifecycleMu.Unlock()
		return
	}
	cancel := l.cancel
	l.started = false
	l.cancel = nil
	l.lifecycleMu.Unlock()

	cancel()
	l.wg.Wait()
	logger.Info(context.Background(), "invalidation listener stopped")
}

func (l *Listener) listenLoop() {
	defer l.wg.Done()

	for l.ctx.Err() == nil {
		conn, err := l.pool.Acquire(l.ctx)
		if err != nil {
			logger.Error(l.ctx, "failed to acquire connection for LISTEN", "error", err)
			l.pause()
			continue
		}

		if _, err := conn.Exec(l.ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
			logger.Error(l.ctx, "failed to LISTEN", "channel", l.channel, "error", err)
			conn.Release()
			l.pause()
			continue
		}

		l.waitForNotifications(conn)
		// A connection that was listening must not go back to the pool subscribed.
		conn.Hijack().Close(context.Background())
	}
}

func (l *Listener) waitForNotifications(conn *pgxpool.Conn) {
	for {
		n, err := conn.Conn().WaitForNotification(l.ctx)
		if err != nil {
			if l.ctx.Err() == nil {
				logger.Warn(l.ctx, "LISTEN connection lost", "error", err)
			}
			return
		}
		l.handle(n.Payload)
	}
}

// handle applies one payload to every sink. Sink panics are contained.
func (l *Listener) handle(payload string) {
	key, err := domain.ParseCacheKey(payload)
	if err != nil || key.IsZero() {
		logger.Warn(l.ctx, "ignoring invalidation payload", "payload", payload, "error", err)
		return
	}

	for _, sink := range l.sinks {
		func(s domain.Invalidator) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(l.ctx, "invalidation sink panic recovered", "key", payload, "panic", r)
				}
			}()
			if err := s.Invalidate(l.ctx, key); err != nil {
				logger.Warn(l.ctx, "local invalidation failed", "key", payload, "error", err)
			}
		}(sink)
	}
}

func (l *Listener) pause() {
	select {
	case <-l.ctx.Done():
	case <-time.After(time.Second):
	}
}

var _ domain.Invalidator = (*Broadcaster)(nil)
