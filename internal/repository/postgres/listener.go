package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dtroode/contractchecker-server/internal/logger"
)

// WaitlistEntryCreatedChannel is notified by the waitlist_entries insert trigger.
const WaitlistEntryCreatedChannel = "waitlist_entry_created"

const (
	listenMinBackoff = 500 * time.Millisecond
	listenMaxBackoff = 30 * time.Second
	unlistenTimeout  = 5 * time.Second
)

// listenConn is a dedicated connection that receives NOTIFY payloads.
type listenConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Release()
}

type poolListenConn struct {
	conn *pgxpool.Conn
}

func (c poolListenConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn.Exec(ctx, sql, args...)
}

func (c poolListenConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	return c.conn.Conn().WaitForNotification(ctx)
}

func (c poolListenConn) Release() {
	c.conn.Release()
}

// WaitlistListener turns waitlist insert notifications into handler calls.
// Delivery is at most once: notifications raised while no listener is
// connected are lost.
type WaitlistListener struct {
	acquire func(ctx context.Context) (listenConn, error)
	logger  *logger.Logger
}

func NewWaitlistListener(db *Connection, logger *logger.Logger) *WaitlistListener {
	return &WaitlistListener{
		acquire: func(ctx context.Context) (listenConn, error) {
			conn, err := db.Acquire(ctx)
			if err != nil {
				return nil, err
			}
			return poolListenConn{conn: conn}, nil
		},
		logger: logger,
	}
}

// Listen blocks until ctx is done, reconnecting with capped backoff when the
// connection drops. handle runs synchronously for each created entry id.
func (l *WaitlistListener) Listen(ctx context.Context, handle func(ctx context.Context, entryID uuid.UUID)) error {
	backoff := listenMinBackoff

	for {
		err := l.listenOnce(ctx, handle, func() { backoff = listenMinBackoff })
		if ctx.Err() != nil {
			return nil
		}

		l.logger.Error("Waitlist listener: connection lost, retrying",
			"error", err,
			"backoff", backoff.String())

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > listenMaxBackoff {
			backoff = listenMaxBackoff
		}
	}
}

func (l *WaitlistListener) listenOnce(ctx context.Context, handle func(ctx context.Context, entryID uuid.UUID), connected func()) error {
	conn, err := l.acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	defer l.release(conn)

	if _, err := conn.Exec(ctx, "LISTEN "+WaitlistEntryCreatedChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", WaitlistEntryCreatedChannel, err)
	}
	connected()

	l.logger.Info("Waitlist listener: listening", "channel", WaitlistEntryCreatedChannel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("failed to wait for notification: %w", err)
		}

		entryID, err := uuid.Parse(notification.Payload)
		if err != nil {
			l.logger.Warn("Waitlist listener: malformed payload",
				"payload", notification.Payload,
				"error", err)
			continue
		}

		handle(ctx, entryID)
	}
}

// release drops every subscription before handing the connection back to the
// pool, so no other pool user inherits the LISTEN. ctx may already be done
// here, hence the detached timeout.
func (l *WaitlistListener) release(conn listenConn) {
	ctx, cancel := context.WithTimeout(context.Background(), unlistenTimeout)
	defer cancel()

	if _, err := conn.Exec(ctx, "UNLISTEN *"); err != nil {
		l.logger.Warn("Waitlist listener: failed to unlisten before release",
			"error", err)
	}
	conn.Release()
}
