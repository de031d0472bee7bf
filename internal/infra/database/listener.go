package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/metrics"
)

const listenerPingInterval = 90 * time.Second

// ChangePublisher receives every change read from the feed.
type ChangePublisher interface {
	Publish(change entity.LeadChange)
}

// notificationSource is the subset of *pq.Listener the bridge uses.
type notificationSource interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// ChangeListener bridges Postgres NOTIFY on ChangeChannel to a publisher.
type ChangeListener struct {
	source notificationSource
	pub    ChangePublisher
	logger *zap.Logger
}

func NewChangeListener(connString string, pub ChangePublisher, logger *zap.Logger) *ChangeListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("change_listener")

	source := pq.NewListener(connString, 5*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			logger.Info("change feed connected")
		case pq.ListenerEventDisconnected:
			logger.Warn("change feed disconnected", zap.Error(err))
		case pq.ListenerEventReconnected:
			logger.Info("change feed reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Warn("change feed connection attempt failed", zap.Error(err))
		}
	})

	return &ChangeListener{source: source, pub: pub, logger: logger}
}

// Run blocks until ctx is done or the underlying listener is closed.
func (l *ChangeListener) Run(ctx context.Context) error {
	if err := l.source.Listen(ChangeChannel); err != nil {
		l.source.Close()
		return err
	}
	defer l.source.Close()

	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-l.source.NotificationChannel():
			if !ok {
				return errors.New("change feed closed")
			}
			l.handle(n)
		case <-ticker.C:
			if err := l.source.Ping(); err != nil {
				l.logger.Warn("change feed ping failed", zap.Error(err))
			}
		}
	}
}

func (l *ChangeListener) handle(n *pq.Notification) {
	// nil means the connection was re-established and notifications may
	// have been lost, so every observer re-fetches.
	if n == nil {
		l.pub.Publish(entity.LeadChange{Op: "RESYNC"})
		return
	}

	var change entity.LeadChange
	if err := json.Unmarshal([]byte(n.Extra), &change); err != nil {
		l.logger.Warn("malformed change notification, broadcasting", zap.String("payload", n.Extra), zap.Error(err))
		change = entity.LeadChange{Op: "RESYNC"}
	}

	metrics.RecordLeadChangeNotification()
	l.pub.Publish(change)
}
