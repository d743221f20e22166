// Package publisher is the single write path into the message history: it
// serializes appends, keeps display timestamps non-decreasing and fans the
// record out to connected clients.
package publisher

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/claytonbrgsdev/slack-translator-app/internal/hub"
	"github.com/claytonbrgsdev/slack-translator-app/internal/logger"
	"github.com/claytonbrgsdev/slack-translator-app/internal/store"
	apperrors "github.com/claytonbrgsdev/slack-translator-app/pkg/errors"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/metrics"
)

// Origin labels where a published record came from, for metrics only.
type Origin string

const (
	OriginChannel Origin = "channel"
	OriginLocal   Origin = "local"
	OriginTest    Origin = "test"
)

type Publisher struct {
	store  store.Store
	hub    *hub.Hub
	logger logger.Logger

	mu     sync.Mutex
	lastTS int64
}

func New(st store.Store, h *hub.Hub, log logger.Logger) *Publisher {
	return &Publisher{store: st, hub: h, logger: log}
}

// Publish validates, stores and broadcasts one record. The store append and
// the broadcast happen under one lock so subscribers observe records in
// exactly the order the history holds them.
func (p *Publisher) Publish(ctx context.Context, rec store.Record, origin Origin) error {
	if strings.TrimSpace(rec.OriginalText) == "" && strings.TrimSpace(rec.TranslatedText) == "" {
		return apperrors.ErrValidation.WithDetail("message", "record has no text")
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().Unix()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Clock skew between the channel service and this host must not make
	// the history appear to run backwards.
	if rec.Timestamp < p.lastTS {
		rec.Timestamp = p.lastTS
	}
	p.lastTS = rec.Timestamp

	if err := p.store.Append(ctx, rec); err != nil {
		metrics.PublishTotal.WithLabelValues(string(origin) + "_failed").Inc()
		return apperrors.Wrap(err, apperrors.ErrInternal.WithDetail("message", "failed to store message record"))
	}

	p.hub.Broadcast(rec)
	metrics.PublishTotal.WithLabelValues(string(origin)).Inc()

	p.logger.DebugwCtx(ctx, "Message published",
		"message_id", rec.ID,
		"origin", string(origin),
		"sent_by_current_user", rec.SentByCurrentUser,
	)
	return nil
}
