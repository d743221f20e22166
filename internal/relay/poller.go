// Package relay drives the inbound pipeline: poll the channel history,
// drop what is old, automated or our own, translate the rest and publish.
package relay

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/claytonbrgsdev/slack-translator-app/internal/constants"
	"github.com/claytonbrgsdev/slack-translator-app/internal/cursor"
	"github.com/claytonbrgsdev/slack-translator-app/internal/identity"
	"github.com/claytonbrgsdev/slack-translator-app/internal/logger"
	"github.com/claytonbrgsdev/slack-translator-app/internal/publisher"
	"github.com/claytonbrgsdev/slack-translator-app/internal/slack"
	"github.com/claytonbrgsdev/slack-translator-app/internal/store"
	"github.com/claytonbrgsdev/slack-translator-app/internal/translator"
	apperrors "github.com/claytonbrgsdev/slack-translator-app/pkg/errors"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/logging"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/metrics"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/retry"
)

type HistoryAPI interface {
	FetchHistory(ctx context.Context, channelID string, oldest float64, limit int) ([]slack.Message, error)
}

type Translator interface {
	Translate(ctx context.Context, text string, target translator.Language) (string, error)
}

type IdentityResolver interface {
	Resolve(ctx context.Context, userID string) *identity.Identity
	AuthenticatedID(ctx context.Context) string
	IsSelf(userID string) bool
}

type Publisher interface {
	Publish(ctx context.Context, rec store.Record, origin publisher.Origin) error
}

type Poller struct {
	api       HistoryAPI
	trans     Translator
	resolver  IdentityResolver
	pub       Publisher
	cursor    *cursor.Cursor
	logger    logger.Logger
	channelID string
	interval  time.Duration
	pageSize  int
	policy    retry.Policy

	running atomic.Bool
}

func NewPoller(
	api HistoryAPI,
	trans Translator,
	resolver IdentityResolver,
	pub Publisher,
	cur *cursor.Cursor,
	channelID string,
	interval time.Duration,
	log logger.Logger,
) *Poller {
	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}
	return &Poller{
		api:       api,
		trans:     trans,
		resolver:  resolver,
		pub:       pub,
		cursor:    cur,
		logger:    log,
		channelID: channelID,
		interval:  interval,
		pageSize:  constants.DefaultPageSize,
		policy:    retry.DefaultPolicy(),
	}
}

// Running reports whether the poll loop is active.
func (p *Poller) Running() bool {
	return p.running.Load()
}

// Run polls until ctx is cancelled. A failed cycle is logged and the loop
// keeps its cadence; one bad fetch must not kill the relay.
func (p *Poller) Run(ctx context.Context) error {
	p.running.Store(true)
	defer p.running.Store(false)

	p.logger.InfowCtx(ctx, "Message poller started",
		"channel_id", p.channelID,
		"interval", p.interval.String(),
	)

	// Resolve our own identity up front so self-echo filtering works from
	// the first cycle.
	p.resolver.AuthenticatedID(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.RunCycle(ctx); err != nil {
			p.logger.WarnwCtx(ctx, "Poll cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			p.logger.InfowCtx(ctx, "Message poller stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle executes one fetch-filter-translate-publish pass.
func (p *Poller) RunCycle(ctx context.Context) error {
	oldest := p.cursor.HighWater()

	var messages []slack.Message
	err := retry.Retry(ctx, p.policy, func() error {
		var fetchErr error
		messages, fetchErr = p.api.FetchHistory(ctx, p.channelID, oldest, p.pageSize)
		return fetchErr
	})
	if err != nil {
		metrics.PollCyclesTotal.WithLabelValues("fetch_failed").Inc()
		return fmt.Errorf("failed to fetch channel history: %w", err)
	}

	// The history API returns newest first; the relay consumes oldest first
	// so the published order matches the conversation.
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})

	maxTS := oldest
	for _, msg := range messages {
		if msg.Timestamp > maxTS {
			maxTS = msg.Timestamp
		}

		switch {
		case msg.Automated:
			metrics.RelayMessagesTotal.WithLabelValues("automated").Inc()
			continue
		case p.resolver.IsSelf(msg.AuthorID):
			metrics.RelayMessagesTotal.WithLabelValues("self").Inc()
			continue
		case !p.cursor.ShouldProcess(ctx, msg.ID, msg.Timestamp):
			metrics.RelayMessagesTotal.WithLabelValues("duplicate").Inc()
			continue
		}

		msgCtx := logging.WithMessageID(ctx, msg.ID)
		if err := p.processMessage(msgCtx, msg); err != nil {
			metrics.RelayMessagesTotal.WithLabelValues("failed").Inc()
			p.logger.ErrorwCtx(msgCtx, "Failed to relay message", "error", err)
			continue
		}
		metrics.RelayMessagesTotal.WithLabelValues("relayed").Inc()
	}

	// Skipped messages advance the mark too; they are consumed either way.
	p.cursor.Advance(maxTS)
	metrics.PollCyclesTotal.WithLabelValues("ok").Inc()
	return nil
}

func (p *Poller) processMessage(ctx context.Context, msg slack.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.RecoverPanic(r)
		}
	}()

	senderName := "Unknown User"
	senderAvatar := ""
	if ident := p.resolver.Resolve(ctx, msg.AuthorID); ident != nil {
		if ident.DisplayName != "" {
			senderName = ident.DisplayName
		}
		senderAvatar = ident.AvatarURL
	}

	translated, terr := p.trans.Translate(ctx, msg.Text, translator.LanguagePortuguese)
	if terr != nil {
		// The message still reaches the reader; the placeholder carries the
		// original so nothing is silently dropped.
		p.logger.WarnwCtx(ctx, "Translation failed, publishing placeholder", "error", terr)
		metrics.FallbackUsageTotal.WithLabelValues("relay", "placeholder").Inc()
		translated = translator.Placeholder(terr, msg.Text)
	}

	return p.pub.Publish(ctx, store.Record{
		ID:                msg.ID,
		OriginalText:      msg.Text,
		TranslatedText:    translated,
		Timestamp:         int64(msg.Timestamp),
		SenderID:          msg.AuthorID,
		SenderDisplayName: senderName,
		SenderAvatarURL:   senderAvatar,
	}, publisher.OriginChannel)
}
