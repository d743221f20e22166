// Package composer handles outbound messages: translate the local user's
// text to English, post it to the channel and echo it into the local history.
package composer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claytonbrgsdev/slack-translator-app/internal/identity"
	"github.com/claytonbrgsdev/slack-translator-app/internal/logger"
	"github.com/claytonbrgsdev/slack-translator-app/internal/publisher"
	"github.com/claytonbrgsdev/slack-translator-app/internal/slack"
	"github.com/claytonbrgsdev/slack-translator-app/internal/store"
	"github.com/claytonbrgsdev/slack-translator-app/internal/translator"
	apperrors "github.com/claytonbrgsdev/slack-translator-app/pkg/errors"
)

// ErrPostFailed marks a message that translated fine but never reached the
// channel. Distinct from translation failures so the client can say which
// half of the send broke.
var ErrPostFailed = apperrors.NewError("POST_FAILED", "failed to post message to channel", 502)

type MessageAPI interface {
	PostMessage(ctx context.Context, channelID, text string) (*slack.PostResult, error)
}

type Translator interface {
	Translate(ctx context.Context, text string, target translator.Language) (string, error)
}

type IdentityResolver interface {
	Resolve(ctx context.Context, userID string) *identity.Identity
	AuthenticatedID(ctx context.Context) string
}

type Publisher interface {
	Publish(ctx context.Context, rec store.Record, origin publisher.Origin) error
}

type Composer struct {
	api       MessageAPI
	trans     Translator
	resolver  IdentityResolver
	pub       Publisher
	logger    logger.Logger
	channelID string
}

func New(
	api MessageAPI,
	trans Translator,
	resolver IdentityResolver,
	pub Publisher,
	channelID string,
	log logger.Logger,
) *Composer {
	return &Composer{
		api:       api,
		trans:     trans,
		resolver:  resolver,
		pub:       pub,
		logger:    log,
		channelID: channelID,
	}
}

// ComposeAndSend translates text to English, posts the translation to the
// channel and publishes the pair locally. Any failure before the post means
// nothing reaches the channel; a failed post means nothing is published
// either, so the local history never shows a message the channel lacks.
func (c *Composer) ComposeAndSend(ctx context.Context, text string) (*store.Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrValidation.WithDetail("message", "message text is empty")
	}

	translated, err := c.trans.Translate(ctx, text, translator.LanguageEnglish)
	if err != nil {
		c.logger.WarnwCtx(ctx, "Outbound translation failed, message not sent", "error", err)
		return nil, err
	}

	if _, err := c.api.PostMessage(ctx, c.channelID, translated); err != nil {
		c.logger.ErrorwCtx(ctx, "Failed to post message to channel", "error", err)
		return nil, ErrPostFailed.WithCause(err)
	}

	rec := store.Record{
		ID:                uuid.NewString(),
		OriginalText:      text,
		TranslatedText:    translated,
		Timestamp:         time.Now().Unix(),
		SenderDisplayName: "You",
		SentByCurrentUser: true,
	}
	if selfID := c.resolver.AuthenticatedID(ctx); selfID != "" {
		rec.SenderID = selfID
		if ident := c.resolver.Resolve(ctx, selfID); ident != nil {
			if ident.DisplayName != "" {
				rec.SenderDisplayName = ident.DisplayName
			}
			rec.SenderAvatarURL = ident.AvatarURL
		}
	}

	if err := c.pub.Publish(ctx, rec, publisher.OriginLocal); err != nil {
		// The channel has the message; surface the local bookkeeping failure
		// but do not pretend the send failed.
		c.logger.ErrorwCtx(ctx, "Message sent but local publish failed", "error", err)
	}

	return &rec, nil
}
