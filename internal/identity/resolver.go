// Package identity maps channel-native user ids to display identities and
// tracks the identity the relay itself authenticates as.
package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/claytonbrgsdev/slack-translator-app/internal/logger"
	"github.com/claytonbrgsdev/slack-translator-app/internal/slack"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/metrics"
)

// Identity is the resolved display form of a channel user.
type Identity struct {
	DisplayName string
	AvatarURL   string
}

// ProfileAPI is the slice of the channel gateway the resolver needs.
type ProfileAPI interface {
	AuthTest(ctx context.Context) (*slack.AuthIdentity, error)
	GetUserProfile(ctx context.Context, userID string) (*slack.UserProfile, error)
}

// displayNameExtractors is the priority order for picking a display name.
var displayNameExtractors = []func(p *slack.UserProfile) string{
	func(p *slack.UserProfile) string { return p.RealName },
	func(p *slack.UserProfile) string { return p.DisplayName },
	func(p *slack.UserProfile) string { return p.LoginName },
}

type Resolver struct {
	api    ProfileAPI
	logger logger.Logger

	mu     sync.RWMutex
	cache  map[string]*Identity // nil value = cached negative result
	selfID string
}

func NewResolver(api ProfileAPI, log logger.Logger) *Resolver {
	return &Resolver{
		api:    api,
		logger: log,
		cache:  make(map[string]*Identity),
	}
}

// Resolve returns the display identity for userID, or nil when the lookup
// failed. Failures are cached so a broken id does not hammer the API; a
// Reset (reconnect) clears them.
func (r *Resolver) Resolve(ctx context.Context, userID string) *Identity {
	if strings.TrimSpace(userID) == "" {
		return nil
	}

	r.mu.RLock()
	cached, ok := r.cache[userID]
	r.mu.RUnlock()
	if ok {
		if cached == nil {
			metrics.IdentityLookupsTotal.WithLabelValues("negative_hit").Inc()
		} else {
			metrics.IdentityLookupsTotal.WithLabelValues("hit").Inc()
		}
		return cached
	}

	profile, err := r.api.GetUserProfile(ctx, userID)
	if err != nil {
		r.logger.WarnwCtx(ctx, "User profile lookup failed, caching negative result",
			"user_id", userID,
			"error", err,
		)
		metrics.IdentityLookupsTotal.WithLabelValues("failed").Inc()
		r.put(userID, nil)
		return nil
	}

	ident := &Identity{
		DisplayName: firstNonBlankName(profile),
		AvatarURL:   firstNonBlank(profile.AvatarVariants),
	}
	metrics.IdentityLookupsTotal.WithLabelValues("resolved").Inc()
	r.put(userID, ident)
	return ident
}

// AuthenticatedID returns the id the relay authenticates as, deriving it from
// a fresh auth check when unset. Never returns an error; a failed check
// leaves the id blank and logs a diagnostic.
func (r *Resolver) AuthenticatedID(ctx context.Context) string {
	r.mu.RLock()
	selfID := r.selfID
	r.mu.RUnlock()
	if strings.TrimSpace(selfID) != "" {
		return selfID
	}

	ident, err := r.api.AuthTest(ctx)
	if err != nil {
		r.logger.WarnwCtx(ctx, "Auth check failed, authenticated identity unknown", "error", err)
		return ""
	}

	r.mu.Lock()
	r.selfID = ident.UserID
	r.mu.Unlock()

	r.logger.InfowCtx(ctx, "Authenticated identity resolved",
		"user_id", ident.UserID,
		"user", ident.User,
		"team", ident.Team,
	)
	return ident.UserID
}

// IsSelf reports whether userID is the authenticated identity. False when
// either side is absent or blank; comparison is on trimmed strings.
func (r *Resolver) IsSelf(userID string) bool {
	r.mu.RLock()
	selfID := r.selfID
	r.mu.RUnlock()

	self := strings.TrimSpace(selfID)
	other := strings.TrimSpace(userID)
	if self == "" || other == "" {
		return false
	}
	return self == other
}

// Reset drops the identity cache and the authenticated id. Called on
// reconnect so failed lookups get retried.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.cache = make(map[string]*Identity)
	r.selfID = ""
	r.mu.Unlock()
}

func (r *Resolver) put(userID string, ident *Identity) {
	r.mu.Lock()
	r.cache[userID] = ident
	r.mu.Unlock()
}

func firstNonBlankName(profile *slack.UserProfile) string {
	for _, extract := range displayNameExtractors {
		if name := strings.TrimSpace(extract(profile)); name != "" {
			return name
		}
	}
	return ""
}

func firstNonBlank(values []string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
