package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claytonbrgsdev/slack-translator-app/internal/logger"
	"github.com/claytonbrgsdev/slack-translator-app/internal/slack"
	apperrors "github.com/claytonbrgsdev/slack-translator-app/pkg/errors"
)

type fakeProfileAPI struct {
	profiles     map[string]*slack.UserProfile
	self         *slack.AuthIdentity
	authErr      error
	profileCalls int
	authCalls    int
}

func (f *fakeProfileAPI) AuthTest(ctx context.Context) (*slack.AuthIdentity, error) {
	f.authCalls++
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.self, nil
}

func (f *fakeProfileAPI) GetUserProfile(ctx context.Context, userID string) (*slack.UserProfile, error) {
	f.profileCalls++
	p, ok := f.profiles[userID]
	if !ok {
		return nil, apperrors.ErrNotFound.WithDetail("user_id", userID)
	}
	return p, nil
}

func TestResolveDisplayNamePriority(t *testing.T) {
	tests := []struct {
		name    string
		profile *slack.UserProfile
		want    string
	}{
		{
			name:    "real name first",
			profile: &slack.UserProfile{RealName: "Jane Doe", DisplayName: "jane", LoginName: "jdoe"},
			want:    "Jane Doe",
		},
		{
			name:    "profile display name when real name blank",
			profile: &slack.UserProfile{RealName: "  ", DisplayName: "jane", LoginName: "jdoe"},
			want:    "jane",
		},
		{
			name:    "login name as last resort",
			profile: &slack.UserProfile{LoginName: "jdoe"},
			want:    "jdoe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeProfileAPI{profiles: map[string]*slack.UserProfile{"U1": tt.profile}}
			r := NewResolver(api, logger.NopLogger())

			ident := r.Resolve(context.Background(), "U1")
			require.NotNil(t, ident)
			assert.Equal(t, tt.want, ident.DisplayName)
		})
	}
}

func TestResolveAvatarLargestFirst(t *testing.T) {
	api := &fakeProfileAPI{profiles: map[string]*slack.UserProfile{
		"U1": {
			LoginName:      "jdoe",
			AvatarVariants: []string{"", "https://img/192.png", "https://img/72.png"},
		},
	}}
	r := NewResolver(api, logger.NopLogger())

	ident := r.Resolve(context.Background(), "U1")
	require.NotNil(t, ident)
	assert.Equal(t, "https://img/192.png", ident.AvatarURL)
}

func TestResolveCachesPositiveResult(t *testing.T) {
	api := &fakeProfileAPI{profiles: map[string]*slack.UserProfile{
		"U1": {RealName: "Jane Doe"},
	}}
	r := NewResolver(api, logger.NopLogger())

	first := r.Resolve(context.Background(), "U1")
	second := r.Resolve(context.Background(), "U1")

	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, api.profileCalls)
}

func TestResolveCachesNegativeResult(t *testing.T) {
	api := &fakeProfileAPI{profiles: map[string]*slack.UserProfile{}}
	r := NewResolver(api, logger.NopLogger())

	assert.Nil(t, r.Resolve(context.Background(), "U1"))
	assert.Nil(t, r.Resolve(context.Background(), "U1"))
	assert.Equal(t, 1, api.profileCalls, "failed lookup must not be retried within the process lifetime")
}

func TestResetRetriesFailedLookups(t *testing.T) {
	api := &fakeProfileAPI{profiles: map[string]*slack.UserProfile{}}
	r := NewResolver(api, logger.NopLogger())

	r.Resolve(context.Background(), "U1")
	api.profiles["U1"] = &slack.UserProfile{RealName: "Jane Doe"}
	r.Reset()

	ident := r.Resolve(context.Background(), "U1")
	require.NotNil(t, ident)
	assert.Equal(t, "Jane Doe", ident.DisplayName)
	assert.Equal(t, 2, api.profileCalls)
}

func TestResolveBlankID(t *testing.T) {
	api := &fakeProfileAPI{}
	r := NewResolver(api, logger.NopLogger())

	assert.Nil(t, r.Resolve(context.Background(), "  "))
	assert.Equal(t, 0, api.profileCalls)
}

func TestAuthenticatedID(t *testing.T) {
	api := &fakeProfileAPI{self: &slack.AuthIdentity{UserID: "U42", User: "relay-bot"}}
	r := NewResolver(api, logger.NopLogger())

	assert.Equal(t, "U42", r.AuthenticatedID(context.Background()))
	assert.Equal(t, "U42", r.AuthenticatedID(context.Background()))
	assert.Equal(t, 1, api.authCalls, "identity is re-derived only when absent")
}

func TestAuthenticatedIDFailureIsNotFatal(t *testing.T) {
	api := &fakeProfileAPI{authErr: apperrors.ErrTransport}
	r := NewResolver(api, logger.NopLogger())

	assert.Equal(t, "", r.AuthenticatedID(context.Background()))

	// Recovers once the API does.
	api.authErr = nil
	api.self = &slack.AuthIdentity{UserID: "U42"}
	assert.Equal(t, "U42", r.AuthenticatedID(context.Background()))
}

func TestIsSelf(t *testing.T) {
	api := &fakeProfileAPI{self: &slack.AuthIdentity{UserID: "U42"}}
	r := NewResolver(api, logger.NopLogger())

	// Unset identity: always false, regardless of input.
	assert.False(t, r.IsSelf("U42"))
	assert.False(t, r.IsSelf(""))

	r.AuthenticatedID(context.Background())

	assert.True(t, r.IsSelf("U42"))
	assert.True(t, r.IsSelf(" U42 "), "comparison is on trimmed strings")
	assert.False(t, r.IsSelf("U43"))
	assert.False(t, r.IsSelf("   "))
}
