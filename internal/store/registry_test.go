package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/pkg/logger"
)

func restart(t *testing.T, p Persister) *Registry {
	t.Helper()
	r := NewRegistry(p, logger.Discard())
	require.NoError(t, r.Rehydrate(context.Background()))
	return r
}

func TestRegistry_Defaults(t *testing.T) {
	r := NewRegistry(nil, logger.Discard())

	assert.Equal(t, domain.DefaultSettings(), r.Settings.Current())
	assert.Equal(t, domain.LanguageFR, r.Settings.Current().Language)
	assert.True(t, r.App.Get().IsFirstLaunch)
	assert.True(t, r.App.Get().IsOnline)
	assert.False(t, r.Auth.Get().IsAuthenticated)
	assert.True(t, r.NotificationsEnabled())
}

func TestRegistry_SettingsSurviveRestartChatDoesNot(t *testing.T) {
	p := NewMemoryPersister()
	r := restart(t, p)

	r.Settings.Update(func(s *domain.Settings) { s.Theme = domain.ThemeDark })
	r.Chat.SelectConversation("c-1")
	r.Chat.AddMessage(domain.ChatMessage{ID: "m-1", Role: domain.RoleUser, Content: "bonjour"})
	flush(t, r)

	again := restart(t, p)
	assert.Equal(t, domain.ThemeDark, again.Settings.Current().Theme)
	assert.Equal(t, domain.DefaultAIModel, again.Settings.Current().AIModel)
	assert.Empty(t, again.Chat.Get().Messages)
	assert.Empty(t, again.Chat.Get().CurrentConversationID)
	assert.Equal(t, []string{KeySettings}, p.Keys(), "untouched stores are not written")
}

func TestRegistry_AuthPersistsIdentityNotLoading(t *testing.T) {
	p := NewMemoryPersister()
	r := restart(t, p)

	r.Auth.SetUser(&domain.Identity{UserID: "u-1", Email: "a@b.fr", AccessToken: "at", RefreshToken: "rt"})
	r.Auth.SetProfile(&domain.Profile{ID: "u-1", FirstName: "Awa"})
	r.Auth.SetLoading(true)
	flush(t, r)

	raw, err := p.Load(context.Background(), KeyAuth)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "isLoading")

	again := restart(t, p)
	st := again.Auth.Get()
	require.NotNil(t, st.User)
	assert.Equal(t, "u-1", st.User.UserID)
	assert.Equal(t, "Awa", st.Profile.FirstName)
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.IsLoading)
}

func TestRegistry_ResetAllKeepsSettingsAndLifecycle(t *testing.T) {
	r := NewRegistry(NewMemoryPersister(), logger.Discard())
	r.Settings.Update(func(s *domain.Settings) {
		s.Language = domain.LanguageEN
		s.VoiceEnabled = true
	})
	r.App.CompleteOnboarding()
	r.App.SetNotificationPermission(true)
	r.Auth.SetUser(&domain.Identity{UserID: "u-1"})
	r.Auth.SetProfile(&domain.Profile{ID: "u-1"})
	r.Chat.SetConversations([]domain.Conversation{{ID: "c-1"}})
	r.Chat.SelectConversation("c-1")
	r.Chat.AddMessage(domain.ChatMessage{ID: "m-1"})

	settingsBefore, err := json.Marshal(r.Settings.Get())
	require.NoError(t, err)
	appBefore, err := json.Marshal(r.App.Get())
	require.NoError(t, err)

	r.ResetAll()

	auth := r.Auth.Get()
	assert.Nil(t, auth.User)
	assert.Nil(t, auth.Profile)
	assert.False(t, auth.IsAuthenticated)
	assert.Equal(t, ChatState{}, r.Chat.Get())

	settingsAfter, err := json.Marshal(r.Settings.Get())
	require.NoError(t, err)
	appAfter, err := json.Marshal(r.App.Get())
	require.NoError(t, err)
	assert.Equal(t, settingsBefore, settingsAfter)
	assert.Equal(t, appBefore, appAfter)
}

func TestRegistry_LifecycleFlagsAreOneWay(t *testing.T) {
	p := NewMemoryPersister()
	r := restart(t, p)
	r.App.CompleteOnboarding()
	r.ResetAll()
	flush(t, r)

	again := restart(t, p)
	assert.True(t, again.App.Get().HasCompletedOnboarding)
	assert.False(t, again.App.Get().IsFirstLaunch)
}

func TestChatStore_Transcript(t *testing.T) {
	r := NewRegistry(nil, logger.Discard())
	chat := r.Chat

	chat.AddMessage(domain.ChatMessage{ID: "a", Delivery: domain.DeliveryPending})
	snapshot := chat.Get().Messages

	assert.True(t, chat.UpdateMessage("a", func(m *domain.ChatMessage) { m.Delivery = domain.DeliveryConfirmed }))
	assert.False(t, chat.UpdateMessage("missing", func(*domain.ChatMessage) {}))

	assert.Equal(t, domain.DeliveryPending, snapshot[0].Delivery, "earlier snapshots are not mutated")
	assert.Equal(t, domain.DeliveryConfirmed, chat.Get().Messages[0].Delivery)

	chat.SetTyping(true)
	chat.SelectConversation("c-2")
	assert.Empty(t, chat.Get().Messages)
	assert.True(t, chat.Get().IsTyping)

	chat.SetConversations([]domain.Conversation{{ID: "c-2"}})
	chat.Clear()
	assert.Empty(t, chat.Get().CurrentConversationID)
	assert.Len(t, chat.Get().Conversations, 1)
}

func TestAuthStore_SetTokens(t *testing.T) {
	r := NewRegistry(nil, logger.Discard())
	r.Auth.SetTokens(domain.TokenPair{AccessToken: "x"})
	assert.Nil(t, r.Auth.Get().User)

	r.Auth.SetUser(&domain.Identity{UserID: "u", AccessToken: "old"})
	before := r.Auth.Get().User
	r.Auth.SetTokens(domain.TokenPair{AccessToken: "new", RefreshToken: "r"})
	assert.Equal(t, "new", r.Auth.Get().User.AccessToken)
	assert.Equal(t, "old", before.AccessToken)
}

func TestSettingsStore_Reset(t *testing.T) {
	r := NewRegistry(nil, logger.Discard())
	r.Settings.Update(func(s *domain.Settings) { s.AIModel = "gpt-4o" })
	r.Settings.Reset()
	assert.Equal(t, domain.DefaultSettings(), r.Settings.Current())
}
