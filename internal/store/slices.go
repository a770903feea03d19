package store

import (
	"slices"

	"github.com/faycal55/respira/internal/domain"
)

// Storage keys of the persisted stores.
const (
	KeyAuth     = "auth-storage"
	KeySettings = "settings-storage"
	KeyApp      = "app-storage"
)

// --- Auth ---

type AuthState struct {
	User            *domain.Identity `json:"user"`
	Profile         *domain.Profile  `json:"profile"`
	IsAuthenticated bool             `json:"isAuthenticated"`
	IsLoading       bool             `json:"isLoading"`
}

// authPersisted leaves the loading flag out of storage.
type authPersisted struct {
	User            *domain.Identity `json:"user"`
	Profile         *domain.Profile  `json:"profile"`
	IsAuthenticated bool             `json:"isAuthenticated"`
}

type AuthStore struct{ *Store[AuthState] }

// SetUser stores the identity; a nil user signs out.
func (s AuthStore) SetUser(u *domain.Identity) {
	s.Set(func(st *AuthState) {
		st.User = u
		st.IsAuthenticated = u != nil
	})
}

func (s AuthStore) SetProfile(p *domain.Profile) {
	s.Set(func(st *AuthState) { st.Profile = p })
}

func (s AuthStore) SetLoading(loading bool) {
	s.Set(func(st *AuthState) { st.IsLoading = loading })
}

// SetTokens replaces the tokens of the signed-in identity after a refresh.
func (s AuthStore) SetTokens(pair domain.TokenPair) {
	s.Set(func(st *AuthState) {
		if st.User == nil {
			return
		}
		u := *st.User
		u.AccessToken, u.RefreshToken = pair.AccessToken, pair.RefreshToken
		st.User = &u
	})
}

func (s AuthStore) SignOut() {
	s.Set(func(st *AuthState) {
		st.User = nil
		st.Profile = nil
		st.IsAuthenticated = false
	})
}

// --- Settings ---

type SettingsState struct {
	Settings domain.Settings `json:"settings"`
}

type SettingsStore struct{ *Store[SettingsState] }

// Update applies a partial change to the settings.
func (s SettingsStore) Update(change func(*domain.Settings)) {
	s.Set(func(st *SettingsState) { change(&st.Settings) })
}

// Reset restores the defaults of a fresh install.
func (s SettingsStore) Reset() {
	s.Set(func(st *SettingsState) { st.Settings = domain.DefaultSettings() })
}

func (s SettingsStore) Current() domain.Settings { return s.Get().Settings }

// --- Chat (never persisted) ---

type ChatState struct {
	Conversations         []domain.Conversation `json:"conversations"`
	CurrentConversationID string                `json:"currentConversationId"`
	Messages              []domain.ChatMessage  `json:"messages"`
	IsTyping              bool                  `json:"isTyping"`
}

type ChatStore struct{ *Store[ChatState] }

func (s ChatStore) SetConversations(list []domain.Conversation) {
	s.Set(func(st *ChatState) { st.Conversations = slices.Clone(list) })
}

// SelectConversation switches the active conversation and drops the transcript.
func (s ChatStore) SelectConversation(id string) {
	s.Set(func(st *ChatState) {
		st.CurrentConversationID = id
		st.Messages = nil
	})
}

func (s ChatStore) SetMessages(msgs []domain.ChatMessage) {
	s.Set(func(st *ChatState) { st.Messages = slices.Clone(msgs) })
}

func (s ChatStore) AddMessage(m domain.ChatMessage) {
	s.Set(func(st *ChatState) {
		st.Messages = append(slices.Clip(st.Messages), m)
	})
}

// UpdateMessage rewrites the message with id and reports whether it was found.
func (s ChatStore) UpdateMessage(id string, change func(*domain.ChatMessage)) bool {
	found := false
	s.Set(func(st *ChatState) {
		i := slices.IndexFunc(st.Messages, func(m domain.ChatMessage) bool { return m.ID == id })
		if i < 0 {
			return
		}
		found = true
		st.Messages = slices.Clone(st.Messages)
		change(&st.Messages[i])
	})
	return found
}

func (s ChatStore) SetTyping(typing bool) {
	s.Set(func(st *ChatState) { st.IsTyping = typing })
}

// Clear drops the transcript and the active conversation.
func (s ChatStore) Clear() {
	s.Set(func(st *ChatState) {
		st.Messages = nil
		st.CurrentConversationID = ""
	})
}

// Reset empties the whole chat state, conversation list included.
func (s ChatStore) Reset() {
	s.Set(func(st *ChatState) { *st = ChatState{} })
}

// --- App lifecycle ---

type AppState struct {
	IsOnline               bool `json:"isOnline"`
	IsFirstLaunch          bool `json:"isFirstLaunch"`
	HasCompletedOnboarding bool `json:"hasCompletedOnboarding"`
	NotificationPermission bool `json:"notificationPermission"`
}

func defaultAppState() AppState {
	return AppState{IsOnline: true, IsFirstLaunch: true}
}

type AppStore struct{ *Store[AppState] }

func (s AppStore) SetOnline(online bool) {
	s.Set(func(st *AppState) { st.IsOnline = online })
}

// CompleteFirstLaunch clears the first-launch flag. It never comes back.
func (s AppStore) CompleteFirstLaunch() {
	s.Set(func(st *AppState) { st.IsFirstLaunch = false })
}

// CompleteOnboarding is one-way as well.
func (s AppStore) CompleteOnboarding() {
	s.Set(func(st *AppState) {
		st.HasCompletedOnboarding = true
		st.IsFirstLaunch = false
	})
}

func (s AppStore) SetNotificationPermission(granted bool) {
	s.Set(func(st *AppState) { st.NotificationPermission = granted })
}
