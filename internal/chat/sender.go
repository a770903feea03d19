// Package chat orchestrates sending a message to the AI companion on top of
// the chat store.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faycal55/respira/internal/catalog"
	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/internal/store"
	apperrors "github.com/faycal55/respira/pkg/errors"
)

// DefaultTheme is the conversation theme selected on a fresh screen.
const DefaultTheme = "anxiety"

type Option func(*Sender)

func WithSpeaker(sp Speaker) Option { return func(s *Sender) { s.speaker = sp } }

func WithLogger(l *slog.Logger) Option { return func(s *Sender) { s.logger = l } }

func WithCatalog(c *catalog.Catalog) Option { return func(s *Sender) { s.catalog = c } }

// WithNow replaces the clock used for titles and local timestamps.
func WithNow(now func() time.Time) Option { return func(s *Sender) { s.now = now } }

// Sender runs the send flow. At most one send is in flight at a time.
type Sender struct {
	conversations ConversationService
	functions     Functions
	alerter       Alerter
	speaker       Speaker
	chat          store.ChatStore
	settings      store.SettingsStore
	catalog       *catalog.Catalog
	logger        *slog.Logger
	now           func() time.Time

	mu       sync.Mutex
	theme    string
	inFlight atomic.Bool
	localSeq atomic.Uint64
}

func NewSender(
	conversations ConversationService,
	functions Functions,
	alerter Alerter,
	chat store.ChatStore,
	settings store.SettingsStore,
	opts ...Option,
) *Sender {
	s := &Sender{
		conversations: conversations,
		functions:     functions,
		alerter:       alerter,
		chat:          chat,
		settings:      settings,
		catalog:       catalog.Default(),
		logger:        slog.Default(),
		now:           time.Now,
		theme:         DefaultTheme,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetTheme selects the conversation theme sent with the next messages.
func (s *Sender) SetTheme(id string) error {
	if _, err := s.catalog.Theme(id); err != nil {
		return err
	}
	s.mu.Lock()
	s.theme = id
	s.mu.Unlock()
	return nil
}

func (s *Sender) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Sending reports whether a send is in flight.
func (s *Sender) Sending() bool { return s.inFlight.Load() }

// Send delivers text to the active conversation (creating one if needed),
// asks the assistant for a reply and appends it. The user message is appended
// before any network call and stays in the transcript whatever happens; a
// failure raises exactly one alert and is returned.
func (s *Sender) Send(ctx context.Context, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSendInFlight
	}
	defer s.inFlight.Store(false)

	s.chat.SetTyping(true)
	defer s.chat.SetTyping(false)

	conversationID := s.chat.Get().CurrentConversationID
	if conversationID == "" {
		id, err := s.createConversation(ctx)
		if err != nil {
			return nil, s.fail(ctx, fmt.Errorf("create conversation: %w", err), createFailedMessage)
		}
		conversationID = id
	}

	history := historyOf(s.chat.Get().Messages)

	local := s.appendPending(domain.RoleUser, text)
	stored, err := s.conversations.AddMessage(ctx, conversationID, domain.RoleUser, text)
	if err != nil {
		s.markFailed(local.ID)
		return nil, s.fail(ctx, fmt.Errorf("save user message: %w", err), sendFailedMessage)
	}
	s.confirm(local.ID, stored)

	settings := s.settings.Current()
	resp, err := s.functions.Chat(ctx, domain.ChatRequest{
		Model:    settings.AIModel,
		Theme:    s.themeLabel(settings.Language),
		Language: settings.Language,
		History:  history,
		UserText: text,
	})
	if err == nil && (resp == nil || strings.TrimSpace(resp.Answer) == "") {
		err = ErrNoAnswer
	}
	if err != nil {
		return nil, s.fail(ctx, fmt.Errorf("ai chat: %w", err), sendFailedMessage)
	}

	reply := s.appendPending(domain.RoleAssistant, resp.Answer)
	storedReply, err := s.conversations.AddMessage(ctx, conversationID, domain.RoleAssistant, resp.Answer)
	if err != nil {
		s.markFailed(reply.ID)
		return nil, s.fail(ctx, fmt.Errorf("save assistant message: %w", err), sendFailedMessage)
	}
	reply = s.confirm(reply.ID, storedReply)

	if settings.VoiceEnabled && s.speaker != nil {
		if err := s.speaker.Speak(ctx, resp.Answer, settings.ElevenVoiceID); err != nil {
			s.logger.WarnContext(ctx, "speech synthesis failed",
				slog.String("conversation_id", conversationID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "chat message sent",
		slog.String("conversation_id", conversationID),
		slog.Int("history", len(history)),
	)
	return &reply, nil
}

// Select makes id the active conversation and loads its transcript.
func (s *Sender) Select(ctx context.Context, id string) error {
	s.chat.SelectConversation(id)
	msgs, err := s.conversations.ListMessages(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load messages",
			slog.String("conversation_id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("load messages: %w", err)
	}

	transcript := make([]domain.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		transcript = append(transcript, domain.ChatMessageFromStored(m))
	}
	// The user may have switched again while the request was running.
	if s.chat.Get().CurrentConversationID != id {
		return nil
	}
	s.chat.SetMessages(transcript)
	return nil
}

// LoadConversations refreshes the list and selects the most recent
// conversation when none is active.
func (s *Sender) LoadConversations(ctx context.Context) ([]domain.Conversation, error) {
	list, err := s.conversations.ListConversations(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load conversations", slog.String("error", err.Error()))
		return nil, fmt.Errorf("load conversations: %w", err)
	}
	s.chat.SetConversations(list)
	if len(list) > 0 && s.chat.Get().CurrentConversationID == "" {
		if err := s.Select(ctx, list[0].ID); err != nil {
			return list, err
		}
	}
	return list, nil
}

// StartNew leaves the active conversation; the next send creates a new one.
func (s *Sender) StartNew() {
	s.chat.Clear()
}

func (s *Sender) createConversation(ctx context.Context) (string, error) {
	title := "Conversation du " + s.now().Format("02/01/2006")
	conv, err := s.conversations.CreateConversation(ctx, title)
	if err != nil {
		return "", err
	}

	if list, err := s.conversations.ListConversations(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh conversations", slog.String("error", err.Error()))
	} else {
		s.chat.SetConversations(list)
	}
	s.chat.SelectConversation(conv.ID)

	s.logger.InfoContext(ctx, "conversation created", slog.String("conversation_id", conv.ID))
	return conv.ID, nil
}

func (s *Sender) appendPending(role domain.Role, content string) domain.ChatMessage {
	m := domain.ChatMessage{
		ID:        "local-" + strconv.FormatUint(s.localSeq.Add(1), 10),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UTC(),
		Delivery:  domain.DeliveryPending,
	}
	s.chat.AddMessage(m)
	return m
}

// confirm swaps the local id for the stored one and returns the updated entry.
func (s *Sender) confirm(localID string, stored *domain.Message) domain.ChatMessage {
	var out domain.ChatMessage
	s.chat.UpdateMessage(localID, func(m *domain.ChatMessage) {
		if stored != nil {
			if stored.ID != "" {
				m.ID = stored.ID
			}
			if !stored.CreatedAt.IsZero() {
				m.Timestamp = stored.CreatedAt
			}
			m.AudioURL = stored.AudioURL
		}
		m.Delivery = domain.DeliveryConfirmed
		out = *m
	})
	return out
}

func (s *Sender) markFailed(localID string) {
	s.chat.UpdateMessage(localID, func(m *domain.ChatMessage) {
		m.Delivery = domain.DeliveryFailed
	})
}

func (s *Sender) fail(ctx context.Context, err error, fallback string) error {
	s.logger.WarnContext(ctx, "chat send failed", slog.String("error", err.Error()))
	s.alerter.Alert(alertTitle, apperrors.UserMessage(err, fallback))
	return err
}

func (s *Sender) themeLabel(lang domain.Language) string {
	id := s.Theme()
	t, err := s.catalog.Theme(id)
	if err != nil {
		return id
	}
	return t.Label(lang)
}

func historyOf(msgs []domain.ChatMessage) []domain.HistoryMessage {
	out := make([]domain.HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, domain.HistoryMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
