package domain

import "time"

// HistoryMessage is one prior turn sent along with a chat request.
type HistoryMessage struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest asks the AI companion for a reply.
type ChatRequest struct {
	Model    string           `json:"model" validate:"required,max=100"`
	Theme    string           `json:"theme" validate:"required,max=100"`
	Language Language         `json:"language" validate:"required,oneof=fr en ar"`
	History  []HistoryMessage `json:"history" validate:"max=100,dive"`
	UserText string           `json:"userText" validate:"required,notblank,max=4000"`
}

type ChatResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversationId,omitempty"`
}

type TTSRequest struct {
	Text    string `json:"text" validate:"required,notblank,max=5000"`
	VoiceID string `json:"voiceId" validate:"required,max=64"`
}

// TTSResponse carries base64 encoded audio.
type TTSResponse struct {
	AudioContent string  `json:"audioContent"`
	Duration     float64 `json:"duration,omitempty"`
}

type STTRequest struct {
	Audio    string   `json:"audio" validate:"required,base64"`
	Language Language `json:"language,omitempty" validate:"omitempty,oneof=fr en ar"`
}

type STTResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// SubscriptionStatus answers the subscription check.
type SubscriptionStatus struct {
	Subscribed       bool       `json:"subscribed"`
	PlanID           string     `json:"plan_id,omitempty"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

// Subscription is a row of the subscriptions table.
type Subscription struct {
	UserID           string
	PlanID           string
	Status           string
	CurrentPeriodEnd time.Time
}

// Active reports whether the subscription grants access at now.
func (s *Subscription) Active(now time.Time) bool {
	return (s.Status == "active" || s.Status == "trialing") && now.Before(s.CurrentPeriodEnd)
}

// SupportRequest is a contact form submission.
type SupportRequest struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"name" validate:"required,notblank,max=100"`
	Email     string    `json:"email" validate:"required,email"`
	Subject   string    `json:"subject" validate:"required,notblank,max=200"`
	Message   string    `json:"message" validate:"required,notblank,max=5000"`
	CreatedAt time.Time `json:"created_at"`
}
