package chat

import "errors"

var (
	ErrEmptyMessage = errors.New("chat: message is empty")
	ErrSendInFlight = errors.New("chat: a message is already being sent")
	ErrNoAnswer     = errors.New("chat: no answer from the assistant")
)

const (
	alertTitle          = "Erreur"
	sendFailedMessage   = "Impossible d'envoyer le message. Veuillez réessayer."
	createFailedMessage = "Impossible de créer une nouvelle conversation"
)
