package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/pkg/database"
	apperrors "github.com/faycal55/respira/pkg/errors"
)

// ConversationRepository implements repository.ConversationRepository.
type ConversationRepository struct {
	db database.DBTX
}

func NewConversationRepository(db database.DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(ctx context.Context, c *domain.Conversation) (err error) {
	const q = `
		INSERT INTO conversations (id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	ctx, end := database.TraceQuery(ctx, "CreateConversation", q)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, q, c.ID, c.UserID, c.Title, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id string) (_ *domain.Conversation, err error) {
	const q = `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE id = $1`
	ctx, end := database.TraceQuery(ctx, "GetConversation", q)
	defer func() { end(err) }()

	var c domain.Conversation
	err = r.db.QueryRow(ctx, q, id).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("conversation", id)
		}
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	return &c, nil
}

func (r *ConversationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) (_ []domain.Conversation, _ int, err error) {
	const countQuery = `SELECT COUNT(*) FROM conversations WHERE user_id = $1`
	const listQuery = `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC, id
		LIMIT $2 OFFSET $3`
	ctx, end := database.TraceQuery(ctx, "ListConversations", listQuery)
	defer func() { end(err) }()

	var total int
	if err = r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}

	rows, err := r.db.Query(ctx, listQuery, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]domain.Conversation, 0)
	for rows.Next() {
		var c domain.Conversation
		if err = rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan conversation row: %w", err)
		}
		conversations = append(conversations, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate conversations: %w", err)
	}
	return conversations, total, nil
}

// MessageRepository implements repository.MessageRepository.
type MessageRepository struct {
	db database.DBTX
}

func NewMessageRepository(db database.DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) (err error) {
	const insertMessage = `
		INSERT INTO messages (id, conversation_id, user_id, role, content, audio_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	const touchConversation = `UPDATE conversations SET updated_at = $1 WHERE id = $2`
	ctx, end := database.TraceQuery(ctx, "CreateMessage", insertMessage)
	defer func() { end(err) }()

	err = database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertMessage,
			m.ID,
			m.ConversationID,
			nullable(m.UserID),
			string(m.Role),
			m.Content,
			nullable(m.AudioURL),
			m.CreatedAt,
		); err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.NotFound("conversation", m.ConversationID)
			}
			return fmt.Errorf("insert message: %w", err)
		}
		if _, err := tx.Exec(ctx, touchConversation, m.CreatedAt, m.ConversationID); err != nil {
			return fmt.Errorf("touch conversation: %w", err)
		}
		return nil
	})
	return err
}

func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) (_ []domain.Message, err error) {
	const q = `
		SELECT id, conversation_id, user_id, role, content, audio_url, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id`
	ctx, end := database.TraceQuery(ctx, "ListMessages", q)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, q, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var (
			m        domain.Message
			role     string
			userID   *string
			audioURL *string
		)
		if err = rows.Scan(&m.ID, &m.ConversationID, &userID, &role, &m.Content, &audioURL, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		m.Role = domain.Role(role)
		m.UserID = deref(userID)
		m.AudioURL = deref(audioURL)
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}
