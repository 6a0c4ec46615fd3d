package repositories

import (
	"context"
	"fmt"

	"mahberhub/internal/database"
	"mahberhub/internal/models"

	"go.uber.org/zap"
)

type messageRepository struct {
	*BaseRepository
}

// NewMessageRepository creates a message repository
func NewMessageRepository(db *database.Manager, logger *zap.Logger) MessageRepository {
	return &messageRepository{BaseRepository: NewBaseRepository(db, logger)}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query,
		message.SenderID, message.ReceiverID, message.Content,
	).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// Conversation returns one page of the history between two users,
// newest first so offset 0 is always the latest messages. The service
// layer reverses the page into chronological order.
func (r *messageRepository) Conversation(ctx context.Context, userID, peerID int64, opts ListOptions) ([]*models.Message, int64, error) {
	var total int64
	err := r.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)`,
		userID, peerID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count conversation: %w", err)
	}

	rows, err := r.QueryContext(ctx, `
		SELECT m.id, m.sender_id, m.receiver_id, m.content, m.is_read, m.read_at, m.created_at,
		       u.username, u.full_name, u.profile_image
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE (m.sender_id = $1 AND m.receiver_id = $2) OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at DESC
		LIMIT $3 OFFSET $4`,
		userID, peerID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("load conversation: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var m models.Message
		err := rows.Scan(
			&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.ReadAt, &m.CreatedAt,
			&m.SenderUsername, &m.SenderFullName, &m.SenderProfileImage,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	return messages, total, rows.Err()
}

// MarkConversationRead marks every unread message from senderID to
// receiverID as read.
func (r *messageRepository) MarkConversationRead(ctx context.Context, receiverID, senderID int64) error {
	_, err := r.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE, read_at = NOW()
		WHERE receiver_id = $1 AND sender_id = $2 AND NOT is_read`,
		receiverID, senderID,
	)
	if err != nil {
		return fmt.Errorf("mark conversation read: %w", err)
	}
	return nil
}

// ListConversations returns one entry per peer with the latest
// message and the viewer's unread count.
func (r *messageRepository) ListConversations(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	rows, err := r.QueryContext(ctx, `
		WITH latest AS (
			SELECT DISTINCT ON (peer_id)
				CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS peer_id,
				id, sender_id, receiver_id, content, is_read, read_at, created_at
			FROM messages
			WHERE sender_id = $1 OR receiver_id = $1
			ORDER BY peer_id, created_at DESC
		)
		SELECT l.id, l.sender_id, l.receiver_id, l.content, l.is_read, l.read_at, l.created_at,
		       u.id, u.username, u.full_name, u.role, u.profile_image,
		       COALESCE(unread.cnt, 0)
		FROM latest l
		JOIN users u ON u.id = l.peer_id
		LEFT JOIN (
			SELECT sender_id, COUNT(*) AS cnt FROM messages
			WHERE receiver_id = $1 AND NOT is_read
			GROUP BY sender_id
		) unread ON unread.sender_id = l.peer_id
		ORDER BY l.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		var m models.Message
		var peer models.UserSummary
		var unread int
		err := rows.Scan(
			&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.ReadAt, &m.CreatedAt,
			&peer.ID, &peer.Username, &peer.FullName, &peer.Role, &peer.ProfileImage,
			&unread,
		)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		conversations = append(conversations, &models.Conversation{
			User:        &peer,
			LastMessage: &m,
			UnreadCount: unread,
		})
	}
	return conversations, rows.Err()
}

func (r *messageRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND NOT is_read`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("unread message count: %w", err)
	}
	return count, nil
}
