package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mahberhub/internal/database"
	"mahberhub/internal/models"

	"go.uber.org/zap"
)

type notificationRepository struct {
	*BaseRepository
}

// NewNotificationRepository creates a notification repository
func NewNotificationRepository(db *database.Manager, logger *zap.Logger) NotificationRepository {
	return &notificationRepository{BaseRepository: NewBaseRepository(db, logger)}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, actor_id, type, content, link_target)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query,
		notification.UserID, notification.ActorID, notification.Type,
		notification.Content, notification.LinkTarget,
	).Scan(&notification.ID, &notification.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// CreateBulk inserts fan-out records in one statement
func (r *notificationRepository) CreateBulk(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(notifications))
	args := make([]interface{}, 0, len(notifications)*5)
	for i, n := range notifications {
		base := i * 5
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5,
		))
		args = append(args, n.UserID, n.ActorID, n.Type, n.Content, n.LinkTarget)
	}

	query := `INSERT INTO notifications (user_id, actor_id, type, content, link_target) VALUES ` +
		strings.Join(placeholders, ", ")

	if _, err := r.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bulk create notifications: %w", err)
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID int64, opts ListOptions) ([]*models.Notification, int64, error) {
	var total int64
	err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	rows, err := r.QueryContext(ctx, `
		SELECT n.id, n.user_id, n.actor_id, n.type, n.content, n.link_target, n.is_read, n.created_at,
		       u.full_name, u.profile_image
		FROM notifications n
		JOIN users u ON u.id = n.actor_id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(
			&n.ID, &n.UserID, &n.ActorID, &n.Type, &n.Content, &n.LinkTarget, &n.IsRead, &n.CreatedAt,
			&n.ActorFullName, &n.ActorProfileImage,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, total, rows.Err()
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("unread notification count: %w", err)
	}
	return count, nil
}

// MarkRead only touches the caller's own notifications
func (r *notificationRepository) MarkRead(ctx context.Context, userID, notificationID int64) error {
	result, err := r.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
