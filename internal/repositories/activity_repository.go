package repositories

import (
	"context"
	"fmt"

	"mahberhub/internal/database"
	"mahberhub/internal/models"

	"go.uber.org/zap"
)

type activityRepository struct {
	*BaseRepository
}

// NewActivityRepository creates an audit log repository
func NewActivityRepository(db *database.Manager, logger *zap.Logger) ActivityRepository {
	return &activityRepository{BaseRepository: NewBaseRepository(db, logger)}
}

func (r *activityRepository) Log(ctx context.Context, entry *models.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (actor_id, action_type, target_user_id, description, ip_address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query,
		entry.ActorID, entry.ActionType, entry.TargetUserID, entry.Description, entry.IPAddress,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	return nil
}

func (r *activityRepository) List(ctx context.Context, opts ListOptions) ([]*models.ActivityLog, int64, error) {
	var total int64
	if err := r.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activity logs: %w", err)
	}

	rows, err := r.QueryContext(ctx, `
		SELECT al.id, al.actor_id, al.action_type, al.target_user_id, al.description,
		       al.ip_address, al.created_at,
		       actor.full_name, COALESCE(target.full_name, '')
		FROM activity_logs al
		JOIN users actor ON actor.id = al.actor_id
		LEFT JOIN users target ON target.id = al.target_user_id
		ORDER BY al.created_at DESC
		LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list activity logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.ActivityLog
	for rows.Next() {
		var l models.ActivityLog
		err := rows.Scan(
			&l.ID, &l.ActorID, &l.ActionType, &l.TargetUserID, &l.Description,
			&l.IPAddress, &l.CreatedAt,
			&l.ActorFullName, &l.TargetFullName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan activity log: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, total, rows.Err()
}

func (r *activityRepository) CreateWarning(ctx context.Context, warning *models.Warning) error {
	query := `
		INSERT INTO warnings (user_id, issued_by, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query,
		warning.UserID, warning.IssuedBy, warning.Reason,
	).Scan(&warning.ID, &warning.CreatedAt)
	if err != nil {
		return fmt.Errorf("create warning: %w", err)
	}
	return nil
}

func (r *activityRepository) ListWarnings(ctx context.Context, userID int64) ([]*models.Warning, error) {
	rows, err := r.QueryContext(ctx, `
		SELECT id, user_id, issued_by, reason, created_at
		FROM warnings
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list warnings: %w", err)
	}
	defer rows.Close()

	var warnings []*models.Warning
	for rows.Next() {
		var w models.Warning
		if err := rows.Scan(&w.ID, &w.UserID, &w.IssuedBy, &w.Reason, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		warnings = append(warnings, &w)
	}
	return warnings, rows.Err()
}
