package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"mahberhub/internal/database"
	"mahberhub/internal/models"

	"go.uber.org/zap"
)

type announcementRepository struct {
	*BaseRepository
}

// NewAnnouncementRepository creates an announcement repository
func NewAnnouncementRepository(db *database.Manager, logger *zap.Logger) AnnouncementRepository {
	return &announcementRepository{BaseRepository: NewBaseRepository(db, logger)}
}

const announcementColumns = `
	a.id, a.author_id, a.title, a.content, a.target_type, a.target_class_id,
	a.is_pinned, a.scheduled_at, a.created_at,
	u.full_name, u.role, sc.name`

const announcementFrom = `
	FROM announcements a
	JOIN users u ON u.id = a.author_id
	LEFT JOIN service_classes sc ON sc.id = a.target_class_id`

func scanAnnouncement(row interface{ Scan(...interface{}) error }) (*models.Announcement, error) {
	var a models.Announcement
	err := row.Scan(
		&a.ID, &a.AuthorID, &a.Title, &a.Content, &a.TargetType, &a.TargetClassID,
		&a.IsPinned, &a.ScheduledAt, &a.CreatedAt,
		&a.AuthorFullName, &a.AuthorRole, &a.TargetClassName,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	query := `
		INSERT INTO announcements (author_id, title, content, target_type, target_class_id, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query,
		announcement.AuthorID, announcement.Title, announcement.Content,
		announcement.TargetType, announcement.TargetClassID, announcement.ScheduledAt,
	).Scan(&announcement.ID, &announcement.CreatedAt)
	if err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

func (r *announcementRepository) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	query := `SELECT` + announcementColumns + announcementFrom + ` WHERE a.id = $1`
	return scanAnnouncement(r.QueryRowContext(ctx, query, id))
}

// ListVisible returns announcements the viewer may see: ALL targets,
// CLASS targets for their class, and LEADERS targets for leaders.
// Admin viewers see everything.
func (r *announcementRepository) ListVisible(ctx context.Context, feed FeedOptions, opts ListOptions) ([]*models.Announcement, int64, error) {
	where := "1=1"
	args := []interface{}{}
	idx := 1

	if !feed.All {
		if feed.IsLeader {
			where = fmt.Sprintf(
				`(a.target_type = 'ALL' OR a.target_type = 'LEADERS' OR (a.target_type = 'CLASS' AND a.target_class_id = $%d))`,
				idx)
		} else {
			where = fmt.Sprintf(
				`(a.target_type = 'ALL' OR (a.target_type = 'CLASS' AND a.target_class_id = $%d))`,
				idx)
		}
		args = append(args, feed.ClassID)
		idx++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM announcements a WHERE ` + where
	if err := r.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}

	query := fmt.Sprintf(`SELECT%s%s WHERE %s
		ORDER BY a.is_pinned DESC, a.created_at DESC
		LIMIT $%d OFFSET $%d`,
		announcementColumns, announcementFrom, where, idx, idx+1)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	var announcements []*models.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan announcement: %w", err)
		}
		announcements = append(announcements, a)
	}
	return announcements, total, rows.Err()
}

func (r *announcementRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *announcementRepository) SetPinned(ctx context.Context, id int64, pinned bool) error {
	result, err := r.ExecContext(ctx,
		`UPDATE announcements SET is_pinned = $2 WHERE id = $1`,
		id, pinned,
	)
	if err != nil {
		return fmt.Errorf("set pinned: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
