package repositories

import (
	"context"
	"fmt"

	"mahberhub/internal/database"
	"mahberhub/internal/models"

	"go.uber.org/zap"
)

type classRepository struct {
	*BaseRepository
}

// NewClassRepository creates a service class repository
func NewClassRepository(db *database.Manager, logger *zap.Logger) ClassRepository {
	return &classRepository{BaseRepository: NewBaseRepository(db, logger)}
}

func (r *classRepository) List(ctx context.Context) ([]*models.ServiceClass, error) {
	rows, err := r.QueryContext(ctx, `
		SELECT sc.id, sc.name, sc.description, sc.leader_id, sc.is_active, sc.created_at,
		       COUNT(u.id) AS member_count
		FROM service_classes sc
		LEFT JOIN users u ON u.service_class_id = sc.id AND u.status = $1
		WHERE sc.is_active
		GROUP BY sc.id
		ORDER BY sc.id`,
		models.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list service classes: %w", err)
	}
	defer rows.Close()

	var classes []*models.ServiceClass
	for rows.Next() {
		var c models.ServiceClass
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.LeaderID, &c.IsActive, &c.CreatedAt, &c.MemberCount); err != nil {
			return nil, fmt.Errorf("scan service class: %w", err)
		}
		classes = append(classes, &c)
	}
	return classes, rows.Err()
}

func (r *classRepository) GetByID(ctx context.Context, id int64) (*models.ServiceClass, error) {
	var c models.ServiceClass
	err := r.QueryRowContext(ctx, `
		SELECT id, name, description, leader_id, is_active, created_at
		FROM service_classes WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.LeaderID, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *classRepository) GetByName(ctx context.Context, name string) (*models.ServiceClass, error) {
	var c models.ServiceClass
	err := r.QueryRowContext(ctx, `
		SELECT id, name, description, leader_id, is_active, created_at
		FROM service_classes WHERE name = $1`, name,
	).Scan(&c.ID, &c.Name, &c.Description, &c.LeaderID, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *classRepository) ListMembers(ctx context.Context, classID int64, opts ListOptions) ([]*models.User, int64, error) {
	var total int64
	err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE service_class_id = $1 AND status = $2`,
		classID, models.StatusActive,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count class members: %w", err)
	}

	query := `SELECT` + userColumns + userFrom + `
		WHERE u.service_class_id = $1 AND u.status = $2
		ORDER BY u.full_name
		LIMIT $3 OFFSET $4`

	rows, err := r.QueryContext(ctx, query, classID, models.StatusActive, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list class members: %w", err)
	}
	defer rows.Close()

	var members []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan class member: %w", err)
		}
		members = append(members, u)
	}
	return members, total, rows.Err()
}
