package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"mahberhub/internal/database"
	"mahberhub/internal/models"

	"go.uber.org/zap"
)

type commentRepository struct {
	*BaseRepository
}

// NewCommentRepository creates a comment repository
func NewCommentRepository(db *database.Manager, logger *zap.Logger) CommentRepository {
	return &commentRepository{BaseRepository: NewBaseRepository(db, logger)}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (post_id, user_id, content, parent_comment_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query,
		comment.PostID, comment.UserID, comment.Content, comment.ParentCommentID,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var c models.Comment
	err := r.QueryRowContext(ctx, `
		SELECT c.id, c.post_id, c.user_id, c.content, c.parent_comment_id, c.created_at,
		       u.username, u.full_name, u.profile_image
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1`, id,
	).Scan(
		&c.ID, &c.PostID, &c.UserID, &c.Content, &c.ParentCommentID, &c.CreatedAt,
		&c.Username, &c.FullName, &c.ProfileImage,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByPost returns all comments for a post in creation order.
// Reply threading is assembled by the service layer.
func (r *commentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	rows, err := r.QueryContext(ctx, `
		SELECT c.id, c.post_id, c.user_id, c.content, c.parent_comment_id, c.created_at,
		       u.username, u.full_name, u.profile_image
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC`, postID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var c models.Comment
		err := rows.Scan(
			&c.ID, &c.PostID, &c.UserID, &c.Content, &c.ParentCommentID, &c.CreatedAt,
			&c.Username, &c.FullName, &c.ProfileImage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
