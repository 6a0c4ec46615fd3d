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

type postRepository struct {
	*BaseRepository
}

// NewPostRepository creates a post repository
func NewPostRepository(db *database.Manager, logger *zap.Logger) PostRepository {
	return &postRepository{BaseRepository: NewBaseRepository(db, logger)}
}

const postColumns = `
	p.id, p.author_id, p.title, p.content, p.image_url,
	p.target_type, p.service_class_id, p.is_pinned,
	p.created_at, p.updated_at,
	u.username, u.full_name, u.profile_image,
	COALESCE(likes.cnt, 0), COALESCE(dislikes.cnt, 0), COALESCE(cm.cnt, 0)`

const postFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN (
		SELECT post_id, COUNT(*) AS cnt FROM post_reactions
		WHERE reaction_type = 'LIKE' GROUP BY post_id
	) likes ON likes.post_id = p.id
	LEFT JOIN (
		SELECT post_id, COUNT(*) AS cnt FROM post_reactions
		WHERE reaction_type = 'DISLIKE' GROUP BY post_id
	) dislikes ON dislikes.post_id = p.id
	LEFT JOIN (
		SELECT post_id, COUNT(*) AS cnt FROM comments GROUP BY post_id
	) cm ON cm.post_id = p.id`

func scanPost(row interface{ Scan(...interface{}) error }) (*models.Post, error) {
	var p models.Post
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.ImageURL,
		&p.TargetType, &p.ServiceClassID, &p.IsPinned,
		&p.CreatedAt, &p.UpdatedAt,
		&p.AuthorUsername, &p.AuthorFullName, &p.AuthorProfileImage,
		&p.Likes, &p.Dislikes, &p.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (author_id, title, content, image_url, target_type, service_class_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		post.AuthorID, post.Title, post.Content, post.ImageURL,
		post.TargetType, post.ServiceClassID,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT` + postColumns + postFrom + ` WHERE p.id = $1`
	return scanPost(r.QueryRowContext(ctx, query, id))
}

// ListFeed returns pinned posts first, then newest. Non-admin viewers
// see global posts plus their own class's posts.
func (r *postRepository) ListFeed(ctx context.Context, feed FeedOptions, opts ListOptions) ([]*models.Post, int64, error) {
	where := "1=1"
	args := []interface{}{}
	idx := 1

	if !feed.All {
		where = fmt.Sprintf("(p.target_type = 'GLOBAL' OR p.service_class_id = $%d)", idx)
		args = append(args, feed.ClassID)
		idx++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM posts p WHERE ` + where
	if err := r.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := fmt.Sprintf(`SELECT%s%s WHERE %s
		ORDER BY p.is_pinned DESC, p.created_at DESC
		LIMIT $%d OFFSET $%d`,
		postColumns, postFrom, where, idx, idx+1)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postRepository) SetPinned(ctx context.Context, id int64, pinned bool) error {
	result, err := r.ExecContext(ctx,
		`UPDATE posts SET is_pinned = $2, updated_at = NOW() WHERE id = $1`,
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

// UpsertReaction inserts the reaction or overwrites the type for
// the (post, user) pair.
func (r *postRepository) UpsertReaction(ctx context.Context, reaction *models.PostReaction) error {
	query := `
		INSERT INTO post_reactions (post_id, user_id, reaction_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, user_id)
		DO UPDATE SET reaction_type = EXCLUDED.reaction_type, updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		reaction.PostID, reaction.UserID, reaction.ReactionType,
	).Scan(&reaction.ID, &reaction.CreatedAt, &reaction.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "foreign key") {
			return sql.ErrNoRows
		}
		return fmt.Errorf("upsert reaction: %w", err)
	}
	return nil
}

func (r *postRepository) DeleteReaction(ctx context.Context, postID, userID int64) error {
	result, err := r.ExecContext(ctx,
		`DELETE FROM post_reactions WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete reaction: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postRepository) ReactionCounts(ctx context.Context, postID int64) (*models.ReactionCounts, error) {
	var counts models.ReactionCounts
	err := r.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE reaction_type = 'LIKE'),
			COUNT(*) FILTER (WHERE reaction_type = 'DISLIKE')
		FROM post_reactions WHERE post_id = $1`, postID,
	).Scan(&counts.Likes, &counts.Dislikes)
	if err != nil {
		return nil, fmt.Errorf("reaction counts: %w", err)
	}
	return &counts, nil
}

func (r *postRepository) UserReaction(ctx context.Context, postID, userID int64) (*models.PostReaction, error) {
	var reaction models.PostReaction
	err := r.QueryRowContext(ctx, `
		SELECT id, post_id, user_id, reaction_type, created_at, updated_at
		FROM post_reactions WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	).Scan(
		&reaction.ID, &reaction.PostID, &reaction.UserID,
		&reaction.ReactionType, &reaction.CreatedAt, &reaction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}
