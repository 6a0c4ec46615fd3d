package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mahberhub/internal/database"
	"mahberhub/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a user repository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository(db, logger)}
}

const userColumns = `
	u.id, u.username, u.email, u.full_name, u.password_hash,
	u.sex, u.department, u.academic_year, u.phone_number,
	u.bio, u.birth_date, u.birth_place, u.profile_image,
	u.role, u.status, u.service_class_id, u.class_leader_of,
	u.created_at, u.updated_at, sc.name`

const userFrom = `
	FROM users u
	JOIN service_classes sc ON sc.id = u.service_class_id`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.Sex, &u.Department, &u.AcademicYear, &u.PhoneNumber,
		&u.Bio, &u.BirthDate, &u.BirthPlace, &u.ProfileImage,
		&u.Role, &u.Status, &u.ServiceClassID, &u.ClassLeaderOf,
		&u.CreatedAt, &u.UpdatedAt, &u.ServiceClassName,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			username, email, full_name, password_hash, sex, department,
			academic_year, phone_number, bio, birth_date, birth_place,
			role, status, service_class_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FullName, user.PasswordHash,
		user.Sex, user.Department, user.AcademicYear, user.PhoneNumber,
		user.Bio, user.BirthDate, user.BirthPlace,
		user.Role, user.Status, user.ServiceClassID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT` + userColumns + userFrom + ` WHERE u.id = $1`
	return scanUser(r.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT` + userColumns + userFrom + ` WHERE LOWER(u.email) = LOWER($1)`
	return scanUser(r.QueryRowContext(ctx, query, email))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT` + userColumns + userFrom + ` WHERE LOWER(u.username) = LOWER($1)`
	return scanUser(r.QueryRowContext(ctx, query, username))
}

// GetByIdentifier resolves either a username or an email address
func (r *userRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if strings.Contains(identifier, "@") {
		return r.GetByEmail(ctx, identifier)
	}
	return r.GetByUsername(ctx, identifier)
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			full_name = $2, department = $3, academic_year = $4,
			phone_number = $5, bio = $6, birth_date = $7, birth_place = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(ctx, query,
		user.ID, user.FullName, user.Department, user.AcademicYear,
		user.PhoneNumber, user.Bio, user.BirthDate, user.BirthPlace,
	).Scan(&user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateProfileImage(ctx context.Context, userID int64, imageURL string) error {
	result, err := r.ExecContext(ctx,
		`UPDATE users SET profile_image = $2, updated_at = NOW() WHERE id = $1`,
		userID, imageURL,
	)
	if err != nil {
		return fmt.Errorf("update profile image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, opts ListOptions) ([]*models.User, int64, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filter.Status != "" {
		where = append(where, fmt.Sprintf("u.status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	if filter.ClassID > 0 {
		where = append(where, fmt.Sprintf("u.service_class_id = $%d", idx))
		args = append(args, filter.ClassID)
		idx++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(u.full_name ILIKE $%d OR u.username ILIKE $%d)", idx, idx))
		args = append(args, "%"+filter.Search+"%")
		idx++
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*)` + userFrom + ` WHERE ` + whereClause
	if err := r.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`SELECT%s%s WHERE %s ORDER BY u.created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, userFrom, whereClause, idx, idx+1)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// SearchActive matches active users by username or full name. When
// roles is non-empty the restriction is applied in the query, so the
// limit counts eligible users only.
func (r *userRepository) SearchActive(ctx context.Context, query string, roles []string, limit int) ([]*models.UserSummary, error) {
	q := `
		SELECT id, username, full_name, role, profile_image
		FROM users
		WHERE status = $1 AND (username ILIKE $2 OR full_name ILIKE $2)`
	args := []interface{}{models.StatusActive, "%" + query + "%"}
	if len(roles) > 0 {
		q += ` AND role = ANY($3)`
		args = append(args, pq.Array(roles))
	}
	q += fmt.Sprintf(` ORDER BY full_name LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	var results []*models.UserSummary
	for rows.Next() {
		var s models.UserSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.FullName, &s.Role, &s.ProfileImage); err != nil {
			return nil, fmt.Errorf("scan user summary: %w", err)
		}
		results = append(results, &s)
	}
	return results, rows.Err()
}

func (r *userRepository) TransitionStatus(ctx context.Context, userID int64, allowedFrom []string, to string) (*models.User, error) {
	return r.transition(ctx, userID, allowedFrom, to, 0)
}

func (r *userRepository) TransitionStatusAndClass(ctx context.Context, userID int64, allowedFrom []string, to string, newClassID int64) (*models.User, error) {
	return r.transition(ctx, userID, allowedFrom, to, newClassID)
}

// transition locks the user row, verifies the current status and
// applies the change in one transaction. newClassID of 0 leaves the
// class untouched.
func (r *userRepository) transition(ctx context.Context, userID int64, allowedFrom []string, to string, newClassID int64) (*models.User, error) {
	var updated *models.User
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM users WHERE id = $1 FOR UPDATE`, userID,
		).Scan(&current)
		if err != nil {
			return err
		}

		if len(allowedFrom) > 0 && !contains(allowedFrom, current) {
			return ErrInvalidTransition
		}

		if newClassID > 0 {
			_, err = tx.ExecContext(ctx,
				`UPDATE users SET status = $2, service_class_id = $3, updated_at = NOW() WHERE id = $1`,
				userID, to, newClassID,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1`,
				userID, to,
			)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	updated, err = r.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user after transition: %w", err)
	}
	return updated, nil
}

func (r *userRepository) PromoteLeader(ctx context.Context, userID, classID int64) (*models.User, error) {
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var currentLeader sql.NullInt64
		err := tx.QueryRowContext(ctx,
			`SELECT leader_id FROM service_classes WHERE id = $1 FOR UPDATE`, classID,
		).Scan(&currentLeader)
		if err != nil {
			return err
		}

		// A class has at most one leader. Demote the incumbent first.
		if currentLeader.Valid && currentLeader.Int64 != userID {
			_, err = tx.ExecContext(ctx, `
				UPDATE users SET role = $2, class_leader_of = NULL, updated_at = NOW()
				WHERE id = $1 AND role = $3`,
				currentLeader.Int64, models.RoleMember, models.RoleClassLeader,
			)
			if err != nil {
				return fmt.Errorf("demote current leader: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE users SET role = $2, class_leader_of = $3, updated_at = NOW()
			WHERE id = $1`,
			userID, models.RoleClassLeader, classID,
		)
		if err != nil {
			return fmt.Errorf("promote user: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return sql.ErrNoRows
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE service_classes SET leader_id = $2 WHERE id = $1`,
			classID, userID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, userID)
}

func (r *userRepository) DemoteLeader(ctx context.Context, userID int64) (*models.User, error) {
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE users SET role = $2, class_leader_of = NULL, updated_at = NOW()
			WHERE id = $1`,
			userID, models.RoleMember,
		)
		if err != nil {
			return fmt.Errorf("demote user: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return sql.ErrNoRows
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE service_classes SET leader_id = NULL WHERE leader_id = $1`,
			userID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, userID)
}

func (r *userRepository) UpdateRole(ctx context.Context, userID int64, role string) (*models.User, error) {
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE users SET role = $2, class_leader_of = NULL, updated_at = NOW()
			WHERE id = $1`,
			userID, role,
		)
		if err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return sql.ErrNoRows
		}

		// The user may have led a class under their old role.
		_, err = tx.ExecContext(ctx,
			`UPDATE service_classes SET leader_id = NULL WHERE leader_id = $1`,
			userID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, userID)
}

func (r *userRepository) ChangeClass(ctx context.Context, userID, classID int64) (*models.User, error) {
	result, err := r.ExecContext(ctx,
		`UPDATE users SET service_class_id = $2, updated_at = NOW() WHERE id = $1`,
		userID, classID,
	)
	if err != nil {
		return nil, fmt.Errorf("change class: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, sql.ErrNoRows
	}
	return r.GetByID(ctx, userID)
}

func (r *userRepository) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{
		ByStatus:       make(map[string]int64),
		ByClass:        make(map[string]int64),
		BySex:          make(map[string]int64),
		ByAcademicYear: make(map[string]int64),
	}

	if err := r.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	if err := r.countGroup(ctx, `SELECT status, COUNT(*) FROM users GROUP BY status`, stats.ByStatus); err != nil {
		return nil, err
	}
	if err := r.countGroup(ctx, `
		SELECT sc.name, COUNT(*) FROM users u
		JOIN service_classes sc ON sc.id = u.service_class_id
		GROUP BY sc.name`, stats.ByClass); err != nil {
		return nil, err
	}
	if err := r.countGroup(ctx, `SELECT sex, COUNT(*) FROM users GROUP BY sex`, stats.BySex); err != nil {
		return nil, err
	}
	if err := r.countGroup(ctx, `SELECT academic_year, COUNT(*) FROM users GROUP BY academic_year`, stats.ByAcademicYear); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *userRepository) countGroup(ctx context.Context, query string, dest map[string]int64) error {
	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("group count: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan group count: %w", err)
		}
		dest[key] = count
	}
	return rows.Err()
}

func (r *userRepository) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	return r.ids(ctx, `SELECT id FROM users WHERE status = $1`, models.StatusActive)
}

func (r *userRepository) ActiveUserIDsByClass(ctx context.Context, classID int64) ([]int64, error) {
	return r.ids(ctx,
		`SELECT id FROM users WHERE status = $1 AND service_class_id = $2`,
		models.StatusActive, classID,
	)
}

func (r *userRepository) LeaderUserIDs(ctx context.Context) ([]int64, error) {
	return r.ids(ctx,
		`SELECT id FROM users WHERE status = $1 AND role = ANY($2)`,
		models.StatusActive, pq.Array([]string{models.RoleClassLeader, models.RoleSuperAdmin}),
	)
}

func (r *userRepository) ids(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
