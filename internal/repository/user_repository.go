package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone, role, created_at, updated_at`

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Debug().Str("email", user.Email).Msg("email already registered")
			return ErrDuplicate
		}
		r.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("user_id", id.String()).Msg("user not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query user by email")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return user, nil
}

// List retrieves a page of users.
func (r *userRepository) List(ctx context.Context, filter model.UserFilter) ([]model.User, int, error) {
	var (
		conds []string
		args  []any
	)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)", n, n, n))
	}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count users")
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query users")
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan user row")
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating user rows")
		return nil, 0, fmt.Errorf("error iterating users: %w", err)
	}

	return users, total, nil
}
