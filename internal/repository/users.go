package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/leads-scraper/internal/entity"
)

// ErrUserNotFound is returned when no user matches the lookup criteria.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailDuplicate = errors.New("email already exists")
	// ErrCreditsExhausted means the balance is lower than the requested debit.
	ErrCreditsExhausted = errors.New("not enough credits")
)

// UserUpdate lists the mutable user attributes; nil fields are left untouched.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	Name         *string
	Company      *string
	Role         *string
	Plan         *string
	Credits      *int
}

// UsersRepository declares persistence operations for users.
type UsersRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Create(ctx context.Context, user entity.User) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, id uuid.UUID, update UserUpdate) (*entity.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DebitCredits(ctx context.Context, id uuid.UUID, amount int) (int, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

// PGXUsersRepository implements UsersRepository with pgx.
type PGXUsersRepository struct {
	pool pgxPool
}

// NewPGXUsersRepository instantiates a users repository.
func NewPGXUsersRepository(pool *pgxpool.Pool) *PGXUsersRepository {
	return &PGXUsersRepository{pool: pool}
}

const userColumns = `id, email, password_hash, name, company, plan, credits, role, last_login, created_at, updated_at`

func scanUser(row scanner) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Company,
		&user.Plan,
		&user.Credits,
		&user.Role,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail fetches a user by email if present.
func (r *PGXUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by identifier.
func (r *PGXUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

// Create inserts a new user row.
func (r *PGXUsersRepository) Create(ctx context.Context, in entity.User) (*entity.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
        INSERT INTO users (email, password_hash, name, company, plan, credits, role)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+userColumns,
		in.Email, in.PasswordHash, in.Name, in.Company, in.Plan, in.Credits, in.Role))
	if err != nil {
		if pgErr, ok := isUniqueViolation(err, "users_email_key"); ok {
			return nil, fmt.Errorf("%w: %v", ErrEmailDuplicate, pgErr)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// List returns all users ordered by creation date (desc).
func (r *PGXUsersRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Update patches user attributes.
func (r *PGXUsersRepository) Update(ctx context.Context, id uuid.UUID, update UserUpdate) (*entity.User, error) {
	setClauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}
	if update.Email != nil {
		set("email", *update.Email)
	}
	if update.PasswordHash != nil {
		set("password_hash", *update.PasswordHash)
	}
	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.Company != nil {
		set("company", *update.Company)
	}
	if update.Role != nil {
		set("role", *update.Role)
	}
	if update.Plan != nil {
		set("plan", *update.Plan)
	}
	if update.Credits != nil {
		set("credits", *update.Credits)
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`, strings.Join(setClauses, ", "), idx, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if pgErr, ok := isUniqueViolation(err, "users_email_key"); ok {
			return nil, fmt.Errorf("%w: %v", ErrEmailDuplicate, pgErr)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete removes a user by id.
func (r *PGXUsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DebitCredits atomically subtracts amount from the balance and returns what is left.
// The balance never goes below zero: a short balance yields ErrCreditsExhausted.
func (r *PGXUsersRepository) DebitCredits(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	var remaining int
	err := r.pool.QueryRow(ctx, `
        UPDATE users SET credits = credits - $1, updated_at = NOW()
        WHERE id = $2 AND credits >= $1
        RETURNING credits
    `, amount, id).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("debit credits: %w", err)
	}

	var available int
	if err := r.pool.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1`, id).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("read credits: %w", err)
	}
	return available, ErrCreditsExhausted
}

// TouchLastLogin stamps the current time as the user's last login.
func (r *PGXUsersRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
