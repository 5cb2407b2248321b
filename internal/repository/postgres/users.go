package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository"
)

// DB abstracts the pgx pool surface the repository needs, allowing pgxmock
// to stand in during tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	db      DB
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByEmail fetches a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}

	query, args, err := r.builder.
		Select("user_id", "user_name", "user_email", "user_number", "user_role", "created_at").
		From("users").
		Where(squirrel.Eq{"user_email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return r.scanUser(r.db.QueryRow(ctx, query, args...))
}

// GetByID fetches a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, errors.New("user id is required")
	}

	query, args, err := r.builder.
		Select("user_id", "user_name", "user_email", "user_number", "user_role", "created_at").
		From("users").
		Where(squirrel.Eq{"user_id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return r.scanUser(r.db.QueryRow(ctx, query, args...))
}

// ExistsByEmail reports whether an account already uses the email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, errors.New("email is required")
	}

	query, args, err := r.builder.
		Select("1").
		From("users").
		Where(squirrel.Eq{"user_email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query user existence: %w", err)
	}

	return true, nil
}

// Create inserts the user and its credential record in one transaction.
func (r *UserRepository) Create(ctx context.Context, user domain.User, auth domain.UserAuth) (*domain.User, error) {
	if user.Email == "" {
		return nil, errors.New("email is required")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	role := user.Role
	if role == "" {
		role = domain.UserRoleUser
	}

	userQuery, userArgs, err := r.builder.
		Insert("users").
		Columns("user_name", "user_email", "user_number", "user_role").
		Values(user.Name, strings.ToLower(strings.TrimSpace(user.Email)), user.Phone, role).
		Suffix("RETURNING user_id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert user: %w", err)
	}

	created := user
	created.Role = role
	if err := tx.QueryRow(ctx, userQuery, userArgs...).Scan(&created.ID, &created.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	var socialID any
	if auth.SocialID != "" {
		socialID = auth.SocialID
	}
	var passwordHash any
	if auth.PasswordHash != "" {
		passwordHash = auth.PasswordHash
	}

	authQuery, authArgs, err := r.builder.
		Insert("user_auth").
		Columns("user_id", "auth_type", "password_hash", "social_id", "is_verified").
		Values(created.ID, auth.AuthType, passwordHash, socialID, auth.Verified).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert auth: %w", err)
	}

	if _, err := tx.Exec(ctx, authQuery, authArgs...); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("insert user auth: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &created, nil
}

// GetAuthByType fetches one credential record for the user.
func (r *UserRepository) GetAuthByType(ctx context.Context, userID int64, authType domain.AuthType) (*domain.UserAuth, error) {
	if userID <= 0 {
		return nil, errors.New("user id is required")
	}

	query, args, err := r.builder.
		Select("auth_id", "user_id", "auth_type", "password_hash", "social_id", "is_verified", "last_used_at").
		From("user_auth").
		Where(squirrel.Eq{"user_id": userID, "auth_type": authType}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var (
		auth         domain.UserAuth
		passwordHash *string
		socialID     *string
		lastUsed     *time.Time
	)
	row := r.db.QueryRow(ctx, query, args...)
	if err := row.Scan(&auth.ID, &auth.UserID, &auth.AuthType, &passwordHash, &socialID, &auth.Verified, &lastUsed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("query user auth: %w", err)
	}

	if passwordHash != nil {
		auth.PasswordHash = *passwordHash
	}
	if socialID != nil {
		auth.SocialID = *socialID
	}
	auth.LastUsedAt = lastUsed

	return &auth, nil
}

// TouchAuthLastUsed stamps the credential's last successful use.
func (r *UserRepository) TouchAuthLastUsed(ctx context.Context, authID int64) error {
	if authID <= 0 {
		return errors.New("auth id is required")
	}

	query, args, err := r.builder.
		Update("user_auth").
		Set("last_used_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"auth_id": authID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update auth last used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user  domain.User
		phone *string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &phone, &user.Role, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if phone != nil {
		user.Phone = *phone
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ port.UserRepository = (*UserRepository)(nil)
