package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	return mock
}

func userColumns() []string {
	return []string{"user_id", "user_name", "user_email", "user_number", "user_role", "created_at"}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	phone := "010-1234-5678"

	rows := pgxmock.NewRows(userColumns()).
		AddRow(int64(42), "Test User", "user@example.com", &phone, domain.UserRoleUser, createdAt)

	mock.ExpectQuery(`SELECT .*FROM users`).WithArgs("user@example.com").WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "User@Example.com ")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if user.ID != 42 || user.Email != "user@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.Phone != phone {
		t.Fatalf("expected phone %s, got %s", phone, user.Phone)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmailMiss(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT .*FROM users`).
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns()))

	if _, err := repo.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT 1 FROM users`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("ExistsByEmail returned error: %v", err)
	}
	if !exists {
		t.Fatalf("expected email to exist")
	}

	mock.ExpectQuery(`SELECT 1 FROM users`).
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("ExistsByEmail returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected email to be free")
	}
}

func TestUserRepository_CreateLocalUser(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("New User", "new@example.com", "010-1234-5678", domain.UserRoleUser).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "created_at"}).AddRow(int64(101), createdAt))
	mock.ExpectExec(`INSERT INTO user_auth`).
		WithArgs(int64(101), domain.AuthTypeLocal, "hashed-password", nil, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	user, err := repo.Create(context.Background(),
		domain.User{Name: "New User", Email: "New@Example.com", Phone: "010-1234-5678", Role: domain.UserRoleUser},
		domain.UserAuth{AuthType: domain.AuthTypeLocal, PasswordHash: "hashed-password", Verified: true},
	)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if user.ID != 101 {
		t.Fatalf("expected assigned id 101, got %d", user.ID)
	}
	if !user.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected returned created_at")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("New User", "new@example.com", "", domain.UserRoleUser).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(),
		domain.User{Name: "New User", Email: "new@example.com", Role: domain.UserRoleUser},
		domain.UserAuth{AuthType: domain.AuthTypeLocal, PasswordHash: "hashed-password", Verified: true},
	)
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUserRepository_GetAuthByType(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	hash := "hashed-password"
	lastUsed := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"auth_id", "user_id", "auth_type", "password_hash", "social_id", "is_verified", "last_used_at"}).
		AddRow(int64(7), int64(42), domain.AuthTypeLocal, &hash, nil, true, &lastUsed)

	mock.ExpectQuery(`SELECT .*FROM user_auth`).
		WithArgs(domain.AuthTypeLocal, int64(42)).
		WillReturnRows(rows)

	auth, err := repo.GetAuthByType(context.Background(), 42, domain.AuthTypeLocal)
	if err != nil {
		t.Fatalf("GetAuthByType returned error: %v", err)
	}
	if auth.ID != 7 || auth.PasswordHash != hash {
		t.Fatalf("unexpected auth %+v", auth)
	}
	if auth.SocialID != "" {
		t.Fatalf("expected empty social id for local credential")
	}
	if auth.LastUsedAt == nil || !auth.LastUsedAt.Equal(lastUsed) {
		t.Fatalf("expected last used timestamp")
	}
}

func TestUserRepository_GetAuthByTypeMiss(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT .*FROM user_auth`).
		WithArgs(domain.AuthTypeLocal, int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"auth_id", "user_id", "auth_type", "password_hash", "social_id", "is_verified", "last_used_at"}))

	if _, err := repo.GetAuthByType(context.Background(), 42, domain.AuthTypeLocal); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_TouchAuthLastUsed(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE user_auth`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.TouchAuthLastUsed(context.Background(), 7); err != nil {
		t.Fatalf("TouchAuthLastUsed returned error: %v", err)
	}

	mock.ExpectExec(`UPDATE user_auth`).
		WithArgs(int64(8)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.TouchAuthLastUsed(context.Background(), 8); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown auth id, got %v", err)
	}
}
