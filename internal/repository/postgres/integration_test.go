//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vterekhov/authgate/internal/model"
	repo "github.com/vterekhov/authgate/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "authgate_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/authgate_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newUser(email string) model.User {
	now := time.Now()
	return model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		DisplayName:  "Ann",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	u := newUser("user@example.com")

	saved, err := ur.Create(ctx, u)
	require.NoError(t, err)
	require.Equal(t, u.ID, saved.ID)

	byEmail, err := ur.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
	require.Equal(t, u.DisplayName, byEmail.DisplayName)

	byID, err := ur.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)

	_, err = ur.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = ur.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)

	first := newUser("dup@example.com")
	_, err = ur.Create(ctx, first)
	require.NoError(t, err)

	second := newUser("dup@example.com")
	_, err = ur.Create(ctx, second)
	require.ErrorIs(t, err, model.ErrAlreadyExists)
}

func TestRefreshTokenRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	rr := repo.NewRefreshTokenRepository(conn)

	owner, err := ur.Create(ctx, newUser("tokens@example.com"))
	require.NoError(t, err)

	raw := "opaque-refresh-token"
	expiresAt := time.Now().Add(time.Hour)

	require.NoError(t, rr.Save(ctx, raw, owner.ID, expiresAt))

	found, err := rr.Find(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, owner.ID, found.UserID)
	require.Equal(t, model.HashToken(raw), found.TokenHash)
	require.True(t, found.Live(time.Now()))

	// Only the hash is stored; looking up a different raw token misses.
	_, err = rr.Find(ctx, "some-other-token")
	require.ErrorIs(t, err, model.ErrNotFound)

	deleted, err := rr.DeleteIfPresent(ctx, raw)
	require.NoError(t, err)
	require.True(t, deleted)

	// Second delete of the same token observes the row already gone.
	deleted, err = rr.DeleteIfPresent(ctx, raw)
	require.NoError(t, err)
	require.False(t, deleted)

	_, err = rr.Find(ctx, raw)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestRefreshTokenRepository_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	rr := repo.NewRefreshTokenRepository(conn)

	require.NoError(t, rr.Delete(ctx, "never-issued"))
	require.NoError(t, rr.Delete(ctx, "never-issued"))
}

func TestRefreshTokenRepository_CascadeOnUserDelete(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	rr := repo.NewRefreshTokenRepository(conn)

	owner, err := ur.Create(ctx, newUser("cascade@example.com"))
	require.NoError(t, err)

	raw := "cascade-refresh-token"
	require.NoError(t, rr.Save(ctx, raw, owner.ID, time.Now().Add(time.Hour)))

	_, err = conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, owner.ID)
	require.NoError(t, err)

	_, err = rr.Find(ctx, raw)
	require.ErrorIs(t, err, model.ErrNotFound)
}
