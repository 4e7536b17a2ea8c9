package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/MappingProcimec/mapping-erp/internal/database"
	"github.com/MappingProcimec/mapping-erp/internal/model"
	"github.com/MappingProcimec/mapping-erp/internal/repository"
	"github.com/MappingProcimec/mapping-erp/internal/workflow"
)

const testJWTSecret = "unit-test-secret"

func newUserService(t *testing.T) (UserService, *gorm.DB) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "users_test.db") + "?_busy_timeout=10000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return NewUserService(repository.NewUserRepository(db), testJWTSecret, zap.NewNop()), db
}

func TestCreateUserAndLoginRoundTrip(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "maria",
		Email:    "maria@example.com",
		Password: "s3cret!",
		Role:     "requester",
	})
	require.NoError(t, err)
	assert.Equal(t, "maria", created.Username)
	assert.Equal(t, "requester", created.Role)

	token, err := svc.Login(ctx, LoginUserRequest{Email: "maria@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)

	parsed, err := jwt.Parse(token.Token, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, created.ID, claims["sub"])
	assert.Equal(t, "requester", claims["role"])
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "taken",
		Email:    "taken@example.com",
		Password: "s3cret!",
		Role:     "requester",
	})
	require.NoError(t, err)

	cases := []struct {
		name string
		req  CreateUserRequest
	}{
		{"unknown role", CreateUserRequest{Username: "u1", Email: "u1@example.com", Password: "s3cret!", Role: "supervisor"}},
		{"duplicate username", CreateUserRequest{Username: "taken", Email: "u2@example.com", Password: "s3cret!", Role: "requester"}},
		{"duplicate email", CreateUserRequest{Username: "u3", Email: "taken@example.com", Password: "s3cret!", Role: "requester"}},
		{"malformed area id", CreateUserRequest{Username: "u4", Email: "u4@example.com", Password: "s3cret!", Role: "requester", AreaID: "nope"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, createErr := svc.CreateUser(ctx, tc.req)
			require.Error(t, createErr)
			assert.ErrorIs(t, createErr, workflow.ErrValidation)
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "maria",
		Email:    "maria@example.com",
		Password: "s3cret!",
		Role:     "requester",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginUserRequest{Email: "nobody@example.com", Password: "s3cret!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginUserRequest{Email: "maria@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserByIDMissing(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.GetUserByID(context.Background(), uuid.MustParse("0b0e7bd1-93ae-4a65-8d2c-6f3d5f3f7a11"))
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc, db := newUserService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin@example.com", "bootstrap-pass"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin@example.com", "bootstrap-pass"))

	var count int64
	require.NoError(t, db.Model(&model.User{}).Where("role = ?", workflow.RoleAdmin).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	token, err := svc.Login(ctx, LoginUserRequest{Email: "admin@example.com", Password: "bootstrap-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
}

func TestListUsersPaginates(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	names := []string{"alpha", "bravo", "charlie"}
	for _, name := range names {
		_, err := svc.CreateUser(ctx, CreateUserRequest{
			Username: name,
			Email:    name + "@example.com",
			Password: "s3cret!",
			Role:     "requester",
		})
		require.NoError(t, err)
	}

	page, total, err := svc.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	rest, total, err := svc.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, rest, 1)
}
