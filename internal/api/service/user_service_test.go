package service

import (
	"context"
	"errors"
	"testing"

	"ctchen222/portfolio-tracker/internal/api/models"
	"ctchen222/portfolio-tracker/internal/api/repository"
	"ctchen222/portfolio-tracker/internal/api/repository/mocks"
	"ctchen222/portfolio-tracker/internal/apperr"
	"ctchen222/portfolio-tracker/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("service-test-secret-0123")

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestUserServiceRegister(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	svc := NewUserService(repo, auth.NewTokenService(testSecret))

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().
			CreateUser(gomock.Any(), &models.User{Username: "alice", Email: "alice@example.com"}, "pw12").
			Return(int64(3), nil)

		id, err := svc.Register(context.Background(), &models.RegisterRequest{
			Username: " alice ", Email: "alice@example.com", Password: "pw12",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)
	})

	t.Run("blank username after trimming", func(t *testing.T) {
		_, err := svc.Register(context.Background(), &models.RegisterRequest{
			Username: "   ", Email: "blank@example.com", Password: "pw12",
		})
		assert.ErrorIs(t, err, ErrInvalidUsername)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("conflict is passed through", func(t *testing.T) {
		repo.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), repository.ErrUserExists)

		_, err := svc.Register(context.Background(), &models.RegisterRequest{
			Username: "alice", Email: "alice@example.com", Password: "pw12",
		})
		assert.ErrorIs(t, err, repository.ErrUserExists)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestUserServiceLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	tokens := auth.NewTokenService(testSecret)
	svc := NewUserService(repo, tokens)

	alice := &models.User{ID: 9, Username: "alice", Email: "alice@example.com", PasswordHash: hashed(t, "wonderland")}

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().GetUserByEmail(gomock.Any(), "alice@example.com").Return(alice, nil)

		resp, err := svc.Login(context.Background(), &models.LoginRequest{Email: "alice@example.com", Password: "wonderland"})
		require.NoError(t, err)
		assert.Equal(t, models.UserInfo{ID: 9, Username: "alice", Email: "alice@example.com"}, resp.User)

		userID, err := tokens.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(9), userID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo.EXPECT().GetUserByEmail(gomock.Any(), "alice@example.com").Return(alice, nil)

		_, err := svc.Login(context.Background(), &models.LoginRequest{Email: "alice@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidPassword)
		assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		repo.EXPECT().GetUserByEmail(gomock.Any(), "bob@example.com").Return(nil, nil)

		_, err := svc.Login(context.Background(), &models.LoginRequest{Email: "bob@example.com", Password: "x"})
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("storage failure", func(t *testing.T) {
		storageErr := apperr.Storage("failed to get user", errors.New("disk I/O error"))
		repo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(nil, storageErr)

		_, err := svc.Login(context.Background(), &models.LoginRequest{Email: "alice@example.com", Password: "x"})
		assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
	})
}

func TestVerifyPassword(t *testing.T) {
	user := &models.User{PasswordHash: hashed(t, "secret")}

	assert.True(t, VerifyPassword(user, "secret"))
	assert.False(t, VerifyPassword(user, "Secret"))
	assert.False(t, VerifyPassword(&models.User{}, ""))
	assert.False(t, VerifyPassword(nil, "secret"))
}
