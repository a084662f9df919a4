package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tokora/internal/models/db_models"
	"tokora/internal/models/request_models"
	"tokora/internal/models/response_models"
	"tokora/internal/repositories"
	"tokora/pkg/utils"
)

type AccountServiceInterface interface {
	Register(ctx context.Context, req request_models.RegisterRequest) (*response_models.AccountResponse, error)
	Login(ctx context.Context, req request_models.LoginRequest) (*response_models.LoginResponse, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*response_models.AccountResponse, error)
}

type AccountService struct {
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewAccountService(userRepo repositories.UserRepositoryInterface, logger *zap.Logger) AccountServiceInterface {
	return &AccountService{userRepo: userRepo, logger: logger}
}

func (s *AccountService) Register(ctx context.Context, req request_models.RegisterRequest) (*response_models.AccountResponse, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if existing != nil {
		return nil, utils.ErrEmailTaken
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &db_models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("create user failed", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	return toAccountResponse(user), nil
}

func (s *AccountService) Login(ctx context.Context, req request_models.LoginRequest) (*response_models.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if user == nil {
		return nil, utils.ErrInvalidCredentials
	}
	if err := utils.ComparePasswords(user.PasswordHash, req.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	token, err := utils.CreateToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &response_models.LoginResponse{
		Token:   token,
		Account: *toAccountResponse(user),
	}, nil
}

func (s *AccountService) GetProfile(ctx context.Context, userID uuid.UUID) (*response_models.AccountResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if user == nil {
		return nil, utils.ErrAccountNotFound
	}
	return toAccountResponse(user), nil
}

func toAccountResponse(user *db_models.User) *response_models.AccountResponse {
	return &response_models.AccountResponse{
		ID:           user.ID.String(),
		Name:         user.Name,
		Email:        user.Email,
		TokenBalance: user.TokenBalance,
	}
}
