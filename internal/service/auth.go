package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"PlayHorizon/internal/auth"
	"PlayHorizon/internal/model"
	"PlayHorizon/internal/repository"

	"github.com/sirupsen/logrus"
)

// SignupInput 注册请求
type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput 登录请求
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo 登录返回的用户信息
type UserInfo struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginResult 登录结果
type LoginResult struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// Profile /api/users/me
type Profile struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AuthService 注册、登录与角色查询
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *logrus.Logger
	now        func() time.Time
}

// NewAuthService 创建 AuthService
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, bcryptCost int, logger *logrus.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost, logger: logger, now: time.Now}
}

// Signup 注册并返回新用户 ID
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (uint64, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	switch {
	case username == "":
		return 0, invalid("Username is required")
	case email == "":
		return 0, invalid("Email is required")
	case !strings.Contains(email, "@"):
		return 0, invalid("Email is invalid")
	case in.Password == "":
		return 0, invalid("Password is required")
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("密码加密失败: %w", err)
	}
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return 0, err
	}
	s.logger.WithField("user_id", user.ID).Info("user registered")
	return user.ID, nil
}

// Login 校验凭据并签发 token；邮箱不存在与密码错误返回同一错误
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, invalid("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("update last_login failed")
	}
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("签发 token 失败: %w", err)
	}
	return &LoginResult{
		Token: token,
		User:  UserInfo{ID: user.ID, Username: user.Username, Email: user.Email},
	}, nil
}

// Me 当前用户资料
func (s *AuthService) Me(ctx context.Context, userID uint64) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// IsAdmin 按库中角色判断；用户不存在视为非管理员
func (s *AuthService) IsAdmin(ctx context.Context, userID uint64) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Role == model.RoleAdmin, nil
}

// ParseToken 校验 Bearer token
func (s *AuthService) ParseToken(token string) (*auth.Claims, error) {
	return s.tokens.Parse(token)
}
