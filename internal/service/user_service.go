// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"electrical-qa-go/internal/config"
	"electrical-qa-go/internal/model"
	"electrical-qa-go/internal/repository"
	"electrical-qa-go/pkg/hash"
	"electrical-qa-go/pkg/log"
	"electrical-qa-go/pkg/token"

	"gorm.io/gorm"
)

const minPasswordLength = 8

// RegisterInput 是注册表单的字段。
type RegisterInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
}

// UserService 接口定义了所有与用户相关的业务操作。
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (user *model.User, accessToken, refreshToken string, err error)
	Login(username, password string) (accessToken, refreshToken string, err error)
	GetProfile(username string) (*model.User, error)
	Logout(ctx context.Context, accessTokenString, refreshTokenString string) error
	RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken, newRefreshToken string, err error)
	IsTokenRevoked(ctx context.Context, tokenString string) (bool, error)
	EnsureAdmin(cfg config.AdminConfig) error
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	jwtManager *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
	}
}

// Register 处理用户注册的业务逻辑，注册成功后直接签发 token。
func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, string, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	// 1. 校验两次密码与强度
	if in.Password != in.PasswordConfirm {
		return nil, "", "", ErrPasswordMismatch
	}
	if err := validatePassword(in.Username, in.Password); err != nil {
		return nil, "", "", err
	}

	// 2. 检查用户名是否已存在
	_, err := s.userRepo.FindByUsername(in.Username)
	if err == nil {
		return nil, "", "", ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}

	// 3. 对密码进行哈希处理
	hashedPassword, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, "", "", err
	}

	newUser := &model.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  hashedPassword,
		Role:      model.RoleUser,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		// 并发注册同名用户时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", "", ErrUsernameTaken
		}
		log.Errorf("[UserService] 创建用户失败, username: %s, error: %v", in.Username, err)
		return nil, "", "", err
	}

	// 4. 注册即登录
	accessToken, refreshToken, err := s.issueTokens(newUser)
	if err != nil {
		return nil, "", "", err
	}
	return newUser, accessToken, refreshToken, nil
}

// Login 处理用户登录的业务逻辑。
func (s *userService) Login(username, password string) (accessToken, refreshToken string, err error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}

	if !hash.CheckPasswordHash(password, user.Password) {
		return "", "", ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// GetProfile 根据用户名获取用户详细信息。
func (s *userService) GetProfile(username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Logout 处理用户登出逻辑，将 token 加入黑名单直到其自然过期。
// refreshTokenString 可为空；非空时必须是同一用户的 refresh token，并与 access token 一起吊销。
func (s *userService) Logout(ctx context.Context, accessTokenString, refreshTokenString string) error {
	claims, err := s.jwtManager.VerifyToken(accessTokenString)
	if err != nil {
		return err
	}

	if refreshTokenString != "" {
		refreshClaims, err := s.jwtManager.VerifyTokenOfType(refreshTokenString, token.TypeRefresh)
		if err != nil || refreshClaims.UserID != claims.UserID {
			return ErrInvalidRefreshToken
		}
		if err := s.tokenRepo.Revoke(ctx, refreshTokenString, time.Until(refreshClaims.ExpiresAt.Time)); err != nil {
			return err
		}
	}
	return s.tokenRepo.Revoke(ctx, accessTokenString, time.Until(claims.ExpiresAt.Time))
}

// RefreshToken 验证 refresh token 并签发新的 access token 和 refresh token。
// 旧的 refresh token 会被吊销，不能重复使用。
func (s *userService) RefreshToken(ctx context.Context, refreshTokenString string) (string, string, error) {
	claims, err := s.jwtManager.VerifyTokenOfType(refreshTokenString, token.TypeRefresh)
	if err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", err)
	}

	revoked, err := s.tokenRepo.IsRevoked(ctx, refreshTokenString)
	if err != nil {
		return "", "", err
	}
	if revoked {
		return "", "", ErrTokenRevoked
	}

	user, err := s.GetProfile(claims.Username)
	if err != nil {
		return "", "", err
	}

	newAccessToken, newRefreshToken, err := s.issueTokens(user)
	if err != nil {
		return "", "", err
	}
	if err := s.tokenRepo.Revoke(ctx, refreshTokenString, time.Until(claims.ExpiresAt.Time)); err != nil {
		log.Warnf("[UserService] 吊销旧 refresh token 失败: %v", err)
	}
	return newAccessToken, newRefreshToken, nil
}

// IsTokenRevoked 检查 token 是否已登出。
func (s *userService) IsTokenRevoked(ctx context.Context, tokenString string) (bool, error) {
	return s.tokenRepo.IsRevoked(ctx, tokenString)
}

// EnsureAdmin 在启动时创建配置中的管理员账号；账号已存在时只保证其角色为 ADMIN。
func (s *userService) EnsureAdmin(cfg config.AdminConfig) error {
	if cfg.Username == "" || cfg.Password == "" {
		log.Info("[UserService] 未配置管理员账号，跳过初始化")
		return nil
	}

	user, err := s.userRepo.FindByUsername(cfg.Username)
	if err == nil {
		if user.IsAdmin() {
			return nil
		}
		user.Role = model.RoleAdmin
		log.Infof("[UserService] 提升用户 '%s' 为管理员", cfg.Username)
		return s.userRepo.Update(user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := hash.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	admin := &model.User{
		Username: cfg.Username,
		Email:    cfg.Email,
		Password: hashedPassword,
		Role:     model.RoleAdmin,
	}
	if err := s.userRepo.Create(admin); err != nil {
		return fmt.Errorf("创建管理员账号失败: %w", err)
	}
	log.Infof("[UserService] 管理员账号 '%s' 创建成功", cfg.Username)
	return nil
}

func (s *userService) issueTokens(user *model.User) (string, string, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// validatePassword 检查密码长度、是否全为数字以及是否与用户名相同。
func validatePassword(username, password string) error {
	if len([]rune(password)) < minPasswordLength {
		return fmt.Errorf("%w: must contain at least %d characters", ErrWeakPassword, minPasswordLength)
	}
	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return fmt.Errorf("%w: cannot be entirely numeric", ErrWeakPassword)
	}
	if strings.EqualFold(password, username) {
		return fmt.Errorf("%w: too similar to the username", ErrWeakPassword)
	}
	return nil
}
