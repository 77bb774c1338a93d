package service

import (
	"errors"

	"electrical-qa-go/internal/model"
)

// 业务层错误，handler 根据这些错误映射 HTTP 状态码。
var (
	ErrUsernameTaken       = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPasswordMismatch    = errors.New("the two password fields didn't match")
	ErrWeakPassword        = errors.New("password is too weak")
	ErrTokenRevoked        = errors.New("token has been revoked")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRole         = errors.New("invalid role")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrEmptyQuestion       = errors.New("question text is required")
	ErrInvalidCategory     = model.ErrInvalidCategory
	ErrSearchUnavailable   = errors.New("search is not enabled")
	ErrArchiveUnavailable  = errors.New("transcript archive is not enabled")
	ErrTranscriptNotFound  = errors.New("transcript not found")
)
