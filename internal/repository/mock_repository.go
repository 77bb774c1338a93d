package repository

import (
	"context"
	"time"

	"electrical-qa-go/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository using testify/mock.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(userID uint) (*model.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindWithPagination(offset, limit int) ([]model.User, int64, error) {
	args := m.Called(offset, limit)
	users, _ := args.Get(0).([]model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockQuestionRepository is a mock implementation of QuestionRepository.
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *model.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}

func (m *MockQuestionRepository) List(ctx context.Context, filter model.QuestionFilter, offset, limit int) ([]model.Question, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	questions, _ := args.Get(0).([]model.Question)
	return questions, args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) Recent(ctx context.Context, n int) ([]model.Question, error) {
	args := m.Called(ctx, n)
	questions, _ := args.Get(0).([]model.Question)
	return questions, args.Error(1)
}

func (m *MockQuestionRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAnswerRepository is a mock implementation of AnswerRepository.
type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) Create(ctx context.Context, answer *model.Answer) error {
	args := m.Called(ctx, answer)
	return args.Error(0)
}

func (m *MockAnswerRepository) ListByQuestion(ctx context.Context, questionID uint) ([]model.Answer, error) {
	args := m.Called(ctx, questionID)
	answers, _ := args.Get(0).([]model.Answer)
	return answers, args.Error(1)
}

func (m *MockAnswerRepository) List(ctx context.Context, filter model.AnswerFilter, offset, limit int) ([]model.Answer, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	answers, _ := args.Get(0).([]model.Answer)
	return answers, args.Get(1).(int64), args.Error(2)
}

func (m *MockAnswerRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenRepository is a mock implementation of TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	args := m.Called(ctx, token, ttl)
	return args.Error(0)
}

func (m *MockTokenRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}
