package service

import (
	"context"
	"time"

	"electrical-qa-go/internal/config"
	"electrical-qa-go/internal/model"
	"electrical-qa-go/pkg/tasks"

	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock implementation of UserService using testify/mock.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, in RegisterInput) (*model.User, string, string, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(0).(*model.User)
	return user, args.String(1), args.String(2), args.Error(3)
}

func (m *MockUserService) Login(username, password string) (string, string, error) {
	args := m.Called(username, password)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockUserService) GetProfile(username string) (*model.User, error) {
	args := m.Called(username)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserService) Logout(ctx context.Context, accessTokenString, refreshTokenString string) error {
	args := m.Called(ctx, accessTokenString, refreshTokenString)
	return args.Error(0)
}

func (m *MockUserService) RefreshToken(ctx context.Context, refreshTokenString string) (string, string, error) {
	args := m.Called(ctx, refreshTokenString)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockUserService) IsTokenRevoked(ctx context.Context, tokenString string) (bool, error) {
	args := m.Called(ctx, tokenString)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserService) EnsureAdmin(cfg config.AdminConfig) error {
	args := m.Called(cfg)
	return args.Error(0)
}

// MockQuestionService is a mock implementation of QuestionService.
type MockQuestionService struct {
	mock.Mock
}

func (m *MockQuestionService) Ask(ctx context.Context, user *model.User, text, category string) (*AskResult, error) {
	args := m.Called(ctx, user, text, category)
	res, _ := args.Get(0).(*AskResult)
	return res, args.Error(1)
}

func (m *MockQuestionService) Get(ctx context.Context, id uint) (*model.Question, error) {
	args := m.Called(ctx, id)
	q, _ := args.Get(0).(*model.Question)
	return q, args.Error(1)
}

func (m *MockQuestionService) List(ctx context.Context, page, size int) (*PageResponse[model.Question], error) {
	args := m.Called(ctx, page, size)
	p, _ := args.Get(0).(*PageResponse[model.Question])
	return p, args.Error(1)
}

func (m *MockQuestionService) Home(ctx context.Context) (*HomeData, error) {
	args := m.Called(ctx)
	h, _ := args.Get(0).(*HomeData)
	return h, args.Error(1)
}

// MockSearchService is a mock implementation of SearchService.
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, query, category string, size int) ([]model.QuestionSearchHit, error) {
	args := m.Called(ctx, query, category, size)
	hits, _ := args.Get(0).([]model.QuestionSearchHit)
	return hits, args.Error(1)
}

func (m *MockSearchService) TranscriptURL(ctx context.Context, questionID uint) (string, error) {
	args := m.Called(ctx, questionID)
	return args.String(0), args.Error(1)
}

// MockAdminService is a mock implementation of AdminService.
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListQuestions(ctx context.Context, filter model.QuestionFilter, page, size int) (*PageResponse[model.Question], error) {
	args := m.Called(ctx, filter, page, size)
	p, _ := args.Get(0).(*PageResponse[model.Question])
	return p, args.Error(1)
}

func (m *MockAdminService) ListAnswers(ctx context.Context, filter model.AnswerFilter, page, size int) (*PageResponse[model.Answer], error) {
	args := m.Called(ctx, filter, page, size)
	p, _ := args.Get(0).(*PageResponse[model.Answer])
	return p, args.Error(1)
}

func (m *MockAdminService) DeleteQuestion(ctx context.Context, questionID uint) error {
	args := m.Called(ctx, questionID)
	return args.Error(0)
}

func (m *MockAdminService) ListUsers(page, size int) (*PageResponse[UserDetailResponse], error) {
	args := m.Called(page, size)
	p, _ := args.Get(0).(*PageResponse[UserDetailResponse])
	return p, args.Error(1)
}

func (m *MockAdminService) SetUserRole(userID uint, role string) (*model.User, error) {
	args := m.Called(userID, role)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

// MockTaskPublisher is a mock implementation of TaskPublisher.
type MockTaskPublisher struct {
	mock.Mock
}

func (m *MockTaskPublisher) PublishQATask(ctx context.Context, task tasks.QAIndexTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// MockQuestionIndex is a mock implementation of QuestionIndex.
type MockQuestionIndex struct {
	mock.Mock
}

func (m *MockQuestionIndex) SearchQuestions(ctx context.Context, query, category string, size int) ([]model.QuestionSearchHit, error) {
	args := m.Called(ctx, query, category, size)
	hits, _ := args.Get(0).([]model.QuestionSearchHit)
	return hits, args.Error(1)
}

func (m *MockQuestionIndex) DeleteQuestion(ctx context.Context, questionID uint) error {
	args := m.Called(ctx, questionID)
	return args.Error(0)
}

// MockTranscriptStore is a mock implementation of TranscriptStore.
type MockTranscriptStore struct {
	mock.Mock
}

func (m *MockTranscriptStore) TranscriptURL(ctx context.Context, questionID uint, expiry time.Duration) (string, error) {
	args := m.Called(ctx, questionID, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockTranscriptStore) RemoveTranscript(ctx context.Context, questionID uint) error {
	args := m.Called(ctx, questionID)
	return args.Error(0)
}
