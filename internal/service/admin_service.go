package service

import (
	"context"
	"errors"

	"electrical-qa-go/internal/model"
	"electrical-qa-go/internal/repository"
	"electrical-qa-go/pkg/log"

	"gorm.io/gorm"
)

// UserDetailResponse 定义了用户列表项的详细结构。
type UserDetailResponse struct {
	UserID    uint            `json:"userId"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Role      string          `json:"role"`
	CreatedAt model.LocalTime `json:"createdAt"`
}

// AdminService 接口定义了所有管理员相关的业务操作。
type AdminService interface {
	// Question / Answer Management
	ListQuestions(ctx context.Context, filter model.QuestionFilter, page, size int) (*PageResponse[model.Question], error)
	ListAnswers(ctx context.Context, filter model.AnswerFilter, page, size int) (*PageResponse[model.Answer], error)
	DeleteQuestion(ctx context.Context, questionID uint) error

	// User Management
	ListUsers(page, size int) (*PageResponse[UserDetailResponse], error)
	SetUserRole(userID uint, role string) (*model.User, error)
}

// adminService 是 AdminService 接口的实现。
type adminService struct {
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	userRepo     repository.UserRepository
	index        QuestionIndex
	store        TranscriptStore
}

// NewAdminService 创建一个新的 AdminService 实例。index 与 store 可以为 nil。
func NewAdminService(
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	userRepo repository.UserRepository,
	index QuestionIndex,
	store TranscriptStore,
) AdminService {
	return &adminService{
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		userRepo:     userRepo,
		index:        index,
		store:        store,
	}
}

// ListQuestions 按分类、时间范围和关键字分页列出问题。
func (s *adminService) ListQuestions(ctx context.Context, filter model.QuestionFilter, page, size int) (*PageResponse[model.Question], error) {
	page, size = normalizePage(page, size)
	questions, total, err := s.questionRepo.List(ctx, filter, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	return newPageResponse(questions, total, page, size), nil
}

// ListAnswers 按来源和时间范围分页列出回答。
func (s *adminService) ListAnswers(ctx context.Context, filter model.AnswerFilter, page, size int) (*PageResponse[model.Answer], error) {
	page, size = normalizePage(page, size)
	answers, total, err := s.answerRepo.List(ctx, filter, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	return newPageResponse(answers, total, page, size), nil
}

// DeleteQuestion 删除问题及其回答，然后尽力清理搜索索引和归档文件。
func (s *adminService) DeleteQuestion(ctx context.Context, questionID uint) error {
	if err := s.questionRepo.Delete(ctx, questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	if s.index != nil {
		if err := s.index.DeleteQuestion(ctx, questionID); err != nil {
			log.Warnf("[AdminService] 删除索引文档失败, questionID: %d, error: %v", questionID, err)
		}
	}
	if s.store != nil {
		if err := s.store.RemoveTranscript(ctx, questionID); err != nil {
			log.Warnf("[AdminService] 删除归档文件失败, questionID: %d, error: %v", questionID, err)
		}
	}
	log.Infof("[AdminService] 问题已删除, questionID: %d", questionID)
	return nil
}

// ListUsers 分页获取用户列表。
func (s *adminService) ListUsers(page, size int) (*PageResponse[UserDetailResponse], error) {
	page, size = normalizePage(page, size)
	users, total, err := s.userRepo.FindWithPagination((page-1)*size, size)
	if err != nil {
		return nil, err
	}

	userResponses := make([]UserDetailResponse, 0, len(users))
	for _, u := range users {
		userResponses = append(userResponses, UserDetailResponse{
			UserID:    u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      u.Role,
			CreatedAt: model.LocalTime(u.CreatedAt),
		})
	}
	return newPageResponse(userResponses, total, page, size), nil
}

// SetUserRole 修改用户角色，只接受 USER 或 ADMIN。
func (s *adminService) SetUserRole(userID uint, role string) (*model.User, error) {
	if role != model.RoleUser && role != model.RoleAdmin {
		return nil, ErrInvalidRole
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
