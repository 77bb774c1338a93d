package service

import (
	"context"
	"errors"
	"strings"

	"electrical-qa-go/internal/model"
	"electrical-qa-go/internal/repository"
	"electrical-qa-go/pkg/llm"
	"electrical-qa-go/pkg/log"
	"electrical-qa-go/pkg/tasks"

	"gorm.io/gorm"
)

// 提问后返回给用户的提示。
const (
	MsgAnswered     = "Question posted and answered successfully!"
	MsgAnswerIssues = "Question posted but AI response had issues."
)

// recentQuestionsLimit 是首页展示的最新问题数量。
const recentQuestionsLimit = 10

// TaskPublisher 负责把已回答的问题发给索引流水线。
type TaskPublisher interface {
	PublishQATask(ctx context.Context, task tasks.QAIndexTask) error
}

// AskResult 是一次提问的结果。Question.Answers 中包含刚写入的回答。
type AskResult struct {
	Question *model.Question
	Answer   *model.Answer
	Outcome  llm.Outcome
	Message  string
}

// HomeData 是首页数据。
type HomeData struct {
	RecentQuestions []model.Question `json:"recentQuestions"`
	Stats           model.Stats      `json:"stats"`
}

// QuestionService 定义了提问与浏览问题的业务操作。
type QuestionService interface {
	Ask(ctx context.Context, user *model.User, text, category string) (*AskResult, error)
	Get(ctx context.Context, id uint) (*model.Question, error)
	List(ctx context.Context, page, size int) (*PageResponse[model.Question], error)
	Home(ctx context.Context) (*HomeData, error)
}

type questionService struct {
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	userRepo     repository.UserRepository
	provider     llm.AnswerProvider
	publisher    TaskPublisher
}

// NewQuestionService 创建一个新的 QuestionService 实例。
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	userRepo repository.UserRepository,
	provider llm.AnswerProvider,
	publisher TaskPublisher,
) QuestionService {
	return &questionService{
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		userRepo:     userRepo,
		provider:     provider,
		publisher:    publisher,
	}
}

// Ask 保存问题，调用一次问答客户端并保存回答。
// 问答失败时仍然保存回答（内容为给用户的提示），不会返回 error。
func (s *questionService) Ask(ctx context.Context, user *model.User, text, category string) (*AskResult, error) {
	cat, err := model.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuestion
	}
	// 客户端断开不应中断问答：问题一旦保存就必须写入回答，调用方只受 provider 的超时约束
	ctx = context.WithoutCancel(ctx)

	// 1. 保存问题
	question := &model.Question{
		UserID:       user.ID,
		QuestionText: text,
		Category:     cat,
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		log.Errorf("[QuestionService] 保存问题失败, user: %s, error: %v", user.Username, err)
		return nil, err
	}
	question.User = user

	// 2. 调用问答客户端
	outcome := s.provider.GetAnswer(ctx, question.QuestionText)

	// 3. 保存回答
	source := outcome.Source
	if source == "" {
		source = model.DefaultAnswerSource
	}
	answer := &model.Answer{
		QuestionID:      question.ID,
		AnswerText:      outcome.Answer,
		Source:          source,
		ConfidenceScore: outcome.Confidence,
	}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		log.Errorf("[QuestionService] 保存回答失败, questionID: %d, error: %v", question.ID, err)
		return nil, err
	}
	question.Answers = []model.Answer{*answer}

	// 4. 通知索引流水线，失败只记录日志
	task := tasks.QAIndexTask{
		QuestionID:   question.ID,
		UserID:       user.ID,
		Username:     user.Username,
		Category:     string(question.Category),
		QuestionText: question.QuestionText,
		AnswerText:   answer.AnswerText,
		Source:       answer.Source,
		Confidence:   answer.ConfidenceScore,
		Success:      outcome.Success,
		CreatedAt:    question.CreatedAt,
	}
	if err := s.publisher.PublishQATask(ctx, task); err != nil {
		log.Warnf("[QuestionService] 发送索引任务失败, questionID: %d, error: %v", question.ID, err)
	}

	message := MsgAnswered
	if !outcome.Success {
		message = MsgAnswerIssues
	}
	log.Infof("[QuestionService] 用户 '%s' 提问成功, questionID: %d, success: %t", user.Username, question.ID, outcome.Success)

	return &AskResult{
		Question: question,
		Answer:   answer,
		Outcome:  outcome,
		Message:  message,
	}, nil
}

// Get 返回问题及其全部回答。
func (s *questionService) Get(ctx context.Context, id uint) (*model.Question, error) {
	q, err := s.questionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// List 分页列出全部问题，最新的在前。
func (s *questionService) List(ctx context.Context, page, size int) (*PageResponse[model.Question], error) {
	page, size = normalizePage(page, size)
	questions, total, err := s.questionRepo.List(ctx, model.QuestionFilter{}, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	return newPageResponse(questions, total, page, size), nil
}

// Home 返回最新的问题和统计数据。
func (s *questionService) Home(ctx context.Context) (*HomeData, error) {
	recent, err := s.questionRepo.Recent(ctx, recentQuestionsLimit)
	if err != nil {
		return nil, err
	}
	totalQuestions, err := s.questionRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	totalAnswers, err := s.answerRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []model.Question{}
	}
	return &HomeData{
		RecentQuestions: recent,
		Stats: model.Stats{
			TotalQuestions: totalQuestions,
			TotalUsers:     totalUsers,
			TotalAnswers:   totalAnswers,
		},
	}, nil
}
