package service

import (
	"context"
	"errors"
	"testing"

	"electrical-qa-go/internal/model"
	"electrical-qa-go/internal/repository"
	"electrical-qa-go/pkg/llm"
	"electrical-qa-go/pkg/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type questionDeps struct {
	questions *repository.MockQuestionRepository
	answers   *repository.MockAnswerRepository
	users     *repository.MockUserRepository
	provider  *llm.MockProvider
	publisher *MockTaskPublisher
}

func newQuestionServiceForTest() (QuestionService, *questionDeps) {
	d := &questionDeps{
		questions: new(repository.MockQuestionRepository),
		answers:   new(repository.MockAnswerRepository),
		users:     new(repository.MockUserRepository),
		provider:  new(llm.MockProvider),
		publisher: new(MockTaskPublisher),
	}
	return NewQuestionService(d.questions, d.answers, d.users, d.provider, d.publisher), d
}

func (d *questionDeps) expectPersist(questionID uint) {
	d.questions.On("Create", mock.Anything, mock.AnythingOfType("*model.Question")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Question).ID = questionID }).
		Return(nil)
	d.answers.On("Create", mock.Anything, mock.AnythingOfType("*model.Answer")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Answer).ID = 100 + questionID }).
		Return(nil)
}

var tesla = &model.User{ID: 7, Username: "tesla"}

func TestAskSuccess(t *testing.T) {
	ctx := context.Background()
	svc, d := newQuestionServiceForTest()
	d.expectPersist(1)

	conf := llm.Confidence
	outcome := llm.Outcome{Success: true, Answer: "A transformer transfers energy by mutual induction.", Source: "Llama 3.3 AI (Groq)", Confidence: &conf}
	d.provider.On("GetAnswer", mock.Anything, "What does a transformer do?").Return(outcome).Once()
	d.publisher.On("PublishQATask", mock.Anything, mock.MatchedBy(func(task tasks.QAIndexTask) bool {
		return task.QuestionID == 1 && task.Username == "tesla" && task.Success && task.Category == "Transformers"
	})).Return(nil)

	res, err := svc.Ask(ctx, tesla, "What does a transformer do?", "Transformers")
	require.NoError(t, err)

	assert.Equal(t, MsgAnswered, res.Message)
	assert.Equal(t, outcome, res.Outcome)
	assert.Equal(t, model.CategoryTransformers, res.Question.Category)
	assert.Equal(t, uint(7), res.Question.UserID)
	assert.Equal(t, "Llama 3.3 AI (Groq)", res.Answer.Source)
	assert.Equal(t, outcome.Answer, res.Answer.AnswerText)
	require.NotNil(t, res.Answer.ConfidenceScore)
	assert.InDelta(t, 0.95, *res.Answer.ConfidenceScore, 1e-9)
	require.Len(t, res.Question.Answers, 1)
	assert.Equal(t, uint(1), res.Answer.QuestionID)

	d.provider.AssertNumberOfCalls(t, "GetAnswer", 1)
	d.publisher.AssertExpectations(t)
}

func TestAskProviderFailureStillPersistsAnswer(t *testing.T) {
	ctx := context.Background()
	svc, d := newQuestionServiceForTest()
	d.expectPersist(2)

	outcome := llm.Outcome{Success: false, Answer: "Too many requests. Please wait a moment and try again.", Error: llm.ErrRateLimit}
	d.provider.On("GetAnswer", mock.Anything, "Why is my motor humming?").Return(outcome)
	d.publisher.On("PublishQATask", mock.Anything, mock.Anything).Return(nil)

	res, err := svc.Ask(ctx, tesla, "Why is my motor humming?", "")
	require.NoError(t, err)

	assert.Equal(t, MsgAnswerIssues, res.Message)
	assert.False(t, res.Outcome.Success)
	assert.Equal(t, model.CategoryGeneral, res.Question.Category)
	assert.Equal(t, model.DefaultAnswerSource, res.Answer.Source)
	assert.Nil(t, res.Answer.ConfidenceScore)
	assert.Equal(t, outcome.Answer, res.Answer.AnswerText)
}

func TestAskPublishFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	svc, d := newQuestionServiceForTest()
	d.expectPersist(3)
	d.provider.On("GetAnswer", mock.Anything, mock.Anything).Return(llm.Outcome{Success: true, Answer: "ok", Source: "AI"})
	d.publisher.On("PublishQATask", mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))

	res, err := svc.Ask(ctx, tesla, "What is back EMF?", "DC Machines")
	require.NoError(t, err)
	assert.Equal(t, MsgAnswered, res.Message)
}

func TestAskSurvivesClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc, d := newQuestionServiceForTest()

	d.questions.On("Create", mock.Anything, mock.AnythingOfType("*model.Question")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Question).ID = 4 }).
		Return(nil)
	// 模拟请求在等待 provider 时被取消
	d.provider.On("GetAnswer", mock.Anything, "What is slip?").
		Run(func(mock.Arguments) { cancel() }).
		Return(llm.Outcome{Success: false, Answer: "Error: context canceled.", Error: "context canceled"})
	d.answers.On("Create", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), mock.AnythingOfType("*model.Answer")).
		Return(nil).Once()
	d.publisher.On("PublishQATask", mock.Anything, mock.Anything).Return(nil)

	res, err := svc.Ask(ctx, tesla, "What is slip?", "General")
	require.NoError(t, err)
	assert.Error(t, ctx.Err())
	assert.Equal(t, uint(4), res.Answer.QuestionID)
	assert.Equal(t, MsgAnswerIssues, res.Message)
	d.answers.AssertExpectations(t)
}

func TestAskRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category string
		wantErr  error
	}{
		{"unknown category", "What is slip?", "Power Electronics", ErrInvalidCategory},
		{"blank text", "   \n", "General", ErrEmptyQuestion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newQuestionServiceForTest()
			_, err := svc.Ask(context.Background(), tesla, tt.text, tt.category)
			assert.ErrorIs(t, err, tt.wantErr)
			d.questions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			d.provider.AssertNotCalled(t, "GetAnswer", mock.Anything, mock.Anything)
		})
	}
}

func TestAskQuestionSaveFailureSkipsProvider(t *testing.T) {
	svc, d := newQuestionServiceForTest()
	d.questions.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := svc.Ask(context.Background(), tesla, "What is a stator?", "AC Machines")
	assert.Error(t, err)
	d.provider.AssertNotCalled(t, "GetAnswer", mock.Anything, mock.Anything)
}

func TestGetQuestion(t *testing.T) {
	ctx := context.Background()
	svc, d := newQuestionServiceForTest()
	d.questions.On("FindByID", ctx, uint(5)).Return(&model.Question{ID: 5}, nil)
	d.questions.On("FindByID", ctx, uint(6)).Return(nil, gorm.ErrRecordNotFound)

	q, err := svc.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, uint(5), q.ID)

	_, err = svc.Get(ctx, 6)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestListQuestionsPaging(t *testing.T) {
	ctx := context.Background()
	svc, d := newQuestionServiceForTest()
	d.questions.On("List", ctx, model.QuestionFilter{}, 20, 10).Return([]model.Question{{ID: 1}}, int64(21), nil)
	d.questions.On("List", ctx, model.QuestionFilter{}, 0, 10).Return(nil, int64(0), nil)

	page, err := svc.List(ctx, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.Number)
	assert.Len(t, page.Content, 1)

	empty, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, empty.Content)
	assert.Empty(t, empty.Content)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestHome(t *testing.T) {
	ctx := context.Background()
	svc, d := newQuestionServiceForTest()
	d.questions.On("Recent", ctx, 10).Return([]model.Question{{ID: 9}, {ID: 8}}, nil)
	d.questions.On("Count", ctx).Return(int64(2), nil)
	d.users.On("Count").Return(int64(4), nil)
	d.answers.On("Count", ctx).Return(int64(3), nil)

	home, err := svc.Home(ctx)
	require.NoError(t, err)
	assert.Len(t, home.RecentQuestions, 2)
	assert.Equal(t, model.Stats{TotalQuestions: 2, TotalUsers: 4, TotalAnswers: 3}, home.Stats)
}
