package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"electrical-qa-go/internal/model"
	"electrical-qa-go/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type adminDeps struct {
	questions *repository.MockQuestionRepository
	answers   *repository.MockAnswerRepository
	users     *repository.MockUserRepository
	index     *MockQuestionIndex
	store     *MockTranscriptStore
}

func newAdminServiceForTest() (AdminService, *adminDeps) {
	d := &adminDeps{
		questions: new(repository.MockQuestionRepository),
		answers:   new(repository.MockAnswerRepository),
		users:     new(repository.MockUserRepository),
		index:     new(MockQuestionIndex),
		store:     new(MockTranscriptStore),
	}
	return NewAdminService(d.questions, d.answers, d.users, d.index, d.store), d
}

func TestAdminListQuestionsPassesFilter(t *testing.T) {
	ctx := context.Background()
	svc, d := newAdminServiceForTest()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	filter := model.QuestionFilter{Category: model.CategoryDCMachines, Search: "brush", StartTime: &start}
	d.questions.On("List", ctx, filter, 5, 5).Return([]model.Question{{ID: 1}}, int64(6), nil)

	page, err := svc.ListQuestions(ctx, filter, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
}

func TestAdminListAnswers(t *testing.T) {
	ctx := context.Background()
	svc, d := newAdminServiceForTest()
	filter := model.AnswerFilter{Source: "AI"}
	d.answers.On("List", ctx, filter, 0, 100).Return([]model.Answer{{ID: 1}, {ID: 2}}, int64(2), nil)

	page, err := svc.ListAnswers(ctx, filter, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, page.Size)
	assert.Len(t, page.Content, 2)
}

func TestAdminDeleteQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("cleans index and archive", func(t *testing.T) {
		svc, d := newAdminServiceForTest()
		d.questions.On("Delete", ctx, uint(3)).Return(nil)
		d.index.On("DeleteQuestion", ctx, uint(3)).Return(nil)
		d.store.On("RemoveTranscript", ctx, uint(3)).Return(errors.New("minio down"))

		require.NoError(t, svc.DeleteQuestion(ctx, 3))
		d.index.AssertExpectations(t)
		d.store.AssertExpectations(t)
	})

	t.Run("missing question", func(t *testing.T) {
		svc, d := newAdminServiceForTest()
		d.questions.On("Delete", ctx, uint(4)).Return(gorm.ErrRecordNotFound)

		assert.ErrorIs(t, svc.DeleteQuestion(ctx, 4), ErrQuestionNotFound)
		d.index.AssertNotCalled(t, "DeleteQuestion", ctx, uint(4))
	})

	t.Run("without index and archive", func(t *testing.T) {
		questions := new(repository.MockQuestionRepository)
		svc := NewAdminService(questions, nil, nil, nil, nil)
		questions.On("Delete", ctx, uint(5)).Return(nil)

		assert.NoError(t, svc.DeleteQuestion(ctx, 5))
	})
}

func TestAdminListUsers(t *testing.T) {
	svc, d := newAdminServiceForTest()
	created := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	d.users.On("FindWithPagination", 0, 10).Return([]model.User{
		{ID: 1, Username: "admin", Role: model.RoleAdmin, CreatedAt: created},
		{ID: 2, Username: "tesla", Role: model.RoleUser, Email: "tesla@example.com"},
	}, int64(2), nil)

	page, err := svc.ListUsers(1, 10)
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "admin", page.Content[0].Username)
	assert.Equal(t, "2024-05-01 08:30:00", page.Content[0].CreatedAt.String())
	assert.Equal(t, "tesla@example.com", page.Content[1].Email)
}

func TestAdminSetUserRole(t *testing.T) {
	svc, d := newAdminServiceForTest()
	user := &model.User{ID: 2, Username: "tesla", Role: model.RoleUser}
	d.users.On("FindByID", uint(2)).Return(user, nil)
	d.users.On("FindByID", uint(9)).Return(nil, gorm.ErrRecordNotFound)
	d.users.On("Update", user).Return(nil)

	updated, err := svc.SetUserRole(2, model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())

	_, err = svc.SetUserRole(2, "SUPERUSER")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.SetUserRole(9, model.RoleUser)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
