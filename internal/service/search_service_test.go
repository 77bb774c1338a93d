package service

import (
	"context"
	"errors"
	"testing"

	"electrical-qa-go/internal/model"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSearchUnavailableWithoutIndex(t *testing.T) {
	svc := NewSearchService(nil, nil)

	_, err := svc.Search(context.Background(), "slip", "", 5)
	assert.ErrorIs(t, err, ErrSearchUnavailable)

	_, err = svc.TranscriptURL(context.Background(), 1)
	assert.ErrorIs(t, err, ErrArchiveUnavailable)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	index := new(MockQuestionIndex)
	svc := NewSearchService(index, nil)

	hits := []model.QuestionSearchHit{{QuestionID: 4, QuestionText: "What is slip?"}}
	index.On("SearchQuestions", ctx, "slip", "Induction Motors", 10).Return(hits, nil).Once()
	index.On("SearchQuestions", ctx, "slip", "", maxSearchSize).Return(hits, nil).Once()

	got, err := svc.Search(ctx, "  slip ", "Induction Motors", 0)
	require.NoError(t, err)
	assert.Equal(t, hits, got)

	_, err = svc.Search(ctx, "slip", "", 500)
	require.NoError(t, err)

	_, err = svc.Search(ctx, "slip", "Power Electronics", 5)
	assert.ErrorIs(t, err, ErrInvalidCategory)

	empty, err := svc.Search(ctx, "   ", "", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	index.AssertExpectations(t)
}

func TestTranscriptURL(t *testing.T) {
	ctx := context.Background()
	store := new(MockTranscriptStore)
	svc := NewSearchService(nil, store)

	store.On("TranscriptURL", ctx, uint(1), transcriptURLValid).Return("http://minio/transcripts/1.json?sig", nil)
	store.On("TranscriptURL", ctx, uint(2), transcriptURLValid).Return("", minio.ErrorResponse{Code: "NoSuchKey"})
	store.On("TranscriptURL", ctx, uint(3), mock.Anything).Return("", errors.New("connection refused"))

	url, err := svc.TranscriptURL(ctx, 1)
	require.NoError(t, err)
	assert.Contains(t, url, "transcripts/1.json")

	_, err = svc.TranscriptURL(ctx, 2)
	assert.ErrorIs(t, err, ErrTranscriptNotFound)

	_, err = svc.TranscriptURL(ctx, 3)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTranscriptNotFound)
}
