package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"electrical-qa-go/internal/model"
	"electrical-qa-go/pkg/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIndexer struct{ mock.Mock }

func (m *mockIndexer) IndexQuestion(ctx context.Context, doc model.EsQuestionDocument) error {
	return m.Called(ctx, doc).Error(0)
}

type mockArchiver struct{ mock.Mock }

func (m *mockArchiver) PutTranscript(ctx context.Context, questionID uint, data []byte) error {
	return m.Called(ctx, questionID, data).Error(0)
}

func sampleTask() tasks.QAIndexTask {
	conf := 0.95
	return tasks.QAIndexTask{
		QuestionID:   12,
		UserID:       3,
		Username:     "ampere",
		Category:     "AC Machines",
		QuestionText: "What is the synchronous speed of a 4-pole 50 Hz machine?",
		AnswerText:   "1500 rpm.",
		Source:       "Llama 3.3 AI (Groq)",
		Confidence:   &conf,
		Success:      true,
		CreatedAt:    time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestProcessIndexesAndArchives(t *testing.T) {
	ctx := context.Background()
	indexer := new(mockIndexer)
	archiver := new(mockArchiver)
	p := NewProcessor(indexer, archiver)
	archivedAt := time.Date(2024, 6, 1, 10, 0, 5, 0, time.UTC)
	p.now = func() time.Time { return archivedAt }

	task := sampleTask()
	indexer.On("IndexQuestion", ctx, mock.MatchedBy(func(doc model.EsQuestionDocument) bool {
		return doc.QuestionID == 12 && doc.Username == "ampere" && doc.AnswerText == "1500 rpm." && doc.Success
	})).Return(nil)

	var archived []byte
	archiver.On("PutTranscript", ctx, uint(12), mock.Anything).
		Run(func(args mock.Arguments) { archived = args.Get(2).([]byte) }).
		Return(nil)

	require.NoError(t, p.Process(ctx, task))

	var transcript Transcript
	require.NoError(t, json.Unmarshal(archived, &transcript))
	assert.Equal(t, task.QuestionText, transcript.Question)
	assert.Equal(t, "AC Machines", transcript.Category)
	require.NotNil(t, transcript.Confidence)
	assert.InDelta(t, 0.95, *transcript.Confidence, 1e-9)
	assert.True(t, transcript.ArchivedAt.Equal(archivedAt))
	indexer.AssertExpectations(t)
}

func TestProcessStopsWhenIndexFails(t *testing.T) {
	indexer := new(mockIndexer)
	archiver := new(mockArchiver)
	p := NewProcessor(indexer, archiver)
	indexer.On("IndexQuestion", mock.Anything, mock.Anything).Return(errors.New("es down"))

	err := p.Process(context.Background(), sampleTask())
	assert.ErrorContains(t, err, "es down")
	archiver.AssertNotCalled(t, "PutTranscript", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessArchiveFailure(t *testing.T) {
	indexer := new(mockIndexer)
	archiver := new(mockArchiver)
	p := NewProcessor(indexer, archiver)
	indexer.On("IndexQuestion", mock.Anything, mock.Anything).Return(nil)
	archiver.On("PutTranscript", mock.Anything, uint(12), mock.Anything).Return(errors.New("bucket missing"))

	assert.ErrorContains(t, p.Process(context.Background(), sampleTask()), "bucket missing")
}

func TestNopDependencies(t *testing.T) {
	p := NewProcessor(nil, nil)
	assert.NoError(t, p.Process(context.Background(), sampleTask()))

	publisher := DirectPublisher{Processor: p}
	assert.NoError(t, publisher.PublishQATask(context.Background(), sampleTask()))
}
