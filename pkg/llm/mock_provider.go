package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of AnswerProvider using testify/mock.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) GetAnswer(ctx context.Context, questionText string) Outcome {
	args := m.Called(ctx, questionText)
	return args.Get(0).(Outcome)
}
