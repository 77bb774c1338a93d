package es

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"electrical-qa-go/internal/config"
	"electrical-qa-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	body   map[string]interface{}
}

func fakeES(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		respond(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(config.ElasticsearchConfig{Addresses: srv.URL, IndexName: "qa_test"})
	require.NoError(t, err)
	return c, &calls
}

func TestIndexQuestion(t *testing.T) {
	c, calls := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	})

	err := c.IndexQuestion(context.Background(), model.EsQuestionDocument{
		QuestionID:   42,
		Category:     "Transformers",
		QuestionText: "What causes inrush current?",
		AnswerText:   "Core saturation.",
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPut, call.method)
	assert.Equal(t, "/qa_test/_doc/42", call.path)
	assert.Equal(t, "Transformers", call.body["category"])
	assert.Equal(t, "What causes inrush current?", call.body["question_text"])
}

func TestIndexQuestionError(t *testing.T) {
	c, _ := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"mapper_parsing_exception"}`)
	})

	err := c.IndexQuestion(context.Background(), model.EsQuestionDocument{QuestionID: 1})
	assert.Error(t, err)
}

func TestSearchQuestions(t *testing.T) {
	c, calls := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hits":{"hits":[
			{"_score":3.5,"_source":{"question_id":7,"category":"DC Machines","question_text":"Why do brushes spark?","answer_text":"Poor commutation.","username":"ampere"}}
		]}}`)
	})

	hits, err := c.SearchQuestions(context.Background(), "brushes", "DC Machines", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, uint(7), hits[0].QuestionID)
	assert.Equal(t, "ampere", hits[0].Username)
	assert.Equal(t, 3.5, hits[0].Score)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/qa_test/_search", call.path)
	assert.Equal(t, float64(5), call.body["size"])
	boolQuery := call.body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	require.Len(t, filters, 1)
}

func TestDeleteQuestionIgnoresMissing(t *testing.T) {
	c, calls := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	})

	require.NoError(t, c.DeleteQuestion(context.Background(), 9))
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
	assert.Equal(t, "/qa_test/_doc/9", (*calls)[0].path)
}
