package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 是一个只支持 PUT / HEAD / DELETE 单个对象的内存 S3。
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = data
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		data, ok := f.objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) object(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	return data, ok
}

func newTestStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
		Region: "us-east-1",
	})
	require.NoError(t, err)
	return &Store{client: client, bucket: "electrical-qa"}, fake
}

func TestTranscriptObjectName(t *testing.T) {
	assert.Equal(t, "transcripts/42.json", TranscriptObjectName(42))
}

func TestTranscriptLifecycle(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore(t)

	require.NoError(t, store.PutTranscript(ctx, 42, []byte(`{"question_id":42}`)))
	data, ok := fake.object("/electrical-qa/transcripts/42.json")
	require.True(t, ok)
	assert.Contains(t, string(data), `{"question_id":42}`)

	url, err := store.TranscriptURL(ctx, 42, time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "/electrical-qa/transcripts/42.json")
	assert.Contains(t, url, "X-Amz-Signature=")

	require.NoError(t, store.RemoveTranscript(ctx, 42))
	_, ok = fake.object("/electrical-qa/transcripts/42.json")
	assert.False(t, ok)

	_, err = store.TranscriptURL(ctx, 42, time.Minute)
	require.Error(t, err)
	assert.Equal(t, "NoSuchKey", minio.ToErrorResponse(err).Code)
}
