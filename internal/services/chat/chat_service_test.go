package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/models"
)

// stubStore serves canned retrieval results.
type stubStore struct {
	results []models.RetrievalResult
	err     error
}

func (s *stubStore) Index(context.Context, []models.Chunk) ([]models.IndexFailure, error) {
	return nil, nil
}

func (s *stubStore) Search(context.Context, string, int) ([]models.RetrievalResult, error) {
	return s.results, s.err
}

func (s *stubStore) RemoveDocument(context.Context, string) error { return nil }
func (s *stubStore) Save() error                                  { return nil }
func (s *stubStore) Len() int                                     { return len(s.results) }
func (s *stubStore) Close() error                                 { return nil }

// stubLLM controls completion behavior per test.
type stubLLM struct {
	mu      sync.Mutex
	chatFn  func(ctx context.Context, messages []models.Message) (string, error)
	prompts [][]models.Message
}

func (s *stubLLM) Chat(ctx context.Context, messages []models.Message) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, messages)
	s.mu.Unlock()
	if s.chatFn != nil {
		return s.chatFn(ctx, messages)
	}
	return "stub answer", nil
}

func (s *stubLLM) Embed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("%w: not supported", models.ErrEmbedding)
}

func (s *stubLLM) EmbedDimension() int                  { return 4 }
func (s *stubLLM) Name() string                         { return "stub" }
func (s *stubLLM) IsAvailable(context.Context) bool     { return true }
func (s *stubLLM) lastPrompt() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return nil
	}
	return s.prompts[len(s.prompts)-1]
}

func newTestService(t *testing.T, llm *stubLLM, store *stubStore) *Service {
	t.Helper()
	builder, err := NewContextBuilder(12000, 6)
	require.NoError(t, err)
	svc, err := NewService(llm, store, nil, builder, 5, common.GetLogger())
	require.NoError(t, err)
	return svc
}

func TestChat_RetrievedContextReachesProvider(t *testing.T) {
	store := &stubStore{results: []models.RetrievalResult{
		{
			Chunk:      models.Chunk{ID: "chk_1", DocumentID: "doc_lte", Page: 2, Text: "Handover transfers the UE between eNodeBs."},
			Similarity: 0.9,
		},
	}}
	llm := &stubLLM{}
	svc := newTestService(t, llm, store)

	resp, err := svc.Chat(context.Background(), "ses_1", "Explain handover")
	require.NoError(t, err)
	assert.Equal(t, "stub answer", resp.Response)
	assert.Equal(t, []string{"doc_lte"}, resp.Sources)

	prompt := llm.lastPrompt()
	require.Len(t, prompt, 2)
	assert.Equal(t, models.RoleSystem, prompt[0].Role)
	assert.Contains(t, prompt[1].Content, "handover")
	assert.Contains(t, prompt[1].Content, "Handover transfers the UE between eNodeBs.")
}

func TestChat_BusySession(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	llm := &stubLLM{chatFn: func(ctx context.Context, _ []models.Message) (string, error) {
		select {
		case <-started:
		default:
			close(started)
		}
		<-release
		return "slow answer", nil
	}}
	svc := newTestService(t, llm, &stubStore{})

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = svc.Chat(context.Background(), "ses_1", "first")
	}()

	<-started
	_, err := svc.Chat(context.Background(), "ses_1", "second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrBusy))

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)

	// Session is usable again after completion.
	_, err = svc.Chat(context.Background(), "ses_1", "third")
	assert.NoError(t, err)
}

func TestChat_DifferentSessionsRunConcurrently(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	llm := &stubLLM{chatFn: func(ctx context.Context, _ []models.Message) (string, error) {
		select {
		case <-started:
		default:
			close(started)
			<-release
		}
		return "answer", nil
	}}
	svc := newTestService(t, llm, &stubStore{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.Chat(context.Background(), "ses_a", "blocked")
	}()

	<-started
	done := make(chan error, 1)
	go func() {
		_, err := svc.Chat(context.Background(), "ses_b", "independent")
		done <- err
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("request on independent session blocked")
	}

	close(release)
	wg.Wait()
}

func TestChat_SessionRecoversAfterProviderFailure(t *testing.T) {
	fail := true
	llm := &stubLLM{chatFn: func(ctx context.Context, _ []models.Message) (string, error) {
		if fail {
			return "", fmt.Errorf("%w: upstream exploded", models.ErrLLM)
		}
		return "recovered", nil
	}}
	svc := newTestService(t, llm, &stubStore{})

	_, err := svc.Chat(context.Background(), "ses_1", "boom")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrLLM))

	fail = false
	resp, err := svc.Chat(context.Background(), "ses_1", "again")
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Response)
}

func TestChat_FailedRequestKeepsAcceptedUserTurn(t *testing.T) {
	llm := &stubLLM{chatFn: func(ctx context.Context, _ []models.Message) (string, error) {
		return "", fmt.Errorf("%w: nope", models.ErrLLM)
	}}
	svc := newTestService(t, llm, &stubStore{})

	_, err := svc.Chat(context.Background(), "ses_1", "failing message")
	require.Error(t, err)

	// The accepted user turn survives the provider failure; only the
	// assistant turn is missing.
	sess := svc.sessions.get("ses_1")
	history := sess.snapshotHistory()
	require.Len(t, history, 1)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "failing message", history[0].Content)
}

func TestChat_HistoryGrowsAcrossTurns(t *testing.T) {
	llm := &stubLLM{}
	svc := newTestService(t, llm, &stubStore{})

	_, err := svc.Chat(context.Background(), "ses_1", "first question")
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), "ses_1", "second question")
	require.NoError(t, err)

	// The second prompt carries the first exchange.
	prompt := llm.lastPrompt()
	require.Len(t, prompt, 2)
	assert.Contains(t, prompt[1].Content, "first question")
	assert.Contains(t, prompt[1].Content, "stub answer")

	sess := svc.sessions.get("ses_1")
	assert.Len(t, sess.snapshotHistory(), 4)
}

func TestEvictSession_DropsHistory(t *testing.T) {
	llm := &stubLLM{}
	svc := newTestService(t, llm, &stubStore{})

	_, err := svc.Chat(context.Background(), "ses_1", "remember this")
	require.NoError(t, err)
	require.Equal(t, 1, svc.SessionCount())

	svc.EvictSession("ses_1")
	assert.Equal(t, 0, svc.SessionCount())

	// A new request on the same id starts from an empty conversation.
	_, err = svc.Chat(context.Background(), "ses_1", "fresh start")
	require.NoError(t, err)
	prompt := llm.lastPrompt()
	require.Len(t, prompt, 2)
	assert.NotContains(t, prompt[1].Content, "remember this")
}

func TestChat_ValidatesInput(t *testing.T) {
	svc := newTestService(t, &stubLLM{}, &stubStore{})

	_, err := svc.Chat(context.Background(), "", "message")
	assert.True(t, errors.Is(err, models.ErrConfig))

	_, err = svc.Chat(context.Background(), "ses_1", "")
	assert.True(t, errors.Is(err, models.ErrConfig))
}
