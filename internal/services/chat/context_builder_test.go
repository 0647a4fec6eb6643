package chat

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/responsum/internal/models"
)

func result(docID string, page int, text string, similarity float64) models.RetrievalResult {
	return models.RetrievalResult{
		Chunk:      models.Chunk{ID: "chk_" + docID, DocumentID: docID, Page: page, Text: text},
		Similarity: similarity,
	}
}

func turn(role, content string) models.Turn {
	return models.Turn{Role: role, Content: content}
}

func TestNewContextBuilder_InvalidParams(t *testing.T) {
	_, err := NewContextBuilder(0, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConfig))

	_, err = NewContextBuilder(1000, -1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConfig))
}

func TestBuild_IncludesContextHistoryAndQuestion(t *testing.T) {
	b, err := NewContextBuilder(4000, 6)
	require.NoError(t, err)

	prompt, err := b.Build("Explain handover",
		[]models.Turn{
			turn(models.RoleUser, "What is LTE?"),
			turn(models.RoleAssistant, "LTE is a 4G standard."),
		},
		[]models.RetrievalResult{
			result("doc_a", 2, "Handover moves a UE between cells.", 0.9),
		})
	require.NoError(t, err)

	assert.Contains(t, prompt, "RELEVANT CONTEXT:")
	assert.Contains(t, prompt, "Handover moves a UE between cells.")
	assert.Contains(t, prompt, "CONVERSATION SO FAR:")
	assert.Contains(t, prompt, "What is LTE?")
	assert.Contains(t, prompt, "QUESTION: Explain handover")
}

func TestBuild_NoContext(t *testing.T) {
	b, err := NewContextBuilder(4000, 6)
	require.NoError(t, err)

	prompt, err := b.Build("hello", nil, nil)
	require.NoError(t, err)
	assert.NotContains(t, prompt, "RELEVANT CONTEXT:")
	assert.Equal(t, "QUESTION: hello", prompt)
}

func TestBuild_NeverExceedsBudget(t *testing.T) {
	b, err := NewContextBuilder(500, 6)
	require.NoError(t, err)

	big := strings.Repeat("lorem ipsum ", 100)
	prompt, err := b.Build("short question",
		[]models.Turn{turn(models.RoleUser, big), turn(models.RoleAssistant, big)},
		[]models.RetrievalResult{
			result("doc_a", 1, big, 0.9),
			result("doc_b", 1, "small chunk that fits", 0.5),
		})
	require.NoError(t, err)
	assert.LessOrEqual(t, utf8.RuneCountInString(prompt), 500)
}

func TestBuild_DropsOldestHistoryFirst(t *testing.T) {
	b, err := NewContextBuilder(260, 6)
	require.NoError(t, err)

	oldTurn := turn(models.RoleUser, strings.Repeat("old ", 40))
	newTurn := turn(models.RoleAssistant, "recent answer")
	chunk := result("doc_a", 1, "chunk text stays", 0.9)

	prompt, err := b.Build("q", []models.Turn{oldTurn, newTurn}, []models.RetrievalResult{chunk})
	require.NoError(t, err)

	// The old turn is gone, the chunk and the recent turn survive.
	assert.NotContains(t, prompt, "old old")
	assert.Contains(t, prompt, "recent answer")
	assert.Contains(t, prompt, "chunk text stays")
}

func TestBuild_DropsLowestSimilarityChunksAfterHistory(t *testing.T) {
	b, err := NewContextBuilder(220, 6)
	require.NoError(t, err)

	strong := result("doc_a", 1, "strong chunk", 0.9)
	weak := result("doc_b", 1, strings.Repeat("weak ", 40), 0.2)

	prompt, err := b.Build("q", nil, []models.RetrievalResult{strong, weak})
	require.NoError(t, err)

	assert.Contains(t, prompt, "strong chunk")
	assert.NotContains(t, prompt, "weak weak")
}

func TestBuild_QueryAloneOverBudget(t *testing.T) {
	b, err := NewContextBuilder(20, 6)
	require.NoError(t, err)

	_, err = b.Build(strings.Repeat("question ", 10), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrContextBuild))
}

func TestBuild_EmptyQuery(t *testing.T) {
	b, err := NewContextBuilder(1000, 6)
	require.NoError(t, err)

	_, err = b.Build("   ", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrContextBuild))
}

func TestBuild_HistoryWindowCap(t *testing.T) {
	b, err := NewContextBuilder(10000, 2)
	require.NoError(t, err)

	prompt, err := b.Build("q",
		[]models.Turn{
			turn(models.RoleUser, "first message"),
			turn(models.RoleAssistant, "second message"),
			turn(models.RoleUser, "third message"),
		}, nil)
	require.NoError(t, err)

	assert.NotContains(t, prompt, "first message")
	assert.Contains(t, prompt, "second message")
	assert.Contains(t, prompt, "third message")
}
