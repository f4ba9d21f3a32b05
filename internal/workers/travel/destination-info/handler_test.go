// internal/workers/travel/destination-info/handler_test.go
package destinationinfo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trip-planner/internal/common/errors"
)

// ==========================
// Test Doubles
// ==========================

type TestLogger struct {
	t *testing.T
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger { return l }

type fakeWiki struct {
	mu     sync.Mutex
	titles []string
	failOn map[string]bool
}

func (w *fakeWiki) PageSummary(ctx context.Context, title string) map[string]interface{} {
	w.mu.Lock()
	w.titles = append(w.titles, title)
	w.mu.Unlock()
	if w.failOn[title] {
		return map[string]interface{}{"title": title, "error": "HTTP 404 from Wikipedia"}
	}
	return map[string]interface{}{"title": title, "extract": title + " is a place."}
}

// fakeGenerator answers by system prompt: extraction calls get extractReply,
// summary calls get summaryReply.
type fakeGenerator struct {
	extractReply string
	extractErr   error
	summaryReply string
	summaryErr   error
	summaryInput string
	calls        int
}

func (g *fakeGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	g.calls++
	if system == extractionPrompt {
		return g.extractReply, g.extractErr
	}
	g.summaryInput = user
	return g.summaryReply, g.summaryErr
}

func newTestHandler(t *testing.T, wiki *fakeWiki, gen *fakeGenerator) *Handler {
	return NewHandler(&Config{Timeout: time.Second}, wiki, gen, &TestLogger{t: t})
}

// ===== FromList =====

func TestFromList_SingleString(t *testing.T) {
	wiki := &fakeWiki{}
	h := newTestHandler(t, wiki, &fakeGenerator{})

	out := h.FromList(context.Background(), "Pune")

	assert.Equal(t, []string{"Pune"}, out.Destinations)
	require.Len(t, out.Summaries, 1)
	assert.Equal(t, "Pune", out.Summaries[0]["title"])
	assert.Equal(t, []string{"Pune"}, wiki.titles)
}

func TestFromList_CleansAndKeepsOrder(t *testing.T) {
	wiki := &fakeWiki{}
	h := newTestHandler(t, wiki, &fakeGenerator{})

	out := h.FromList(context.Background(), []interface{}{" Goa ", "", nil, "   ", 42.0, "Pune"})

	assert.Equal(t, []string{"Goa", "42", "Pune"}, out.Destinations)
	assert.Equal(t, []string{"Goa", "42", "Pune"}, wiki.titles)
	assert.Len(t, out.Summaries, 3)
}

func TestFromList_FailedLookupStaysInPlace(t *testing.T) {
	wiki := &fakeWiki{failOn: map[string]bool{"Atlantis": true}}
	h := newTestHandler(t, wiki, &fakeGenerator{})

	out := h.FromList(context.Background(), []string{"Pune", "Atlantis", "Goa"})

	require.Len(t, out.Summaries, 3)
	assert.NotContains(t, out.Summaries[0], "error")
	assert.Equal(t, "HTTP 404 from Wikipedia", out.Summaries[1]["error"])
	assert.NotContains(t, out.Summaries[2], "error")
}

func TestFromList_RejectsOtherShapes(t *testing.T) {
	for _, in := range []interface{}{42.0, map[string]interface{}{"city": "Pune"}, true} {
		wiki := &fakeWiki{}
		h := newTestHandler(t, wiki, &fakeGenerator{})

		out := h.FromList(context.Background(), in)

		assert.Equal(t, map[string]interface{}{"error": "destinations must be a string or a list of strings"}, out.ToMap())
		assert.Empty(t, wiki.titles)
	}
}

// ===== ExtractDestinations =====

func TestExtractDestinations_PlainJSON(t *testing.T) {
	h := newTestHandler(t, &fakeWiki{}, &fakeGenerator{extractReply: `{"destinations": ["Tokyo", " Kyoto "]}`})

	got, err := h.ExtractDestinations(context.Background(), "a week in Japan")

	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Tokyo", "Kyoto"}, got["destinations"])
	assert.Equal(t, map[string]interface{}{"destinations": []interface{}{"Tokyo", " Kyoto "}}, got["raw"])
}

func TestExtractDestinations_JSONInsideProse(t *testing.T) {
	reply := "Sure! Here you go:\n```\n{\"destinations\": [\"Bali\"]}\n```\nEnjoy."
	h := newTestHandler(t, &fakeWiki{}, &fakeGenerator{extractReply: reply})

	got, err := h.ExtractDestinations(context.Background(), "beach trip")

	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Bali"}, got["destinations"])
}

func TestExtractDestinations_Unparseable(t *testing.T) {
	h := newTestHandler(t, &fakeWiki{}, &fakeGenerator{extractReply: "I could not tell where you want to go."})

	got, err := h.ExtractDestinations(context.Background(), "somewhere nice")

	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"destinations": []interface{}{},
		"raw":          "I could not tell where you want to go.",
	}, got)
}

func TestExtractDestinations_NonListDestinations(t *testing.T) {
	h := newTestHandler(t, &fakeWiki{}, &fakeGenerator{extractReply: `{"destinations": "Paris"}`})

	got, err := h.ExtractDestinations(context.Background(), "Paris")

	require.NoError(t, err)
	assert.Equal(t, []interface{}{}, got["destinations"])
}

func TestExtractDestinations_GeneratorFailure(t *testing.T) {
	h := newTestHandler(t, &fakeWiki{}, &fakeGenerator{extractErr: errors.New("rate limited")})

	got, err := h.ExtractDestinations(context.Background(), "Goa")

	assert.Nil(t, got)
	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeLLMRequestFailed, stdErr.Code)
	assert.Contains(t, err.Error(), "rate limited")
}

// ===== TravelSummary =====

func TestTravelSummary_SendsInfoAsJSON(t *testing.T) {
	gen := &fakeGenerator{summaryReply: "## Pune\nGreat food."}
	h := newTestHandler(t, &fakeWiki{}, gen)

	got := h.TravelSummary(context.Background(), map[string]interface{}{"wiki": map[string]interface{}{"destinations": []interface{}{"Pune"}}})

	assert.Equal(t, "## Pune\nGreat food.", got)
	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(gen.summaryInput), &sent))
	assert.Contains(t, sent, "wiki")
}

func TestTravelSummary_FailureBecomesText(t *testing.T) {
	h := newTestHandler(t, &fakeWiki{}, &fakeGenerator{summaryErr: errors.New("quota exceeded")})

	got := h.TravelSummary(context.Background(), nil)

	assert.True(t, strings.HasPrefix(got, "Could not summarize Wikipedia info: "))
	assert.Contains(t, got, "quota exceeded")
}

// ===== FromPrompt =====

func TestFromPrompt_FullFlow(t *testing.T) {
	wiki := &fakeWiki{}
	gen := &fakeGenerator{
		extractReply: `{"destinations": ["Singapore", "Bali"]}`,
		summaryReply: "Two great stops.",
	}
	h := newTestHandler(t, wiki, gen)

	out, err := h.FromPrompt(context.Background(), "Mumbai to Singapore then Bali")

	require.NoError(t, err)
	assert.Equal(t, []string{"Singapore", "Bali"}, out.Destinations)
	assert.Len(t, out.Summaries, 2)
	require.NotNil(t, out.TravelSummary)
	assert.Equal(t, "Two great stops.", *out.TravelSummary)
	assert.Equal(t, []interface{}{"Singapore", "Bali"}, out.Extraction["destinations"])

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(gen.summaryInput), &sent))
	assert.Contains(t, sent, "extraction")
	assert.Contains(t, sent, "wiki")
}

func TestFromPrompt_NoDestinations(t *testing.T) {
	wiki := &fakeWiki{}
	gen := &fakeGenerator{extractReply: `{"destinations": []}`}
	h := newTestHandler(t, wiki, gen)

	out, err := h.FromPrompt(context.Background(), "hello")

	require.NoError(t, err)
	got := out.ToMap()
	assert.Equal(t, []interface{}{}, got["destinations"])
	assert.Equal(t, []interface{}{}, got["summaries"])
	assert.Equal(t, "", got["travel_summary"])
	assert.Contains(t, got, "extraction")
	assert.Empty(t, wiki.titles)
	assert.Equal(t, 1, gen.calls)
}

// ===== Execute =====

func TestExecute_Routing(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		wantTitle []string
		wantLLM   bool
	}{
		{name: "destinations list", input: &Input{Destinations: []interface{}{"Goa"}}, wantTitle: []string{"Goa"}},
		{name: "titles alias", input: &Input{Titles: "Pune"}, wantTitle: []string{"Pune"}},
		{name: "empty destinations fall back to titles", input: &Input{Destinations: []interface{}{}, Titles: []interface{}{"Ooty"}}, wantTitle: []string{"Ooty"}},
		{name: "prompt inference", input: &Input{Prompt: "trip to Kochi"}, wantTitle: []string{"Kochi"}, wantLLM: true},
		{name: "query alias", input: &Input{Query: "trip to Kochi"}, wantTitle: []string{"Kochi"}, wantLLM: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wiki := &fakeWiki{}
			gen := &fakeGenerator{extractReply: `{"destinations":["Kochi"]}`, summaryReply: "ok"}
			h := newTestHandler(t, wiki, gen)

			out, err := h.Execute(context.Background(), tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, wiki.titles)
			assert.Equal(t, tt.wantLLM, gen.calls > 0)
			assert.Empty(t, out.Error)
		})
	}
}

// ===== DecodeInput =====

func TestDecodeInput(t *testing.T) {
	input, err := DecodeInput(`{"prompt": null, "query": "Goa", "titles": ["Goa"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Goa", input.Query)
	assert.Equal(t, []interface{}{"Goa"}, input.Titles)

	_, err = DecodeInput(`{"prompt": 5}`)
	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeInvalidInvocation, stdErr.Code)

	_, err = DecodeInput(`not json`)
	assert.Error(t, err)
}

func TestOutput_MarshalJSON(t *testing.T) {
	summary := "short"
	data, err := json.Marshal(&Output{
		Destinations:  []string{"Goa"},
		Summaries:     []map[string]interface{}{{"title": "Goa"}},
		TravelSummary: &summary,
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"destinations":["Goa"],"summaries":[{"title":"Goa"}],"travel_summary":"short"}`, string(data))
}
