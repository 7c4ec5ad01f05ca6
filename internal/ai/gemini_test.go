package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nimbusdrive/nimbus/internal/model"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"summary":"x"}`, `{"summary":"x"}`},
		{"```json\n{\"summary\":\"x\"}\n```", `{"summary":"x"}`},
		{"```\n{\"summary\":\"x\"}\n```", `{"summary":"x"}`},
		{"  {\"summary\":\"x\"}  ", `{"summary":"x"}`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, stripFences(tc.in))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Len(t, truncate(strings.Repeat("x", analyzeContentCap+500), analyzeContentCap), analyzeContentCap)

	// Cutting mid-rune must not produce invalid UTF-8.
	cut := truncate("héllo", 2)
	assert.True(t, strings.HasPrefix("héllo", cut) || cut == "h")
	for _, r := range cut {
		assert.NotEqual(t, '�', r)
	}
}

func TestAnalyzeUnsupportedKindSkipsRemoteCall(t *testing.T) {
	// A nil client would panic if a remote call were attempted.
	g := &Gemini{}

	result := g.Analyze(context.Background(), &model.File{Kind: model.KindPdf, Name: "r.pdf"}, nil)
	assert.Equal(t, unsupportedSummary, result.Summary)
	assert.Empty(t, result.Tags)

	// An image upload whose bytes could not be read back degrades the same way.
	result = g.Analyze(context.Background(), &model.File{Kind: model.KindImage, Name: "p.png"}, nil)
	assert.Equal(t, unsupportedSummary, result.Summary)

	// A text file with no extracted content has nothing to summarize.
	result = g.Analyze(context.Background(), &model.File{Kind: model.KindText, Name: "empty.txt"}, nil)
	assert.Equal(t, unsupportedSummary, result.Summary)
}

func TestDisabledService(t *testing.T) {
	var svc Service = Disabled{}

	result := svc.Analyze(context.Background(), &model.File{Kind: model.KindText}, nil)
	assert.Equal(t, failedSummary, result.Summary)

	_, err := svc.Chat(context.Background(), &model.File{}, nil, "hello")
	assert.ErrorIs(t, err, ErrDisabled)
}
