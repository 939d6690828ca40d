package relevance

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/docqa/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

type mockCategorizer struct {
	score    float64
	err      error
	calls    int
	lastText string
}

func (m *mockCategorizer) TopCategoryScore(_ context.Context, text string) (float64, error) {
	m.calls++
	m.lastText = text
	return m.score, m.err
}

func TestScore_JoinsQueryAndPassage(t *testing.T) {
	cat := &mockCategorizer{score: 0.8}
	got := New(cat, nil).Score(context.Background(), "climate policy", "carbon tax rose")

	if cat.lastText != "climate policy carbon tax rose" {
		t.Errorf("categorizer text = %q", cat.lastText)
	}
	if got.Score != 0.8 || !got.Scored || got.Text != "carbon tax rose" {
		t.Errorf("got %+v", got)
	}
}

func TestScore_EmptyPassageSkipsCall(t *testing.T) {
	cat := &mockCategorizer{score: 0.9}
	got := New(cat, nil).Score(context.Background(), "q", "")

	if cat.calls != 0 {
		t.Errorf("expected no categorizer call, got %d", cat.calls)
	}
	if got.Score != 0 || !got.Scored {
		t.Errorf("got %+v", got)
	}
}

func TestScore_FailureYieldsZero(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cat := &mockCategorizer{err: errors.New("nlu down")}

	got := New(cat, zap.New(core)).Score(context.Background(), "q", "passage")

	if got.Score != 0 || got.Scored {
		t.Errorf("got %+v, want score 0 unscored", got)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one warn log, got %d", logs.Len())
	}
	if logs.All()[0].Message != "passage scoring failed, using 0" {
		t.Errorf("log message = %q", logs.All()[0].Message)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.2, 0},
		{0, 0},
		{0.55, 0.55},
		{1, 1},
		{1.7, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := clamp(tt.in); got != tt.want {
			t.Errorf("clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
