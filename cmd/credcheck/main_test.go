package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/transport/watson"
)

type stubGenerator struct {
	model        string
	works        map[string]bool
	unauthorized bool
	probed       *[]string
}

func (s stubGenerator) Generate(_ context.Context, _ domain.Prompt) (domain.Generation, error) {
	*s.probed = append(*s.probed, s.model)
	if s.works[s.model] {
		return domain.Generation{Text: "hello", OutputTokens: 3}, nil
	}
	if s.unauthorized {
		return domain.Generation{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed,
			&watson.APIError{Op: "Generate", StatusCode: 401, Message: "invalid token"})
	}
	return domain.Generation{}, errors.New("model not available")
}

func TestFirstWorking(t *testing.T) {
	models := []string{"ibm/granite-3-8b-instruct", "ibm/granite-3-2b-instruct", "ibm/granite-13b-chat-v2"}

	tests := []struct {
		name         string
		works        map[string]bool
		unauthorized bool
		wantModel    string
		wantOK       bool
		wantProbed   int
	}{
		{"first works", map[string]bool{models[0]: true, models[1]: true}, false, models[0], true, 1},
		{"fallback", map[string]bool{models[2]: true}, false, models[2], true, 3},
		{"none", map[string]bool{}, false, "", false, 3},
		{"rejected key stops early", map[string]bool{}, true, "", false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var probed []string
			forModel := func(m string) modelGenerator {
				return stubGenerator{model: m, works: tt.works, unauthorized: tt.unauthorized, probed: &probed}
			}
			model, ok := firstWorking(context.Background(), models, forModel, zap.NewNop())
			if model != tt.wantModel || ok != tt.wantOK {
				t.Errorf("got (%q, %v), want (%q, %v)", model, ok, tt.wantModel, tt.wantOK)
			}
			if len(probed) != tt.wantProbed {
				t.Errorf("probed %v", probed)
			}
		})
	}
}
