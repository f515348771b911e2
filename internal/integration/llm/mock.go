package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

// MockConnector is a deterministic stand-in for the language-generation
// provider, used in local development and tests.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

// Generate returns canned output keyed off the prompt shape: planner prompts
// get the full team list, drafting prompts get a short section body.
func (m *MockConnector) Generate(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating text via LLM", zap.Int("prompt_length", len(prompt)))

	lower := strings.ToLower(prompt)
	if strings.Contains(lower, "comma-separated") || strings.Contains(lower, "which teams") {
		teams := make([]string, 0, 4)
		for _, t := range entity.TeamPrecedence() {
			teams = append(teams, string(t))
		}
		return strings.Join(teams, ", "), nil
	}

	var section string
	for _, t := range entity.TeamPrecedence() {
		if strings.Contains(lower, strings.ToLower(t.Specialization())) {
			section = t.SectionTitle()
			break
		}
	}
	if section == "" {
		section = "General Response"
	}

	result := fmt.Sprintf(`## %s (MOCK)

This section was produced by the mock generation provider. It restates the
requirement, outlines a standard delivery approach, and lists indicative
milestones and assumptions suitable for a draft response.

- Approach: phased delivery with discovery, implementation and stabilization
- Milestones: kickoff, interim review, final submission
- Assumptions: client provides timely access to stakeholders and systems`, section)

	ctxzap.Info(ctx, "[MOCK] text generated", zap.Int("result_length", len(result)))
	return result, nil
}
