package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/entity"
	"github.com/yswa-var/rfp-bid/internal/teams"
)

const plannerPromptTemplate = `You are coordinating an RFP response. Which teams should contribute to a proposal for the following requirement?

Requirement:
%s

Available teams: technical, finance, legal, qa.
Answer with a comma-separated list of team names only.`

// Planner turns a requirement into a team sequence. The sequence always ends
// up covering the full fixed team set: the planner's output orders the front
// of the sequence, validation drops unknown names, and any teams the planner
// omitted are appended in precedence order.
type Planner struct {
	llm      teams.Generator
	disabled bool
}

func NewPlanner(llm teams.Generator, disabled bool) *Planner {
	return &Planner{llm: llm, disabled: disabled}
}

// Plan returns the team sequence for a requirement. Planner failures and
// unparseable responses fall back to the fixed precedence.
func (p *Planner) Plan(ctx context.Context, requirement string) []entity.Team {
	if p.disabled {
		return entity.TeamPrecedence()
	}

	raw, err := p.llm.Generate(ctx, fmt.Sprintf(plannerPromptTemplate, requirement))
	if err != nil {
		ctxzap.Warn(ctx, "planner generation failed, using default sequence", zap.Error(err))
		return entity.TeamPrecedence()
	}

	sequence := parseTeamList(ctx, raw)
	return completeSequence(sequence)
}

// parseTeamList extracts valid, deduplicated team names from a
// comma-separated planner response.
func parseTeamList(ctx context.Context, raw string) []entity.Team {
	var (
		sequence []entity.Team
		seen     = make(map[entity.Team]bool)
	)
	for _, token := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(token))
		if name == "" {
			continue
		}
		team, err := entity.ParseTeam(name)
		if err != nil {
			ctxzap.Warn(ctx, "planner proposed unknown team, dropping it",
				zap.String("team", name))
			continue
		}
		if seen[team] {
			continue
		}
		seen[team] = true
		sequence = append(sequence, team)
	}
	return sequence
}

// completeSequence appends any missing teams in precedence order so the
// final sequence always covers the full set.
func completeSequence(sequence []entity.Team) []entity.Team {
	present := make(map[entity.Team]bool, len(sequence))
	for _, team := range sequence {
		present[team] = true
	}
	for _, team := range entity.TeamPrecedence() {
		if !present[team] {
			sequence = append(sequence, team)
		}
	}
	return sequence
}
