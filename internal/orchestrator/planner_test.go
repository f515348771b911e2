package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

type stubGenerator struct {
	result string
	err    error
}

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	return s.result, s.err
}

func TestPlannerFullValidResponse(t *testing.T) {
	p := NewPlanner(&stubGenerator{result: "legal, technical, qa, finance"}, false)

	sequence := p.Plan(context.Background(), "requirement")
	assert.Equal(t, []entity.Team{entity.TeamLegal, entity.TeamTechnical, entity.TeamQA, entity.TeamFinance}, sequence)
}

func TestPlannerDropsUnknownTeams(t *testing.T) {
	p := NewPlanner(&stubGenerator{result: "technical, marketing, finance"}, false)

	sequence := p.Plan(context.Background(), "requirement")
	assert.Equal(t, []entity.Team{
		entity.TeamTechnical, entity.TeamFinance,
		entity.TeamLegal, entity.TeamQA,
	}, sequence, "unknown names dropped, missing teams appended in precedence order")
}

func TestPlannerAppendsMissingTeams(t *testing.T) {
	p := NewPlanner(&stubGenerator{result: "qa"}, false)

	sequence := p.Plan(context.Background(), "requirement")
	assert.Equal(t, []entity.Team{
		entity.TeamQA,
		entity.TeamTechnical, entity.TeamFinance, entity.TeamLegal,
	}, sequence)
}

func TestPlannerDeduplicates(t *testing.T) {
	p := NewPlanner(&stubGenerator{result: "finance, finance, FINANCE"}, false)

	sequence := p.Plan(context.Background(), "requirement")
	assert.Len(t, sequence, 4)
	assert.Equal(t, entity.TeamFinance, sequence[0])
}

func TestPlannerFallsBackOnError(t *testing.T) {
	p := NewPlanner(&stubGenerator{err: errors.New("provider down")}, false)

	sequence := p.Plan(context.Background(), "requirement")
	assert.Equal(t, entity.TeamPrecedence(), sequence)
}

func TestPlannerFallsBackOnGarbage(t *testing.T) {
	p := NewPlanner(&stubGenerator{result: "I think all departments should weigh in!"}, false)

	sequence := p.Plan(context.Background(), "requirement")
	assert.Equal(t, entity.TeamPrecedence(), sequence)
}

func TestPlannerDisabled(t *testing.T) {
	p := NewPlanner(&stubGenerator{result: "legal"}, true)

	sequence := p.Plan(context.Background(), "requirement")
	assert.Equal(t, entity.TeamPrecedence(), sequence)
}
