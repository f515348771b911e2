package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yswa-var/rfp-bid/internal/config"
	"github.com/yswa-var/rfp-bid/internal/entity"
	"github.com/yswa-var/rfp-bid/internal/teams"
)

// Agent drafts one team's section. Satisfied by *teams.Agent.
type Agent interface {
	Team() entity.Team
	Draft(ctx context.Context, requirement string) entity.TeamResponse
}

// Supervisor runs the proposal workflow: plan a team sequence, fan drafting
// out across a bounded worker pool, collect every response, and compose the
// final proposal exactly once.
type Supervisor struct {
	planner *Planner
	agents  map[entity.Team]Agent
	cfg     config.OrchestratorConfig
}

func NewSupervisor(planner *Planner, agents []Agent, cfg config.OrchestratorConfig) *Supervisor {
	byTeam := make(map[entity.Team]Agent, len(agents))
	for _, a := range agents {
		byTeam[a.Team()] = a
	}
	return &Supervisor{
		planner: planner,
		agents:  byTeam,
		cfg:     cfg,
	}
}

// Run executes the full workflow for a requirement and returns the terminal
// state. Individual team failures become error-content responses; Run itself
// fails only on context cancellation.
func (s *Supervisor) Run(ctx context.Context, requirement string) (*entity.WorkflowState, error) {
	state := entity.NewWorkflowState(requirement)

	state.TeamSequence = s.planner.Plan(ctx, requirement)
	state.Messages = append(state.Messages, entity.Message{
		Role:    entity.RoleSupervisor,
		Content: fmt.Sprintf("planned team sequence: %v", state.TeamSequence),
	})

	ctxzap.Info(ctx, "workflow planned",
		zap.Int("teams", len(state.TeamSequence)))

	responses := make(chan entity.TeamResponse, len(state.TeamSequence))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.DraftWorkers)
	for _, team := range state.TeamSequence {
		g.Go(func() error {
			responses <- s.draftWithTimeout(gctx, team, requirement)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(responses)

	// Fan in through the channel; the state map is only touched here.
	for resp := range responses {
		state.Collect(resp)
		state.Messages = append(state.Messages, entity.Message{
			Role:    entity.RoleTeam,
			Name:    string(resp.Team),
			Content: resp.Content,
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return state, nil
}

// draftWithTimeout runs one team's draft under the per-section deadline. A
// missing agent, timeout or panic becomes an error-content response so the
// workflow still terminates with the full team set collected.
func (s *Supervisor) draftWithTimeout(ctx context.Context, team entity.Team, requirement string) entity.TeamResponse {
	agent, ok := s.agents[team]
	if !ok {
		return errorResponse(team, "no agent registered for team")
	}

	draftCtx, cancel := context.WithTimeout(ctx, s.cfg.SectionTimeout)
	defer cancel()

	done := make(chan entity.TeamResponse, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ctxzap.Error(ctx, "team draft panicked",
					zap.String("team", string(team)),
					zap.Any("panic", r))
				done <- errorResponse(team, fmt.Sprintf("internal error: %v", r))
			}
		}()
		done <- agent.Draft(draftCtx, requirement)
	}()

	select {
	case resp := <-done:
		return resp
	case <-draftCtx.Done():
		ctxzap.Warn(ctx, "team draft timed out",
			zap.String("team", string(team)),
			zap.Duration("timeout", s.cfg.SectionTimeout))
		return errorResponse(team, fmt.Sprintf("section drafting timed out after %s", s.cfg.SectionTimeout))
	}
}

func errorResponse(team entity.Team, message string) entity.TeamResponse {
	return entity.TeamResponse{
		Team:      team,
		Content:   fmt.Sprintf("%s\n\n%s", teams.FallbackContent(team), "_Note: "+message+"_"),
		Fallback:  true,
		Failed:    true,
		Timestamp: time.Now().UTC(),
	}
}

// ComposeFinal assembles the collected responses into a proposal, exactly
// once per workflow. Sections follow the planned sequence order.
func (s *Supervisor) ComposeFinal(ctx context.Context, state *entity.WorkflowState) (*entity.Proposal, error) {
	if state.ProposalGenerated {
		return nil, entity.ErrWorkflowFinalized
	}
	if !state.AllTeamsDone() {
		return nil, fmt.Errorf("cannot compose final proposal: teams remaining %v", state.RemainingTeams())
	}

	proposal := &entity.Proposal{
		Title:       "RFP Response Proposal",
		GeneratedAt: time.Now().UTC(),
		Teams:       state.TeamSequence,
	}
	for _, team := range state.TeamSequence {
		resp := state.TeamResponses[team]
		proposal.Sections = append(proposal.Sections, entity.SectionContent{
			Title:    team.SectionTitle(),
			Body:     resp.Content,
			Fallback: resp.Fallback,
		})
	}

	state.ProposalGenerated = true

	ctxzap.Info(ctx, "final proposal composed",
		zap.Int("sections", len(proposal.Sections)),
		zap.Duration("workflow_duration", time.Since(state.StartedAt)))
	return proposal, nil
}
