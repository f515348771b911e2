package teams

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

const (
	// queryRequirementLimit bounds how much of the raw requirement feeds the
	// retrieval query; the specialization label carries the rest of the signal.
	queryRequirementLimit = 200

	// resultsPerContextGroup is how many hits from each store group make it
	// into the drafting prompt.
	resultsPerContextGroup = 2
)

// Generator produces text for a prompt. Satisfied by the LLM connector and
// its mock.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ContextRetriever assembles a retrieval context for a requirement.
// Satisfied by the retrieval coordinator.
type ContextRetriever interface {
	QueryAll(ctx context.Context, requirement string) (*entity.RetrievalContext, error)
}

// Agent drafts one specialization's section of a proposal. A failing
// generation degrades to static fallback content; the agent never returns an
// empty section.
type Agent struct {
	team      entity.Team
	llm       Generator
	retriever ContextRetriever
}

func NewAgent(team entity.Team, llm Generator, retriever ContextRetriever) *Agent {
	return &Agent{
		team:      team,
		llm:       llm,
		retriever: retriever,
	}
}

func (a *Agent) Team() entity.Team {
	return a.team
}

// Draft produces this team's section for the requirement. Retrieval and
// generation failures both degrade rather than fail: retrieval falls back to
// an empty context, generation to the specialization's static content.
func (a *Agent) Draft(ctx context.Context, requirement string) entity.TeamResponse {
	logger := ctxzap.Extract(ctx).With(zap.String("team", string(a.team)))

	rc, err := a.retriever.QueryAll(ctx, a.QueryContext(requirement))
	if err != nil {
		logger.Warn("retrieval failed, drafting without context", zap.Error(err))
		rc = &entity.RetrievalContext{}
	}

	prompt := a.composePrompt(requirement, rc)

	content, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("generation failed, using fallback content", zap.Error(err))
		return entity.TeamResponse{
			Team:      a.team,
			Content:   FallbackContent(a.team),
			Fallback:  true,
			Timestamp: time.Now().UTC(),
		}
	}

	logger.Debug("section drafted",
		zap.Int("content_length", len(content)),
		zap.Int("context_results", rc.TotalResults()))

	return entity.TeamResponse{
		Team:      a.team,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// QueryContext is the retrieval query for this team: the specialization
// label plus the head of the requirement.
func (a *Agent) QueryContext(requirement string) string {
	if len(requirement) > queryRequirementLimit {
		requirement = requirement[:queryRequirementLimit]
	}
	return a.team.Specialization() + " " + requirement
}

func (a *Agent) composePrompt(requirement string, rc *entity.RetrievalContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the %s, specializing in %s.\n\n", a.team.DisplayName(), a.team.Specialization())
	fmt.Fprintf(&b, "Draft the %q section of an RFP response for this requirement:\n%s\n\n", a.team.SectionTitle(), requirement)

	writeContextGroup(&b, "Relevant proposal templates", rc.TemplateContext)
	writeContextGroup(&b, "Similar past proposals", rc.ExamplesContext)
	writeContextGroup(&b, "Current RFP context", rc.SessionContext)

	b.WriteString("Focus areas:\n")
	for _, focus := range focusAreas(a.team) {
		fmt.Fprintf(&b, "- %s\n", focus)
	}
	b.WriteString("\nWrite a complete, professionally structured section in markdown.")

	return b.String()
}

func writeContextGroup(b *strings.Builder, title string, results []entity.RetrievalResult) {
	if len(results) == 0 {
		return
	}
	if len(results) > resultsPerContextGroup {
		results = results[:resultsPerContextGroup]
	}

	fmt.Fprintf(b, "%s:\n", title)
	for _, r := range results {
		fmt.Fprintf(b, "[%s p.%d, relevance %.0f%%] %s\n", r.SourceFile, r.Page, r.Relevance*100, r.Preview)
	}
	b.WriteString("\n")
}

func focusAreas(team entity.Team) []string {
	switch team {
	case entity.TeamTechnical:
		return []string{
			"solution architecture and technology stack",
			"implementation methodology and phasing",
			"integration and data migration approach",
			"security architecture",
		}
	case entity.TeamFinance:
		return []string{
			"cost breakdown and pricing model",
			"payment schedule and milestones",
			"budget assumptions and contingencies",
			"total cost of ownership",
		}
	case entity.TeamLegal:
		return []string{
			"contractual terms and conditions",
			"regulatory and compliance obligations",
			"liability, indemnification and IP ownership",
			"data protection commitments",
		}
	case entity.TeamQA:
		return []string{
			"quality assurance methodology",
			"testing strategy and acceptance criteria",
			"risk identification and mitigation",
			"service level objectives",
		}
	default:
		return nil
	}
}
