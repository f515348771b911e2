package entity

import "fmt"

// Team is the closed set of proposal specializations. Using a dedicated type
// with a total-match dispatcher keeps typo-class routing bugs out of the
// supervisor.
type Team string

const (
	TeamTechnical Team = "technical"
	TeamFinance   Team = "finance"
	TeamLegal     Team = "legal"
	TeamQA        Team = "qa"
)

// TeamPrecedence is the fixed deterministic precedence used when several
// teams are eligible at once.
func TeamPrecedence() []Team {
	return []Team{TeamTechnical, TeamFinance, TeamLegal, TeamQA}
}

// ParseTeam validates a team name coming from an external source (e.g. a
// planner LLM response).
func ParseTeam(s string) (Team, error) {
	switch Team(s) {
	case TeamTechnical, TeamFinance, TeamLegal, TeamQA:
		return Team(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTeam, s)
	}
}

// Specialization returns the human-readable specialization label used in
// retrieval queries and generation prompts.
func (t Team) Specialization() string {
	switch t {
	case TeamTechnical:
		return "Technical Architecture & Solution Design"
	case TeamFinance:
		return "Pricing & Financial Analysis"
	case TeamLegal:
		return "Legal & Compliance"
	case TeamQA:
		return "Quality Assurance & Risk Management"
	default:
		return string(t)
	}
}

// SectionTitle returns the section heading the team contributes to the final
// proposal.
func (t Team) SectionTitle() string {
	return t.Specialization()
}

// DisplayName returns the team's presentation name.
func (t Team) DisplayName() string {
	switch t {
	case TeamTechnical:
		return "Technical Team"
	case TeamFinance:
		return "Finance Team"
	case TeamLegal:
		return "Legal Team"
	case TeamQA:
		return "QA Team"
	default:
		return string(t)
	}
}
