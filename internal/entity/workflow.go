package entity

import "time"

// MessageRole labels who produced a workflow message.
type MessageRole string

const (
	RoleUser       MessageRole = "user"
	RoleSupervisor MessageRole = "supervisor"
	RoleTeam       MessageRole = "team"
)

// Message is one entry in a workflow's conversation history.
type Message struct {
	Role    MessageRole `json:"role"`
	Name    string      `json:"name,omitempty"`
	Content string      `json:"content"`
}

// SectionContent is one team's drafted contribution.
type SectionContent struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Fallback bool   `json:"fallback"`
}

// TeamResponse is a collected team contribution, including error-content
// payloads for teams whose generation failed.
type TeamResponse struct {
	Team      Team      `json:"team"`
	Content   string    `json:"content"`
	Fallback  bool      `json:"fallback"`
	Failed    bool      `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkflowState tracks one proposal generation run. It is created at workflow
// start and mutated incrementally as each team returns; it becomes terminal
// once every team in the fixed set has completed.
type WorkflowState struct {
	Requirement       string                `json:"requirement"`
	Messages          []Message             `json:"messages"`
	TeamSequence      []Team                `json:"team_sequence"`
	TeamsCompleted    map[Team]bool         `json:"teams_completed"`
	TeamResponses     map[Team]TeamResponse `json:"team_responses"`
	ProposalGenerated bool                  `json:"proposal_generated"`
	StartedAt         time.Time             `json:"started_at"`
}

// NewWorkflowState creates the initial state for a requirement.
func NewWorkflowState(requirement string) *WorkflowState {
	return &WorkflowState{
		Requirement:    requirement,
		Messages:       []Message{{Role: RoleUser, Content: requirement}},
		TeamsCompleted: make(map[Team]bool),
		TeamResponses:  make(map[Team]TeamResponse),
		StartedAt:      time.Now().UTC(),
	}
}

// Planned reports whether a team sequence has been proposed yet.
func (s *WorkflowState) Planned() bool {
	return len(s.TeamSequence) > 0
}

// AllTeamsDone reports whether every team in the fixed set has completed.
func (s *WorkflowState) AllTeamsDone() bool {
	for _, team := range TeamPrecedence() {
		if !s.TeamsCompleted[team] {
			return false
		}
	}
	return true
}

// RemainingTeams returns the not-yet-completed teams in fixed precedence
// order.
func (s *WorkflowState) RemainingTeams() []Team {
	var remaining []Team
	for _, team := range TeamPrecedence() {
		if !s.TeamsCompleted[team] {
			remaining = append(remaining, team)
		}
	}
	return remaining
}

// Collect records one team's response and marks the team completed.
func (s *WorkflowState) Collect(resp TeamResponse) {
	s.TeamResponses[resp.Team] = resp
	s.TeamsCompleted[resp.Team] = true
}
