package teams

import (
	"fmt"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

// FallbackContent is the static section body used when a team's generation
// fails. It keeps the proposal structurally complete so a degraded run still
// produces a reviewable document.
func FallbackContent(team entity.Team) string {
	switch team {
	case entity.TeamTechnical:
		return `## Technical Architecture & Solution Design

Our solution follows a modular, standards-based architecture:

- Layered design separating presentation, application and data tiers
- Cloud-ready deployment with horizontal scaling
- API-first integration with existing client systems
- Security controls applied at every layer, including encryption in transit and at rest

A detailed architecture will be refined with client stakeholders during the discovery phase.`
	case entity.TeamFinance:
		return `## Pricing & Financial Analysis

Our commercial approach is transparent and milestone-based:

- Fixed-price discovery and design phases
- Time-and-materials implementation with a not-to-exceed ceiling
- Payment tied to accepted deliverables
- All assumptions and exclusions itemized in the cost schedule

A detailed cost breakdown will be provided once scope is confirmed.`
	case entity.TeamLegal:
		return `## Legal & Compliance

Our engagement terms follow industry-standard contracting practice:

- Compliance with all applicable laws and regulations named in the solicitation
- Mutual limitation of liability with standard carve-outs
- Client ownership of project deliverables and data
- Confidentiality and data protection obligations honored throughout and beyond the term

Final terms are subject to contract negotiation.`
	case entity.TeamQA:
		return `## Quality Assurance & Risk Management

Quality and risk are managed continuously across the engagement:

- Defined acceptance criteria agreed before each phase begins
- Layered testing: unit, integration, system and user acceptance
- A maintained risk register with owners and mitigation plans
- Regular quality gates with client sign-off

Service levels and escalation paths are documented in the project management plan.`
	default:
		return fmt.Sprintf("## %s\n\nContent for this section will be provided during proposal finalization.", team.SectionTitle())
	}
}
