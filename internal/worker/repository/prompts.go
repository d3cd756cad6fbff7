package repository

import (
	"fmt"
	"strings"

	"golang-sales-insights/internal/worker/dto"
)

const transcriptParseSystemInstruction = `You are a sales analyst who extracts structured insights from B2B sales call transcripts. You only report what was actually said. Answer in JSON only.`

const roleClassifierSystemInstruction = `You classify job titles into buying roles. Answer with a single token only, no punctuation, no explanation.`

const riskAnalysisSystemInstruction = `You are a sales risk analyst. You assess deal risk strictly from transcript evidence. Answer in JSON only.`

const consolidationSystemInstruction = `You are a sales analyst who synthesizes insights across a sequence of calls on the same deal. Deduplicate, prefer the most recent information, and track how things changed over time. Answer in JSON only.`

const businessCaseSystemInstruction = `You are a value consultant writing an internal business case the champion can forward to their CFO. Use only figures present in the provided context. Where a required figure is missing, write [DATA NEEDED: description] instead of inventing one.`

const proposalSystemInstruction = `You are a value consultant writing a business impact proposal. Use only figures present in the provided context. Where a required figure is missing, write [DATA NEEDED: description] instead of inventing one.`

const actionPlanSystemInstruction = `You are a sales operations specialist building a mutual action plan. Answer in JSON only. Where an owner or date is unknowable from the context, write [DATA NEEDED: description] in the title rather than guessing.`

const meetingBriefSystemInstruction = `You are a sales assistant preparing a rep for their next meeting. Be concise and concrete. Where context is missing, write [DATA NEEDED: description] instead of inventing it.`

// BuildTranscriptParsePrompt builds the structured-extraction prompt for one
// call transcript.
func BuildTranscriptParsePrompt(transcript, organization string) string {
	orgNote := ""
	if organization != "" {
		orgNote = fmt.Sprintf("\nNote: %q is the selling organization. Do NOT include its employees in the people list.\n", organization)
	}

	return fmt.Sprintf(`Analyze the following sales call transcript and extract structured insights.
%s
Rules:
- Every person must have a non-empty "name". Use "Unknown" for organization or role when the transcript does not say.
- Quote metrics verbatim, including units and currency (e.g. "$2M/year", "45 days").
- "key_quotes" are verbatim quotes from the customer, not paraphrases.
- Do not invent anything that is not in the transcript.

Return JSON with exactly this structure:
{
  "pain_points": ["<string>"],
  "goals": ["<string>"],
  "people": [{"name": "<string>", "organization": "<string>", "role": "<string>"}],
  "next_steps": ["<string>"],
  "business_drivers": ["<string>"],
  "quantifiable_metrics": ["<string>"],
  "key_quotes": ["<string>"],
  "objections": ["<string>"],
  "competitor_mentions": [{"competitor": "<string>", "context": "<string>", "sentiment": "positive | negative | neutral"}],
  "decision_process": {"timeline": "<string or null>", "stakeholders": ["<string>"], "budget_context": "<string or null>", "approval_steps": ["<string>"]},
  "call_sentiment": {"overall": "positive | neutral | negative", "momentum": "accelerating | stable | stalling", "enthusiasm": "high | moderate | low"}
}

Transcript:
%s

Answer in JSON format only.
`, orgNote, transcript)
}

// BuildRoleClassifierPrompt asks for a single enum token for a free-text
// job title.
func BuildRoleClassifierPrompt(roleText string) string {
	return fmt.Sprintf(`Classify this job title or role description into exactly one buying role.

Role: %q

Allowed answers (answer with one token, nothing else):
decision_maker
influencer
champion
blocker
end_user
`, roleText)
}

// BuildRiskAnalysisPrompt builds the risk assessment prompt for one call
// transcript.
func BuildRiskAnalysisPrompt(transcript string) string {
	return fmt.Sprintf(`Assess the deal risk visible in the following sales call transcript.

Criteria:
- risk_level: "low", "medium", "high" or "critical"
- every factor category must be one of: budget, timeline, competition, technical, alignment, resistance
- every factor severity must be one of: low, medium, high
- "evidence" must quote or closely paraphrase the transcript

Return JSON with exactly this structure:
{
  "risk_level": "low | medium | high | critical",
  "risk_factors": [
    {"category": "budget | timeline | competition | technical | alignment | resistance", "severity": "low | medium | high", "description": "<string>", "evidence": "<string>"}
  ],
  "summary": "<string>"
}

Transcript:
%s

Answer in JSON format only.
`, transcript)
}

// BuildConsolidationPrompt serializes the per-call insights oldest-first and
// asks for one deduplicated synthesis. Records must already be sorted by
// meeting date ascending.
func BuildConsolidationPrompt(records []dto.CallInsightRecord) string {
	var calls strings.Builder
	for i, rec := range records {
		calls.WriteString(fmt.Sprintf("--- Call %d: %q (%s) ---\n", i+1, rec.Title, rec.MeetingAt.Format("2006-01-02")))
		writeList(&calls, "Pain points", rec.Insight.PainPoints)
		writeList(&calls, "Goals", rec.Insight.Goals)
		writeList(&calls, "Next steps", rec.Insight.NextSteps)
		writeList(&calls, "Business drivers", rec.Insight.BusinessDrivers)
		writeList(&calls, "Metrics", rec.Insight.QuantifiableMetrics)
		writeList(&calls, "Objections", rec.Insight.Objections)
		if len(rec.Insight.People) > 0 {
			calls.WriteString("People:\n")
			for _, p := range rec.Insight.People {
				calls.WriteString(fmt.Sprintf("  - %s (%s, %s)\n", p.Name, p.Organization, p.Role))
			}
		}
		for _, m := range rec.Insight.CompetitorMentions {
			calls.WriteString(fmt.Sprintf("Competitor: %s (%s) - %s\n", m.Competitor, m.Sentiment, m.Context))
		}
		calls.WriteString(fmt.Sprintf("Sentiment: overall=%s momentum=%s enthusiasm=%s\n\n",
			rec.Insight.CallSentiment.Overall, rec.Insight.CallSentiment.Momentum, rec.Insight.CallSentiment.Enthusiasm))
	}

	return fmt.Sprintf(`Below are the parsed insights from %d sales calls on the same deal, ordered from oldest to newest. Synthesize them into ONE consolidated view. Deduplicate repeated items, keep the most recent phrasing, and describe how risk and sentiment moved over time.

%s
Return JSON with exactly this structure:
{
  "pain_points": ["<string>"],
  "goals": ["<string>"],
  "people": [{"name": "<string>", "organization": "<string>", "role": "<string>"}],
  "next_steps": ["<string>"],
  "business_drivers": ["<string>"],
  "quantifiable_metrics": ["<string>"],
  "key_quotes": ["<string>"],
  "objections": ["<string>"],
  "competitor_mentions": [{"competitor": "<string>", "context": "<string>", "sentiment": "positive | negative | neutral"}],
  "decision_process": {"timeline": "<string or null>", "stakeholders": ["<string>"], "budget_context": "<string or null>", "approval_steps": ["<string>"]},
  "call_sentiment": {"overall": "positive | neutral | negative", "momentum": "accelerating | stable | stalling", "enthusiasm": "high | moderate | low"},
  "risk_assessment": {"risk_level": "low | medium | high | critical", "risk_factors": [{"category": "budget | timeline | competition | technical | alignment | resistance", "severity": "low | medium | high", "description": "<string>", "evidence": "<string>"}], "summary": "<string>"},
  "competition_summary": "<string>",
  "decision_process_summary": "<string>",
  "why_and_why_now": "<string>",
  "sentiment_trend": {"trajectory": "improving | stable | declining", "current_state": "<string>", "narrative": "<string>"}
}

Answer in JSON format only.
`, len(records), calls.String())
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(label + ":\n")
	for _, item := range items {
		b.WriteString("  - " + item + "\n")
	}
}

// renderOpportunityContext renders the persisted deal context into the
// deterministic text block every document generator shares.
func renderOpportunityContext(octx *dto.OpportunityContext) string {
	var b strings.Builder

	b.WriteString("### OPPORTUNITY\n")
	b.WriteString(fmt.Sprintf("Name: %s\nAccount: %s\nIndustry: %s\nStage: %s\nAmount: %.2f\n",
		octx.Opportunity.Name, octx.Account.Name, octx.Account.Industry, octx.Opportunity.Stage, octx.Opportunity.Amount))
	if octx.Opportunity.CloseDate != nil {
		b.WriteString(fmt.Sprintf("Target close date: %s\n", octx.Opportunity.CloseDate.Format("2006-01-02")))
	}

	if len(octx.Contacts) > 0 {
		b.WriteString("\n### CONTACTS\n")
		for _, c := range octx.Contacts {
			role := c.ClassifiedRole
			if role == "" {
				role = "unclassified"
			}
			b.WriteString(fmt.Sprintf("- %s, %s (%s)\n", c.Name, c.Title, role))
		}
	}

	if octx.Consolidated != nil {
		ci := octx.Consolidated
		b.WriteString("\n### CONSOLIDATED INSIGHTS\n")
		writeList(&b, "Pain points", ci.PainPoints)
		writeList(&b, "Goals", ci.Goals)
		writeList(&b, "Business drivers", ci.BusinessDrivers)
		writeList(&b, "Quantifiable metrics", ci.QuantifiableMetrics)
		writeList(&b, "Key quotes", ci.KeyQuotes)
		writeList(&b, "Objections", ci.Objections)
		writeList(&b, "Next steps", ci.NextSteps)
		if ci.WhyAndWhyNow != "" {
			b.WriteString("Why and why now: " + ci.WhyAndWhyNow + "\n")
		}
		if ci.CompetitionSummary != "" {
			b.WriteString("Competition: " + ci.CompetitionSummary + "\n")
		}
		if ci.DecisionProcessSummary != "" {
			b.WriteString("Decision process: " + ci.DecisionProcessSummary + "\n")
		}
		b.WriteString(fmt.Sprintf("Risk: %s - %s\n", ci.RiskAssessment.RiskLevel, ci.RiskAssessment.Summary))
		b.WriteString(fmt.Sprintf("Sentiment trend: %s (%s)\n", ci.SentimentTrend.Trajectory, ci.SentimentTrend.Narrative))
	} else {
		b.WriteString("\n### CONSOLIDATED INSIGHTS\nNone available yet.\n")
	}

	if len(octx.News) > 0 {
		b.WriteString("\n### RECENT ACCOUNT NEWS\n")
		for _, n := range octx.News {
			date := "n/a"
			if n.PublishedAt != nil {
				date = n.PublishedAt.Format("2006-01-02")
			}
			b.WriteString(fmt.Sprintf("- [%s] %s (%s)\n  %s\n", date, n.Title, n.Source, n.Summary))
		}
	}

	return b.String()
}

// BuildBusinessCasePrompt builds the business case prompt. The response is
// parsed by splitting on the literal section markers.
func BuildBusinessCasePrompt(octx *dto.OpportunityContext) string {
	return fmt.Sprintf(`Write an internal business case for the deal described below.

%s
Output format (use the markers EXACTLY as written):
%s
<the business case in markdown: executive summary, current state and cost of inaction, proposed solution, expected impact, risks>
%s
<one open question per line that must be answered to strengthen this business case>

Remember: never invent figures. Use [DATA NEEDED: description] for anything the context does not provide.
`, renderOpportunityContext(octx), dto.BusinessCaseStartMarker, dto.QuestionsStartMarker)
}

// BuildProposalPrompt builds the business impact proposal prompt.
func BuildProposalPrompt(octx *dto.OpportunityContext) string {
	return fmt.Sprintf(`Write a customer-facing business impact proposal for the deal described below. Structure it as: situation, impact of the problem, proposed approach, expected outcomes, next steps.

%s
Remember: never invent figures. Use [DATA NEEDED: description] for anything the context does not provide.
`, renderOpportunityContext(octx))
}

// BuildActionPlanPrompt builds the mutual action plan prompt.
func BuildActionPlanPrompt(octx *dto.OpportunityContext) string {
	return fmt.Sprintf(`Build a mutual action plan for the deal described below, working backwards from the target close date.

%s
Return JSON with exactly this structure:
{
  "items": [
    {"title": "<string>", "owner": "<person or team name>", "owner_side": "seller | buyer | joint", "due_date": "YYYY-MM-DD", "status": "pending | in_progress | completed"}
  ]
}

Rules:
- "due_date" must be a valid YYYY-MM-DD date.
- "owner_side" and "status" must use the listed values only.
- New items start as "pending".

Answer in JSON format only.
`, renderOpportunityContext(octx))
}

// BuildMeetingBriefPrompt builds the pre-meeting brief prompt.
func BuildMeetingBriefPrompt(octx *dto.OpportunityContext) string {
	return fmt.Sprintf(`Prepare a pre-meeting brief for the next call on the deal described below. Cover: where the deal stands, who will be in the room and what they care about, open risks and objections to get ahead of, recent account news worth mentioning, and the three outcomes to drive in this meeting.

%s`, renderOpportunityContext(octx))
}
