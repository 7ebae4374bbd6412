package classify

import (
	"fmt"
	"strings"

	"IncidentScanner/internal/domain"
)

const maxPromptContent = 6000

// BuildSystemPrompt renders the extraction instructions for the accepted incident types.
func BuildSystemPrompt(accepted []domain.IncidentType) string {
	if len(accepted) == 0 {
		accepted = domain.IncidentTypes
	}
	names := make([]string, 0, len(accepted))
	for _, t := range accepted {
		names = append(names, fmt.Sprintf("%q", string(t)))
	}
	all := make([]string, 0, len(domain.IncidentTypes))
	for _, t := range domain.IncidentTypes {
		all = append(all, fmt.Sprintf("%q", string(t)))
	}

	var b strings.Builder
	b.WriteString("You analyse Nigerian news articles and extract security incidents for a public dashboard.\n\n")
	b.WriteString("Report an article as a security incident ONLY when it describes a new violent event ")
	fmt.Fprintf(&b, "of one of these types: %s.\n\n", strings.Join(names, ", "))
	b.WriteString("Rules:\n")
	b.WriteString("- The event must involve at least one person killed, injured or kidnapped.\n")
	b.WriteString("- Rescues, releases, arrests, court cases, condemnations, reactions and analysis pieces are NOT incidents.\n")
	b.WriteString("- Reports that only follow up on an earlier attack (funerals, updated tolls, visits) set is_follow_up to true.\n")
	b.WriteString("- Use 0 when a count is not stated. Never guess numbers.\n")
	b.WriteString("- state is the Nigerian state name without the word \"State\", \"FCT\" for Abuja, or \"Unknown\".\n\n")
	b.WriteString("Answer with a single JSON object and nothing else:\n")
	b.WriteString("{\n")
	b.WriteString("  \"is_security_incident\": boolean,\n")
	b.WriteString("  \"is_follow_up\": boolean,\n")
	b.WriteString("  \"title\": \"short headline, max 80 characters\",\n")
	b.WriteString("  \"description\": \"neutral summary, max 200 characters\",\n")
	b.WriteString("  \"state\": \"state name\",\n")
	b.WriteString("  \"lga\": \"local government area or town, or Unknown\",\n")
	b.WriteString("  \"fatalities\": number,\n")
	b.WriteString("  \"injuries\": number,\n")
	b.WriteString("  \"kidnapped\": number,\n")
	fmt.Fprintf(&b, "  \"incident_type\": one of %s,\n", strings.Join(all, ", "))
	b.WriteString("  \"severity\": one of \"Low\", \"Medium\", \"High\", \"Critical\",\n")
	b.WriteString("  \"date\": \"YYYY-MM-DD of the event, or empty when unknown\"\n")
	b.WriteString("}\n")
	return b.String()
}

// BuildUserMessage formats an article for the model.
func BuildUserMessage(article domain.Article) string {
	content := article.Content
	if len(content) > maxPromptContent {
		content = truncate(content, maxPromptContent)
	}
	return fmt.Sprintf("Title: %s\n\nContent: %s\n\nURL: %s", article.Title, content, article.URL)
}
