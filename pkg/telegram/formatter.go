package telegram

import "fmt"

var docTypeLabels = map[string]string{
	"business_case":   "Business Case",
	"business_impact": "Business Impact Proposal",
	"action_plan":     "Mutual Action Plan",
	"meeting_brief":   "Meeting Brief",
}

// FormatDocumentReady builds the notification sent when a document
// generation finishes.
func FormatDocumentReady(docType, opportunityName string) string {
	label, ok := docTypeLabels[docType]
	if !ok {
		label = docType
	}
	return fmt.Sprintf("📄 *%s* is ready for *%s*", label, opportunityName)
}

// FormatDocumentFailed builds the notification sent when a document
// generation fails so the owner can retry from the UI.
func FormatDocumentFailed(docType, opportunityName, reason string) string {
	label, ok := docTypeLabels[docType]
	if !ok {
		label = docType
	}
	return fmt.Sprintf("⚠️ *%s* generation failed for *%s*\n%s", label, opportunityName, reason)
}
