package llm

import (
	"fmt"
	"strings"

	"github.com/dgallion1/plainfin/internal/document"
)

// Prompt is one system/user message pair.
type Prompt struct {
	Kind   string // Short label used in logs and errors.
	System string
	User   string
}

// Personas.
const (
	TutorPersona = "You are a patient finance tutor. Explain concepts clearly, step by step, " +
		"with both the definition and the logic behind it."

	AnalystPersona = "You are a financial analyst who explains company filings in plain English " +
		"for readers without a finance background. Use Markdown headings and bullet points."
)

// AnswerMode selects how much outside knowledge a document answer may use.
type AnswerMode string

const (
	ModeDocumentOnly    AnswerMode = "Document Only"
	ModeDocumentOutside AnswerMode = "Document + Outside Knowledge"
)

// ParseAnswerMode accepts the two literal mode labels. Empty means
// ModeDocumentOnly.
func ParseAnswerMode(s string) (AnswerMode, error) {
	switch AnswerMode(strings.TrimSpace(s)) {
	case "", ModeDocumentOnly:
		return ModeDocumentOnly, nil
	case ModeDocumentOutside:
		return ModeDocumentOutside, nil
	default:
		return "", fmt.Errorf("unknown answer mode %q", s)
	}
}

// TutorPrompt answers a standalone finance question.
func TutorPrompt(question string) Prompt {
	return Prompt{Kind: "tutor", System: TutorPersona, User: question}
}

// SectionSummaryPrompt summarizes one chunk of a filing.
func SectionSummaryPrompt(docTitle string, index int, chunk string) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarize section %d of the financial document %q in plain English.\n", index+1, docTitle)
	sb.WriteString("Cover what happened, why it matters, and any numbers an investor should notice. ")
	sb.WriteString("Keep it under 200 words.\n\n---\n")
	sb.WriteString(chunk)
	return Prompt{Kind: "section_summary", System: AnalystPersona, User: sb.String()}
}

// ExecutiveSummaryPrompt condenses the section summaries into one overview.
// Sections keep their chunk numbering, so gaps show where a section failed.
func ExecutiveSummaryPrompt(docTitle string, summaries []document.SectionSummary) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write an executive summary of %q from these section summaries. ", docTitle)
	sb.WriteString("Lead with the overall picture, then the three most important takeaways, ")
	sb.WriteString("then any risks worth watching.\n")
	for _, s := range summaries {
		fmt.Fprintf(&sb, "\n### Section %d\n%s\n", s.Index+1, strings.TrimSpace(s.Text))
	}
	return Prompt{Kind: "executive_summary", System: AnalystPersona, User: sb.String()}
}

// KeyMetricsPrompt extracts headline figures from document text.
func KeyMetricsPrompt(docTitle, text string) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Extract the key financial metrics from %q. ", docTitle)
	sb.WriteString("Return a Markdown table with columns Metric, Value, Period and What it means. ")
	sb.WriteString("Include revenue, net income, margins, EPS, cash flow and debt when present. ")
	sb.WriteString("Do not invent figures that are not in the text.\n\n---\n")
	sb.WriteString(text)
	return Prompt{Kind: "key_metrics", System: AnalystPersona, User: sb.String()}
}

// JargonPrompt explains one finance term.
func JargonPrompt(term string) Prompt {
	user := fmt.Sprintf("Explain the finance term %q in simple language. "+
		"Give a one-sentence definition, an everyday analogy, and a short example with numbers.", term)
	return Prompt{Kind: "jargon", System: TutorPersona, User: user}
}

// DocumentQuestionPrompt answers a question about a filing in the given mode.
func DocumentQuestionPrompt(docTitle, text, question string, mode AnswerMode) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Answer the question about the financial document %q.\n", docTitle)
	if mode == ModeDocumentOutside {
		sb.WriteString("Use the document first. You may add general finance knowledge to explain context, ")
		sb.WriteString("but label anything that does not come from the document as outside knowledge.\n")
	} else {
		sb.WriteString("Use only the document below. If the answer is not in the document, ")
		sb.WriteString("say that the document does not say.\n")
	}
	sb.WriteString("\nDocument:\n---\n")
	sb.WriteString(text)
	sb.WriteString("\n---\n\nQuestion: ")
	sb.WriteString(question)
	return Prompt{Kind: "document_question", System: TutorPersona, User: sb.String()}
}
