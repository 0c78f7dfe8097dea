// Package prompt renders retrieved schemes, history, and profile into bounded
// prompts for the external generation service.
package prompt

import (
	"fmt"
	"strings"

	"github.com/margdarshak/schemeseek/internal/models"
)

// historyWindow is the number of most recent turns included in a prompt.
const historyWindow = 5

// SystemInstruction is the fixed instruction sent with every chat completion.
const SystemInstruction = `You are a helpful government schemes advisor chatbot for India. You help users find and understand government schemes they're eligible for.

Your role:
1. Answer questions about specific schemes
2. Help users understand eligibility criteria
3. Explain application processes
4. Compare different schemes
5. Provide clarifications on benefits and requirements

Always be friendly, clear, and helpful. Use the scheme information provided to give accurate answers.`

// NoMatchMessage is returned when no scheme matches a user's eligibility.
const NoMatchMessage = "Unfortunately, no schemes match your eligibility criteria. You can still ask me questions about government schemes!"

// FormatScheme renders one scheme as a context block. Only the eligibility
// lines that are actually constrained appear.
func FormatScheme(s *models.SchemeProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scheme: %s\n", s.Name)
	fmt.Fprintf(&b, "Category: %s\n", s.Category)
	fmt.Fprintf(&b, "Level: %s\n", s.Level)
	fmt.Fprintf(&b, "State: %s\n", s.State)
	fmt.Fprintf(&b, "Benefits: %s\n", s.Benefits.Description)
	if s.Benefits.Amount != nil {
		fmt.Fprintf(&b, "Amount: ₹%s\n", formatAmount(*s.Benefits.Amount))
	}
	fmt.Fprintf(&b, "Details: %s\n", s.Details)
	if s.ApplicationProcess != "" {
		fmt.Fprintf(&b, "How to Apply: %s\n", s.ApplicationProcess)
	}

	e := &s.Eligibility
	b.WriteString("\nEligibility:\n")
	if e.MinAge != nil || e.MaxAge != nil {
		var parts []string
		if e.MinAge != nil {
			parts = append(parts, fmt.Sprintf("Min age: %d", *e.MinAge))
		}
		if e.MaxAge != nil {
			parts = append(parts, fmt.Sprintf("Max age: %d", *e.MaxAge))
		}
		fmt.Fprintf(&b, "- Age: %s\n", strings.Join(parts, ", "))
	}
	if e.Gender != "any" {
		fmt.Fprintf(&b, "- Gender: %s\n", e.Gender)
	}
	if e.MaxFamilyIncome != nil {
		fmt.Fprintf(&b, "- Max income: ₹%s\n", formatAmount(*e.MaxFamilyIncome))
	}
	if !e.CasteUnconstrained() {
		fmt.Fprintf(&b, "- Caste: %s\n", strings.Join(e.Caste, ", "))
	}
	if !e.OccupationUnconstrained() {
		fmt.Fprintf(&b, "- Occupation: %s\n", strings.Join(e.Occupation, ", "))
	}
	if e.Residence != "any" {
		fmt.Fprintf(&b, "- Residence: %s\n", e.Residence)
	}
	if e.StateSpecific != nil {
		fmt.Fprintf(&b, "- State: %s\n", *e.StateSpecific)
	}
	return b.String()
}

// ProfileSummary renders the user profile for the prompt, or a fixed marker
// when none has been supplied yet.
func ProfileSummary(p *models.UserProfile) string {
	if p == nil {
		return "Not provided yet"
	}
	return fmt.Sprintf("Age: %d, Gender: %s, Income: ₹%s, Occupation: %s, State: %s",
		p.Age, p.Gender, formatAmount(p.FamilyIncome), p.Occupation, p.State)
}

// BuildChatPrompt assembles the user prompt: retrieved schemes, the last few
// history turns, the profile summary, and the current question.
func BuildChatPrompt(schemes []*models.SchemeProfile, history []models.HistoryTurn, profile *models.UserProfile, question string) string {
	blocks := make([]string, len(schemes))
	for i, s := range schemes {
		blocks[i] = FormatScheme(s)
	}

	var historyText strings.Builder
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, turn := range history {
		fmt.Fprintf(&historyText, "User: %s\nAssistant: %s\n", turn.UserMessage, turn.AssistantResponse)
	}
	historySection := historyText.String()
	if historySection == "" {
		historySection = "This is the start of the conversation"
	}

	return fmt.Sprintf(`Based on the following relevant government schemes and user query, provide a helpful response.

User Profile:
%s

Conversation History:
%s

Relevant Schemes:
%s

User Question: %s

Provide a conversational, helpful response. If recommending schemes, format them nicely with markdown. If the user asks about application process, eligibility, or specific details, provide that information from the schemes data above.`,
		ProfileSummary(profile), historySection, strings.Join(blocks, "\n\n"), question)
}

// RenderRecommendationReport renders the markdown summary returned by the
// recommendation endpoint.
func RenderRecommendationReport(eligibleCount int, top []*models.SchemeProfile) string {
	var b strings.Builder
	b.WriteString("# Your Personalized Government Schemes\n\n")
	fmt.Fprintf(&b, "Based on your profile, I found **%d schemes** you're eligible for. Here are the top recommendations:\n\n---\n\n", eligibleCount)

	for i, s := range top {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, s.Name)
		fmt.Fprintf(&b, "**Category:** %s | **Level:** %s\n\n", titleWords(s.Category), titleWords(s.Level))
		if s.Benefits.Description != "" {
			fmt.Fprintf(&b, "**Benefits:** %s\n\n", s.Benefits.Description)
		}
		if s.Benefits.Amount != nil {
			fmt.Fprintf(&b, "**Amount:** ₹%s\n\n", formatAmount(*s.Benefits.Amount))
		}
		b.WriteString("---\n\n")
	}

	b.WriteString("\n**Have questions?** Feel free to ask me about:\n")
	b.WriteString("- Specific scheme details\n")
	b.WriteString("- How to apply\n")
	b.WriteString("- Eligibility criteria\n")
	b.WriteString("- Document requirements\n")
	b.WriteString("- Comparison between schemes\n")
	return b.String()
}

// formatAmount groups digits with commas (plain thousands grouping).
func formatAmount(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		return "-" + out
	}
	return out
}

// titleWords replaces underscores and capitalizes each word, for display of
// category and level labels.
func titleWords(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
