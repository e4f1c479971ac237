// Package extract turns cleaned page text into a prompt, and the model's
// reply into schema-complete fields.
package extract

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// DateLayout is the ISO-8601 calendar date layout used throughout.
const DateLayout = "2006-01-02"

const instructionTemplate = `You are given the text of a web page describing an academic summer or winter school.
Extract the following fields and answer with exactly one JSON object:

- "venue": where the school is held (institution, city, country), or null.
- "start_date": first day of the school as YYYY-MM-DD, or null.
- "end_date": last day of the school as YYYY-MM-DD, or null.
- "application_deadline": the application or registration deadline as YYYY-MM-DD, or null.
- "registration_status": "open" or "closed", or null if it cannot be determined.
- "description": a list of at most 3 short sentences describing the school.

Today is %s. Decide "registration_status" by comparing "application_deadline" with today:
"open" if the deadline is today or later, "closed" if it has passed.
Explicit statements on the page such as "applications are open" or "registration closed"
take precedence over the date comparison.

Use null for anything the page does not state. Do not guess.
Answer with the JSON object only: no explanation, no markdown, no code fences.

Example:
Page: "The Lisbon Machine Learning School (LxMLS) takes place at Instituto Superior Técnico, Lisbon, Portugal, from July 16 to July 23, 2025. Applications are open until March 31, 2025. The school covers machine learning and NLP through lectures and labs."
Answer:
{"venue": "Instituto Superior Técnico, Lisbon, Portugal", "start_date": "2025-07-16", "end_date": "2025-07-23", "application_deadline": "2025-03-31", "registration_status": "open", "description": ["LxMLS is a summer school on machine learning.", "It covers machine learning and natural language processing.", "Teaching combines lectures and lab sessions."]}

Page:
"%s"

Answer:`

// PromptBuilder renders the extraction prompt.
type PromptBuilder struct {
	// MaxContentChars truncates the page text to this many runes. Zero
	// means no limit.
	MaxContentChars int
}

// Build renders the prompt for one page. It is deterministic for a given
// text and date.
func (b PromptBuilder) Build(text string, today time.Time) string {
	return fmt.Sprintf(instructionTemplate, today.Format(DateLayout), Truncate(text, b.MaxContentChars))
}

// BuildPrompt renders the prompt without truncation.
func BuildPrompt(text string, today time.Time) string {
	return PromptBuilder{}.Build(text, today)
}

// Truncate shortens s to at most n runes. n <= 0 returns s unchanged.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
