package prompt

import (
	"fmt"
	"strings"

	"swiftvisa/backend/internal/retrieval"
)

// Applicant carries the structured context the screening form collects
// alongside the free-text question.
type Applicant struct {
	Name              string `json:"name,omitempty"`
	Age               int    `json:"age,omitempty"`
	Nationality       string `json:"nationality,omitempty"`
	Purpose           string `json:"purpose,omitempty"`
	PreviousRejection string `json:"previous_rejection,omitempty"`
}

// Compose renders the schema-constrained instruction for the generation
// service. It is a pure function of its inputs: the same question and
// retrieval result always yield byte-identical prompts.
//
// Each chunk is prefixed with a removable [CHUNK n] marker carrying its
// vector id; the instruction forbids the generator from surfacing those
// markers, and the rendered answer never shows them to an end user.
func Compose(question string, chunks []retrieval.RetrievedChunk, applicant *Applicant) string {
	var b strings.Builder

	b.WriteString("You are a visa eligibility officer.\n")
	b.WriteString("Answer ONLY using the policy context provided.\n\n")

	if applicant != nil {
		b.WriteString("Applicant:\n")
		writeField(&b, "Name", applicant.Name)
		if applicant.Age > 0 {
			fmt.Fprintf(&b, "Age: %d\n", applicant.Age)
		}
		writeField(&b, "Nationality", applicant.Nationality)
		writeField(&b, "Purpose", applicant.Purpose)
		writeField(&b, "Previous Rejection", applicant.PreviousRejection)
		b.WriteString("\n")
	}

	b.WriteString("Question:\n")
	b.WriteString(question)
	b.WriteString("\n\nContext:\n")
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[CHUNK %d]\n%s", c.VectorID, c.Text)
	}

	b.WriteString("\n\nReturn EXACTLY this format:\n\n")
	b.WriteString("Eligibility: Yes / No / Partial\n")
	b.WriteString("Final Answer: (2-3 lines summary)\n")
	b.WriteString("Explanation:\n")
	b.WriteString("- 3 to 5 bullet points\n")
	b.WriteString("- Each bullet must be unique, no repeated content\n")
	b.WriteString("- DO NOT show chunk IDs or chunk numbers\n")
	b.WriteString("Confidence: (0 to 1)\n")

	return b.String()
}

// EnrichQuery folds the applicant fields into the retrieval query, so the
// nearest-neighbour search sees the same context the generator will.
func EnrichQuery(question string, applicant *Applicant) string {
	if applicant == nil {
		return question
	}
	var b strings.Builder
	writeField(&b, "Name", applicant.Name)
	if applicant.Age > 0 {
		fmt.Fprintf(&b, "Age: %d\n", applicant.Age)
	}
	writeField(&b, "Nationality", applicant.Nationality)
	writeField(&b, "Purpose", applicant.Purpose)
	writeField(&b, "Previous Rejection", applicant.PreviousRejection)
	b.WriteString("\nQuestion:\n")
	b.WriteString(question)
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}
