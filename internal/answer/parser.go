package answer

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

var (
	verdictRe    = regexp.MustCompile(`(?i)^\s*Eligibility:\s*(.+)$`)
	summaryRe    = regexp.MustCompile(`(?i)^\s*Final Answer:\s*(.*)$`)
	explainRe    = regexp.MustCompile(`(?i)^\s*Explanation:\s*$`)
	bulletRe     = regexp.MustCompile(`^\s*[-*•]\s+(.+)$`)
	confidenceRe = regexp.MustCompile(`(?i)Confidence:\s*([0-9]*\.?[0-9]+)`)
	confLineRe   = regexp.MustCompile(`(?i)^\s*Confidence:`)
)

// Parse scans the raw generator response line by line. Every field is
// optional: a missing line yields an absent value, never an error. Free text
// from an external model must not be trusted to conform to the requested
// schema, and a missing field is an expected outcome of the pipeline, not a
// failure of it.
func Parse(raw string) Answer {
	a := Answer{Eligibility: Unknown}

	var inSummary, inExplanation bool
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if m := verdictRe.FindStringSubmatch(line); m != nil {
			a.Eligibility = parseVerdict(m[1])
			inSummary, inExplanation = false, false
			continue
		}
		if m := summaryRe.FindStringSubmatch(line); m != nil {
			a.Summary = strings.TrimSpace(m[1])
			inSummary, inExplanation = true, false
			continue
		}
		if explainRe.MatchString(line) {
			inSummary, inExplanation = false, true
			continue
		}
		if m := confidenceRe.FindStringSubmatch(line); m != nil {
			a.Confidence = parseConfidence(m[1])
			inSummary, inExplanation = false, false
			continue
		}
		if confLineRe.MatchString(line) {
			// Confidence keyword with no numeric token: absent, not an error.
			inSummary, inExplanation = false, false
			continue
		}

		if m := bulletRe.FindStringSubmatch(line); m != nil && inExplanation {
			a.Explanation = append(a.Explanation, strings.TrimSpace(m[1]))
			continue
		}

		// The summary may run over 2-3 lines; keep appending until the next
		// schema keyword or a blank line.
		if inSummary {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				inSummary = false
				continue
			}
			if a.Summary == "" {
				a.Summary = trimmed
			} else {
				a.Summary += " " + trimmed
			}
		}
	}

	return a
}

// parseVerdict maps the captured verdict text onto the enum. Generators
// occasionally echo the whole template ("Yes / No / Partial") or decorate
// the value; only a leading, unambiguous keyword counts.
func parseVerdict(s string) Eligibility {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Unknown
	}
	word := strings.ToLower(strings.Trim(fields[0], ".,:;!"))
	switch word {
	case "yes":
		if strings.Contains(s, "/") {
			return Unknown
		}
		return Yes
	case "no":
		return No
	case "partial", "partially":
		return Partial
	default:
		return Unknown
	}
}

// parseConfidence accepts the first numeric token after the keyword. An
// unparsable or out-of-range value stays absent rather than being clamped,
// so a reported number is always one the generator actually gave.
func parseConfidence(tok string) *float64 {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil
	}
	if v < 0 || v > 1 {
		return nil
	}
	return confidence(v)
}
