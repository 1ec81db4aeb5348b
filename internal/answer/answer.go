// Package answer is the single boundary that converts the generation
// service's untrusted free text into a typed verdict, and the deterministic
// calibration policy applied on top of it. Unparsed text never flows past
// this package.
package answer

// Eligibility is the verdict enum. Unknown covers both an explicit
// out-of-vocabulary verdict and a missing verdict line.
type Eligibility string

const (
	Yes     Eligibility = "Yes"
	No      Eligibility = "No"
	Partial Eligibility = "Partial"
	Unknown Eligibility = "Unknown"
)

// Answer is the structured decision extracted from a generator response.
// Confidence is nil when the generator gave no number or gave garbage, so
// downstream consumers can tell an absent value apart from a reported zero.
type Answer struct {
	Eligibility Eligibility `json:"eligibility"`
	Summary     string      `json:"summary"`
	Explanation []string    `json:"explanation"`
	Confidence  *float64    `json:"confidence,omitempty"`
}

// HasAbsentFields reports whether any schema field failed to parse. A
// partial answer is still logged and returned, just flagged.
func (a Answer) HasAbsentFields() bool {
	return a.Eligibility == Unknown || a.Summary == "" || len(a.Explanation) == 0 || a.Confidence == nil
}

func confidence(v float64) *float64 { return &v }
