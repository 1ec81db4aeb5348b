package answer

// Rule adjusts a raw generator confidence for one verdict. A capping rule
// bounds the reported value from above; a pinning rule replaces it outright.
type Rule struct {
	Bound float64
	Pin   bool
}

// Policy is the table-driven calibration applied after parsing. It is
// deliberately a plain value, not behaviour scattered at call sites: the
// bounds are the most likely knob to be retuned, and swapping the table must
// never touch parsing or retrieval.
type Policy map[Eligibility]Rule

// NewPolicy builds the standard table: a positive or negative verdict keeps
// its reported confidence up to a cap, an ambiguous verdict is pinned low
// regardless of what the generator claimed.
func NewPolicy(capYes, capNo, ambiguous float64) Policy {
	return Policy{
		Yes:     {Bound: capYes},
		No:      {Bound: capNo},
		Partial: {Bound: ambiguous, Pin: true},
		Unknown: {Bound: ambiguous, Pin: true},
	}
}

// DefaultPolicy mirrors the production bounds.
func DefaultPolicy() Policy {
	return NewPolicy(0.9, 0.85, 0.3)
}

// Apply returns a copy of the answer with calibrated confidence. A capped
// verdict with absent confidence stays absent; a pinned verdict always gets
// the pinned value.
func (p Policy) Apply(a Answer) Answer {
	rule, ok := p[a.Eligibility]
	if !ok {
		return a
	}
	if rule.Pin {
		a.Confidence = confidence(rule.Bound)
		return a
	}
	if a.Confidence != nil && *a.Confidence > rule.Bound {
		a.Confidence = confidence(rule.Bound)
	}
	return a
}
