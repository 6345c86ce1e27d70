package grading

// Policy holds the partial-credit heuristics. The defaults mirror the
// placeholder grading curve the platform launched with; deployments tune
// these rather than the evaluator itself.
type Policy struct {
	// FillBlankPartialRatio is the share of marks awarded for a non-empty
	// fill-blank answer that fails the exact-match comparison.
	FillBlankPartialRatio float64
	// DescriptiveBaseCredit is the credit floor for any textual attempt at a
	// descriptive question.
	DescriptiveBaseCredit float64
	// DescriptiveSimilarityWeight scales the remaining credit by the
	// similarity score.
	DescriptiveSimilarityWeight float64
}

func DefaultPolicy() Policy {
	return Policy{
		FillBlankPartialRatio:       0.5,
		DescriptiveBaseCredit:       0.6,
		DescriptiveSimilarityWeight: 0.4,
	}
}
