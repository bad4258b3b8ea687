package quiz

// Aggregate sums the score contributions of every selected option into one
// total per candidate. Pure function of its inputs: question ids in the
// answer set that don't exist in the question list are ignored, option score
// maps that don't mention a candidate contribute zero, and an empty answer
// set produces an empty totals map.
func Aggregate(answers *AnswerSet, questions []Question) map[CandidateKey]int {
	totals := make(map[CandidateKey]int)
	if answers == nil {
		return totals
	}

	for _, q := range questions {
		for _, optID := range answers.Selected(q.ID) {
			opt, ok := q.OptionByID(optID)
			if !ok {
				continue
			}
			for key, score := range opt.Scores {
				totals[key] += score
			}
		}
	}

	return totals
}
