package quiz

import "sort"

// AnswerSet holds the in-progress selections of one quiz run. It lives for a
// single flow: created on start, mutated per selection, consumed by Aggregate,
// discarded on restart. Never persisted.
type AnswerSet struct {
	selected map[string]map[string]bool
}

// NewAnswerSet creates an empty answer set.
func NewAnswerSet() *AnswerSet {
	return &AnswerSet{selected: make(map[string]map[string]bool)}
}

// Select records an option choice. Single-choice questions replace any prior
// selection; multi-choice questions accumulate, so the at-most-one invariant
// for single-choice questions holds by construction.
func (a *AnswerSet) Select(q *Question, optionID string) {
	if q == nil {
		return
	}
	if q.Mode == ModeSingle {
		a.selected[q.ID] = map[string]bool{optionID: true}
		return
	}
	if a.selected[q.ID] == nil {
		a.selected[q.ID] = make(map[string]bool)
	}
	a.selected[q.ID][optionID] = true
}

// Deselect removes a single option choice, dropping the question entry when
// it becomes empty.
func (a *AnswerSet) Deselect(questionID, optionID string) {
	opts, ok := a.selected[questionID]
	if !ok {
		return
	}
	delete(opts, optionID)
	if len(opts) == 0 {
		delete(a.selected, questionID)
	}
}

// Selected returns the chosen option ids for a question in sorted order.
func (a *AnswerSet) Selected(questionID string) []string {
	opts, ok := a.selected[questionID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(opts))
	for id := range opts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of answered questions.
func (a *AnswerSet) Len() int {
	return len(a.selected)
}

// Reset discards all selections, returning the set to its initial state.
func (a *AnswerSet) Reset() {
	a.selected = make(map[string]map[string]bool)
}

// AnswerSetFrom builds an AnswerSet from a raw questionID -> optionIDs map,
// such as a decoded request body. Selections are applied through Select, so
// single-choice questions keep only the last option listed and unknown
// question ids are dropped.
func AnswerSetFrom(raw map[string][]string, catalog *Catalog) *AnswerSet {
	set := NewAnswerSet()
	for _, q := range catalog.Questions {
		for _, optID := range raw[q.ID] {
			if _, ok := q.OptionByID(optID); ok {
				set.Select(&q, optID)
			}
		}
	}
	return set
}
