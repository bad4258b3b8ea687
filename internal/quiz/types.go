package quiz

// CandidateKey identifies a recommendable storefront in the scoring tables.
type CandidateKey string

// Mode controls how many options of a question may be selected at once.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// Option is one selectable answer. Scores holds hand-authored weight
// contributions per candidate; candidates absent from the map contribute zero.
type Option struct {
	ID          string               `json:"id"`
	Label       string               `json:"label"`
	Description string               `json:"description,omitempty"`
	Scores      map[CandidateKey]int `json:"scores"`
}

// Question is one step of the recommendation quiz. Question and option order
// are normative: they drive presentation and the ranking tie-break.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Mode    Mode     `json:"mode"`
	Options []Option `json:"options"`
}

// CandidateProfile is static display metadata attached to ranked results.
type CandidateProfile struct {
	Key       CandidateKey `json:"key"`
	Name      string       `json:"name"`
	Tagline   string       `json:"tagline,omitempty"`
	Strengths []string     `json:"strengths"`
	Caveats   []string     `json:"caveats"`
}

// RankedResult is one entry of the final recommendation list. Suitability is
// the candidate's score as a percentage of the top-scoring candidate.
type RankedResult struct {
	Key         CandidateKey     `json:"key"`
	Score       int              `json:"score"`
	Suitability int              `json:"suitability"`
	Profile     CandidateProfile `json:"profile"`
}
