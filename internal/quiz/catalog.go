package quiz

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed data/quiz.json
var defaultCatalogJSON []byte

// Catalog is the static quiz definition: the ordered question list plus the
// candidate display metadata. Question order, option order and every numeric
// score are part of the published contract, so the catalog is loaded once and
// treated as read-only.
type Catalog struct {
	Questions  []Question         `json:"questions"`
	Candidates []CandidateProfile `json:"candidates"`
}

// LoadCatalog loads the quiz definition from quiz.json under dataDir,
// falling back to the embedded default when no override file exists.
func LoadCatalog(dataDir string) (*Catalog, error) {
	filePath := filepath.Join(dataDir, "quiz.json")

	raw := defaultCatalogJSON
	if data, err := os.ReadFile(filePath); err == nil {
		raw = data
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read quiz catalog: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode quiz catalog: %w", err)
	}

	if err := catalog.validate(); err != nil {
		return nil, fmt.Errorf("invalid quiz catalog: %w", err)
	}

	return &catalog, nil
}

// Question finds a question by id.
func (c *Catalog) Question(id string) (*Question, bool) {
	for i := range c.Questions {
		if c.Questions[i].ID == id {
			return &c.Questions[i], true
		}
	}
	return nil, false
}

// Profile finds the display metadata for a candidate key.
func (c *Catalog) Profile(key CandidateKey) (CandidateProfile, bool) {
	for _, p := range c.Candidates {
		if p.Key == key {
			return p, true
		}
	}
	return CandidateProfile{}, false
}

// OptionByID finds an option of this question by id.
func (q *Question) OptionByID(id string) (*Option, bool) {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i], true
		}
	}
	return nil, false
}

func (c *Catalog) validate() error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("catalog has no questions")
	}

	seenQ := make(map[string]bool)
	for _, q := range c.Questions {
		if q.ID == "" {
			return fmt.Errorf("question with empty id")
		}
		if seenQ[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seenQ[q.ID] = true

		if q.Mode != ModeSingle && q.Mode != ModeMulti {
			return fmt.Errorf("question %q has unknown mode %q", q.ID, q.Mode)
		}
		if len(q.Options) == 0 {
			return fmt.Errorf("question %q has no options", q.ID)
		}

		seenO := make(map[string]bool)
		for _, opt := range q.Options {
			if opt.ID == "" {
				return fmt.Errorf("question %q has option with empty id", q.ID)
			}
			if seenO[opt.ID] {
				return fmt.Errorf("question %q has duplicate option id %q", q.ID, opt.ID)
			}
			seenO[opt.ID] = true
		}
	}

	seenC := make(map[CandidateKey]bool)
	for _, p := range c.Candidates {
		if p.Key == "" {
			return fmt.Errorf("candidate with empty key")
		}
		if seenC[p.Key] {
			return fmt.Errorf("duplicate candidate key %q", p.Key)
		}
		seenC[p.Key] = true
	}

	return nil
}
