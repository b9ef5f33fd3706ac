package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/trustlens/internal/content"
	"github.com/danielpatrickdp/trustlens/internal/model"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a regression fixture.
type Fixture struct {
	Description string        `json:"description"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one submission with stubbed collaborators and the
// expected outcome.
type FixtureCase struct {
	ID        string            `json:"id"`
	Domain    string            `json:"domain"`
	Text      string            `json:"text"`
	Model     *FixtureModel     `json:"model"` // null means the classifier is not loaded
	Providers []FixtureProvider `json:"providers"`
	Expected  FixtureExpected   `json:"expected"`
}

// FixtureModel is the stubbed classifier output.
type FixtureModel struct {
	ClassIndex    int       `json:"class_index"`
	Confidence    float64   `json:"confidence"`
	Probabilities []float64 `json:"probabilities,omitempty"`
}

// FixtureProvider stubs one fact-check provider. Outcome is "rating",
// "no_match" or "error".
type FixtureProvider struct {
	Name      string `json:"name"`
	Outcome   string `json:"outcome"`
	Rating    string `json:"rating,omitempty"`
	Publisher string `json:"publisher,omitempty"`
}

// FixtureExpected captures what the engine must produce. Nil pointers are
// not checked.
type FixtureExpected struct {
	Unavailable    bool     `json:"unavailable,omitempty"`
	Label          string   `json:"label,omitempty"`
	Confidence     *float64 `json:"confidence,omitempty"`
	ReasonCount    *int     `json:"reason_count,omitempty"`
	ReasonsContain []string `json:"reasons_contain,omitempty"`
	Overridden     bool     `json:"overridden,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	for i, c := range f.Cases {
		if _, err := content.ParseDomain(c.Domain); err != nil {
			return nil, fmt.Errorf("fixture %s case %d (%s): %w", path, i, c.ID, err)
		}
		for _, p := range c.Providers {
			switch p.Outcome {
			case "rating", "no_match", "error":
			default:
				return nil, fmt.Errorf("fixture %s case %s: provider %s has unknown outcome %q", path, c.ID, p.Name, p.Outcome)
			}
		}
	}
	return &f, nil
}

// Submission converts the case to a validated submission.
func (fc *FixtureCase) Submission() (content.Submission, error) {
	d, err := content.ParseDomain(fc.Domain)
	if err != nil {
		return content.Submission{}, err
	}
	return content.NewSubmission(d, fc.Text)
}

// Registry builds a registry holding only the stubbed classifier.
func (fc *FixtureCase) Registry() *model.Registry {
	models := map[content.Domain]model.Classifier{}
	if fc.Model != nil {
		models[content.Domain(fc.Domain)] = model.Static{Prediction: model.Prediction{
			ClassIndex:    fc.Model.ClassIndex,
			Confidence:    fc.Model.Confidence,
			Probabilities: fc.Model.Probabilities,
		}}
	}
	return model.NewRegistry(models)
}

// #endregion fixture-loader
