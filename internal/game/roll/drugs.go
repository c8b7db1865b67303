package roll

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DrugType classifies which addiction tests a substance requires.
type DrugType string

const (
	// DrugPsychological requires a Willpower + Logic test.
	DrugPsychological DrugType = "psychological"
	// DrugPhysiological requires a Willpower + Body test.
	DrugPhysiological DrugType = "physiological"
	// DrugBoth requires one test of each kind.
	DrugBoth DrugType = "both"
)

// Drug is one catalog entry. Rating sets the test cadence (every 11-rating
// weeks); Threshold is the base addiction threshold, reduced by one per clean
// week.
type Drug struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Rating    int      `yaml:"rating"`
	Threshold int      `yaml:"threshold"`
	Type      DrugType `yaml:"type"`
}

// TestWeeks returns how often an addiction test is due, in weeks.
func (d Drug) TestWeeks() int { return 11 - d.Rating }

// Psychological reports whether the drug requires a psychological test.
func (d Drug) Psychological() bool { return d.Type == DrugPsychological || d.Type == DrugBoth }

// Physiological reports whether the drug requires a physiological test.
func (d Drug) Physiological() bool { return d.Type == DrugPhysiological || d.Type == DrugBoth }

//go:embed drugs.yaml
var drugsYAML []byte

// drugCatalog is the embedded substance table, in catalog order.
var drugCatalog = mustLoadDrugs()

func mustLoadDrugs() []Drug {
	var doc struct {
		Drugs []Drug `yaml:"drugs"`
	}
	if err := yaml.Unmarshal(drugsYAML, &doc); err != nil {
		panic(fmt.Sprintf("drug catalog: %v", err))
	}
	return doc.Drugs
}

// drugByID looks up a catalog entry.
func drugByID(id string) (Drug, bool) {
	for _, d := range drugCatalog {
		if d.ID == id {
			return d, true
		}
	}
	return Drug{}, false
}
