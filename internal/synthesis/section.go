package synthesis

import "reqforge/internal/extraction"

// Introduction is the first SRS section.
type Introduction struct {
	Purpose     string   `json:"purpose"`
	Scope       string   `json:"scope"`
	Definitions []string `json:"definitions"`
	References  []string `json:"references"`
	Overview    string   `json:"overview"`
}

// OverallDescription is the second SRS section.
type OverallDescription struct {
	ProductPerspective  string   `json:"product_perspective"`
	ProductFunctions    []string `json:"product_functions"`
	UserCharacteristics []string `json:"user_characteristics"`
	Constraints         []string `json:"constraints"`
	Assumptions         []string `json:"assumptions"`
	Dependencies        []string `json:"dependencies"`
}

// Section is the synthesized document. Every leaf is always populated: a
// cleaned value, a text-mined value, or the static default.
type Section struct {
	Introduction       Introduction       `json:"introduction"`
	OverallDescription OverallDescription `json:"overall_description"`
}

// Input is one processed record feeding aggregate synthesis.
type Input struct {
	Text   string
	Fields extraction.Fields
}

// Static defaults shared by both synthesis modes.
const (
	defaultPurpose     = "System requirements specification and implementation"
	defaultScope       = "Complete system implementation and deployment"
	defaultPerspective = "The system operates as a standalone application."
)

var (
	defaultDefinitions  = []string{"To be defined"}
	defaultReferences   = []string{"IEEE Std 830-1998, IEEE Recommended Practice for Software Requirements Specifications"}
	defaultFunctions    = []string{"Core system functionality"}
	defaultStakeholders = []string{"System users"}
	defaultConstraints  = []string{"System performance requirements"}
	defaultAssumptions  = []string{"Stakeholders are available for consultation", "System requirements are clearly defined"}
	defaultDependencies = []string{"External system integration"}
)

func copyList(values []string) []string {
	cp := make([]string, len(values))
	copy(cp, values)
	return cp
}

func listOrDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return copyList(fallback)
	}
	return values
}

func textOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
