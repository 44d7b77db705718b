package models

import "time"

// Vocabulary names for the controlled attribute domains. These are the only
// fields whose values are validated against a fixed value set.
const (
	VocabVitola   = "vitola"
	VocabColor    = "color"
	VocabCountry  = "country"
	VocabStrength = "strength"
	VocabWrappers = "wrappers"
	VocabBinders  = "binders"
	VocabFillers  = "fillers"
)

// VocabularyNames lists every controlled vocabulary in a stable order.
var VocabularyNames = []string{
	VocabVitola, VocabColor, VocabCountry, VocabStrength,
	VocabWrappers, VocabBinders, VocabFillers,
}

// AttributeDomain is one controlled vocabulary: the set of legal values for a
// cigar attribute such as wrapper color or vitola. Read-mostly reference data.
type AttributeDomain struct {
	Name      string     `db:"name" json:"name"`
	ValSet    StringList `db:"val_set" json:"values"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// DomainSet maps vocabulary name to its current value set.
type DomainSet map[string][]string
