// Package validation is the gate every submitted brand or cigar passes before
// it reaches the moderation layer. It enforces two things: field names must
// belong to the entity's settable set, and values of controlled attributes
// must belong to their vocabulary. The gate runs for every tier; moderators
// bypass the approval queue, not data validity.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cigardb/cigardb/internal/db/models"
)

// Fields is the submitted field map for a create or update. Scalar values are
// strings; the leaf-list attributes (wrappers, binders, fillers) are []string.
type Fields map[string]interface{}

// FieldErrors aggregates every field that failed vocabulary validation.
type FieldErrors struct {
	Fields []string
}

func (e *FieldErrors) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("The field %s is invalid.", e.Fields[0])
	}
	return fmt.Sprintf("The following fields failed validation: %s", strings.Join(e.Fields, ", "))
}

// UnknownFieldError reports a submitted field name outside the entity's
// settable set.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("The field %s is invalid.", e.Field)
}

// brandFields is the settable field set for brands. Status and moderator
// notes are deliberately absent: they move only through moderation.
var brandFields = map[string]bool{
	"name":          true,
	"country":       true,
	"founding_date": true,
	"logo":          true,
	"address":       true,
	"lat":           true,
	"lng":           true,
}

// cigarFields is the settable field set for cigars.
var cigarFields = map[string]bool{
	"brand":           true,
	"name":            true,
	"length":          true,
	"ring_gauge":      true,
	"vitola":          true,
	"color":           true,
	"country":         true,
	"wrappers":        true,
	"binders":         true,
	"fillers":         true,
	"strength":        true,
	"year_introduced": true,
}

// vocabForField maps a settable field name to the vocabulary constraining it.
// Fields not listed here are free-form.
var vocabForField = map[string]string{
	"vitola":   models.VocabVitola,
	"color":    models.VocabColor,
	"country":  models.VocabCountry,
	"strength": models.VocabStrength,
	"wrappers": models.VocabWrappers,
	"binders":  models.VocabBinders,
	"fillers":  models.VocabFillers,
}

// listFields are the attributes submitted as comma-separated values
var listFields = map[string]bool{
	"wrappers": true,
	"binders":  true,
	"fillers":  true,
}

// IsListField reports whether a field is submitted as a comma-separated list
func IsListField(name string) bool {
	return listFields[name]
}

// AllowedFields returns the settable field set for an entity type
func AllowedFields(entityType models.EntityType) map[string]bool {
	if entityType == models.EntityBrand {
		return brandFields
	}
	return cigarFields
}

// CheckAllowedFields rejects any submitted field name outside the entity's
// settable set. Field names are checked before values so a typo surfaces as
// its own error rather than a vocabulary miss.
func CheckAllowedFields(entityType models.EntityType, fields Fields) error {
	allowed := AllowedFields(entityType)
	for name := range fields {
		if !allowed[name] {
			return &UnknownFieldError{Field: name}
		}
	}
	return nil
}

// Validate checks every controlled-vocabulary field in the submission against
// the current domain value sets. Scalar fields check membership; list fields
// check every element. Empty strings and empty lists pass, so a field can be
// cleared. All failures aggregate into a single FieldErrors.
func Validate(entityType models.EntityType, fields Fields, domains models.DomainSet) error {
	if err := CheckAllowedFields(entityType, fields); err != nil {
		return err
	}

	failed := make(map[string]bool)

	for name, value := range fields {
		vocabName, controlled := vocabForField[name]
		if !controlled {
			continue
		}
		// Brand country is free-form when the country vocabulary covers
		// cigars only; an absent vocabulary never fails a field.
		valSet, ok := domains[vocabName]
		if !ok {
			continue
		}

		switch v := value.(type) {
		case string:
			if v != "" && !contains(valSet, v) {
				failed[name] = true
			}
		case []string:
			for _, element := range v {
				if element != "" && !contains(valSet, element) {
					failed[name] = true
				}
			}
		default:
			failed[name] = true
		}
	}

	if len(failed) == 0 {
		return nil
	}

	names := make([]string, 0, len(failed))
	for name := range failed {
		names = append(names, name)
	}
	sort.Strings(names)
	return &FieldErrors{Fields: names}
}

// NormalizeList splits a comma-separated parameter into a clean list. Empty
// input yields an empty list, never nil, so JSONB columns always store [].
func NormalizeList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}
