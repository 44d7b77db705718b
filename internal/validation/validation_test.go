package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cigardb/cigardb/internal/db/models"
)

func testDomains() models.DomainSet {
	return models.DomainSet{
		models.VocabVitola:   {"Robusto", "Toro", "Churchill"},
		models.VocabColor:    {"Natural", "Maduro"},
		models.VocabCountry:  {"Nicaragua", "Honduras", "Dominican Republic"},
		models.VocabStrength: {"Mild", "Medium", "Full"},
		models.VocabWrappers: {"Connecticut", "Habano", "Corojo"},
		models.VocabBinders:  {"Connecticut", "Habano"},
		models.VocabFillers:  {"Nicaraguan", "Honduran"},
	}
}

func TestValidate_AllValid(t *testing.T) {
	fields := Fields{
		"brand":    "Padron",
		"name":     "1964 Anniversary",
		"vitola":   "Toro",
		"color":    "Maduro",
		"country":  "Nicaragua",
		"strength": "Full",
		"wrappers": []string{"Habano"},
	}

	err := Validate(models.EntityCigar, fields, testDomains())
	assert.NoError(t, err)
}

func TestValidate_SingleBadScalar(t *testing.T) {
	fields := Fields{"vitola": "Megalodon"}

	err := Validate(models.EntityCigar, fields, testDomains())
	require.Error(t, err)
	assert.Equal(t, "The field vitola is invalid.", err.Error())
}

func TestValidate_BadListElement(t *testing.T) {
	fields := Fields{"wrappers": []string{"Connecticut", "Cardboard"}}

	err := Validate(models.EntityCigar, fields, testDomains())
	require.Error(t, err)
	assert.Equal(t, "The field wrappers is invalid.", err.Error())
}

func TestValidate_MultipleFailuresAggregate(t *testing.T) {
	fields := Fields{
		"vitola":   "Megalodon",
		"strength": "Overwhelming",
		"color":    "Maduro",
	}

	err := Validate(models.EntityCigar, fields, testDomains())
	require.Error(t, err)

	fieldErrs, ok := err.(*FieldErrors)
	require.True(t, ok, "expected *FieldErrors, got %T", err)
	assert.Equal(t, []string{"strength", "vitola"}, fieldErrs.Fields)
	assert.Equal(t, "The following fields failed validation: strength, vitola", err.Error())
}

func TestValidate_EmptyValuesPass(t *testing.T) {
	fields := Fields{
		"vitola":   "",
		"wrappers": []string{},
	}

	err := Validate(models.EntityCigar, fields, testDomains())
	assert.NoError(t, err)
}

func TestValidate_UnknownFieldRejected(t *testing.T) {
	fields := Fields{"status": "approved"}

	err := Validate(models.EntityCigar, fields, testDomains())
	require.Error(t, err)

	_, ok := err.(*UnknownFieldError)
	assert.True(t, ok, "expected *UnknownFieldError, got %T", err)
}

func TestValidate_BrandAllowList(t *testing.T) {
	err := Validate(models.EntityBrand, Fields{"vitola": "Toro"}, testDomains())
	require.Error(t, err)
	_, ok := err.(*UnknownFieldError)
	assert.True(t, ok, "vitola must not be settable on a brand")

	err = Validate(models.EntityBrand, Fields{"name": "Padron", "country": "Nicaragua"}, testDomains())
	assert.NoError(t, err)
}

func TestValidate_MissingVocabularyPasses(t *testing.T) {
	fields := Fields{"vitola": "Toro"}

	err := Validate(models.EntityCigar, fields, models.DomainSet{})
	assert.NoError(t, err)
}

func TestNormalizeList(t *testing.T) {
	assert.Equal(t, []string{}, NormalizeList(""))
	assert.Equal(t, []string{}, NormalizeList("  "))
	assert.Equal(t, []string{"Habano"}, NormalizeList("Habano"))
	assert.Equal(t, []string{"Habano", "Corojo"}, NormalizeList("Habano, Corojo"))
	assert.Equal(t, []string{"Habano"}, NormalizeList("Habano,,"))
}
