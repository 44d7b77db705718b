package moderation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cigardb/cigardb/internal/api/httperr"
	"github.com/cigardb/cigardb/internal/db/models"
	"github.com/cigardb/cigardb/internal/validation"
)

// Field values arrive from two directions: handler-parsed query parameters
// (string / []string) and JSONB pending-request payloads (string / float64 /
// []interface{} after unmarshalling). The coercions below accept both shapes
// so the same apply functions serve direct writes and approved requests.

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asStringList(v interface{}) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, element := range list {
			s, ok := element.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func asDate(v interface{}) (*time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	if s == "" {
		return nil, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func invalidField(name string) error {
	return httperr.InvalidValue(fmt.Sprintf("The field %s is invalid.", name))
}

// applyBrandFields copies submitted values onto a brand. Field names were
// already allow-list checked; a value of the wrong shape is an error.
func applyBrandFields(brand *models.Brand, fields validation.Fields) error {
	for name, value := range fields {
		switch name {
		case "name":
			s, ok := asString(value)
			if !ok {
				return invalidField(name)
			}
			brand.Name = s
		case "country":
			s, ok := asString(value)
			if !ok {
				return invalidField(name)
			}
			brand.Country = s
		case "logo":
			s, ok := asString(value)
			if !ok {
				return invalidField(name)
			}
			brand.Logo = s
		case "address":
			s, ok := asString(value)
			if !ok {
				return invalidField(name)
			}
			brand.Address = s
		case "founding_date":
			t, ok := asDate(value)
			if !ok {
				return invalidField(name)
			}
			brand.FoundingDate = t
		case "lat":
			f, ok := asFloat(value)
			if !ok {
				return invalidField(name)
			}
			brand.Lat = &f
		case "lng":
			f, ok := asFloat(value)
			if !ok {
				return invalidField(name)
			}
			brand.Lng = &f
		}
	}
	return nil
}

// applyCigarFields copies submitted values onto a cigar.
func applyCigarFields(cigar *models.Cigar, fields validation.Fields) error {
	for name, value := range fields {
		switch name {
		case "brand":
			s, ok := asString(value)
			if !ok {
				return invalidField(name)
			}
			cigar.Brand = s
		case "name":
			s, ok := asString(value)
			if !ok {
				return invalidField(name)
			}
			cigar.Name = s
		case "vitola":
			s, ok := asString(value)
			if !ok {
				return invalidField(name)
			}
			cigar.Vitola = s
		case "color":
			s, ok := asString(value)
			if !ok {
				return invalidField(name)
			}
			cigar.Color = s
		case "country":
			s, ok := asString(value)
			if !ok {
				return invalidField(name)
			}
			cigar.Country = s
		case "strength":
			s, ok := asString(value)
			if !ok {
				return invalidField(name)
			}
			cigar.Strength = s
		case "length":
			f, ok := asFloat(value)
			if !ok {
				return invalidField(name)
			}
			cigar.Length = &f
		case "ring_gauge":
			i, ok := asInt(value)
			if !ok {
				return invalidField(name)
			}
			cigar.RingGauge = &i
		case "wrappers":
			list, ok := asStringList(value)
			if !ok {
				return invalidField(name)
			}
			cigar.Wrappers = list
		case "binders":
			list, ok := asStringList(value)
			if !ok {
				return invalidField(name)
			}
			cigar.Binders = list
		case "fillers":
			list, ok := asStringList(value)
			if !ok {
				return invalidField(name)
			}
			cigar.Fillers = list
		case "year_introduced":
			t, ok := asDate(value)
			if !ok {
				return invalidField(name)
			}
			cigar.YearIntroduced = t
		}
	}

	// JSONB columns always store a list, never NULL.
	if cigar.Wrappers == nil {
		cigar.Wrappers = models.StringList{}
	}
	if cigar.Binders == nil {
		cigar.Binders = models.StringList{}
	}
	if cigar.Fillers == nil {
		cigar.Fillers = models.StringList{}
	}
	return nil
}
