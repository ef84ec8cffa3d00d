package listing

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

// criteriaSources are the fields that can carry match indicators.
var criteriaSources = []string{FieldMatchOutput, FieldMatchedCriteria, FieldLifestyleCriteria}

var truthyStrings = map[string]bool{
	"true":    true,
	"yes":     true,
	"matched": true,
	"match":   true,
	"1":       true,
}

// NormalizeCriteria maps every representation of "matched criteria" onto a
// sorted set of tags. Mapping sources contribute each key whose value
// indicates a match; list sources contribute each string item
// and the matching keys of each object item.
func NormalizeCriteria(fields domain.Record) []string {
	tags := make(map[string]struct{})
	for _, key := range criteriaSources {
		collectTags(fields[key], tags)
	}
	out := make([]string, 0, len(tags))
	for tag := range tags {
		out = append(out, tag)
	}
	slices.Sort(out)
	return out
}

func collectTags(source any, tags map[string]struct{}) {
	switch s := source.(type) {
	case map[string]any:
		collectMapTags(s, tags)
	case domain.Record:
		collectMapTags(s, tags)
	case []string:
		for _, item := range s {
			if item != "" {
				tags[item] = struct{}{}
			}
		}
	case []any:
		for _, item := range s {
			switch v := item.(type) {
			case string:
				if v != "" {
					tags[v] = struct{}{}
				}
			case map[string]any:
				collectMapTags(v, tags)
			}
		}
	}
}

func collectMapTags(m map[string]any, tags map[string]struct{}) {
	for key, value := range m {
		if IndicatesMatch(value) {
			tags[key] = struct{}{}
		}
	}
}

// IndicatesMatch interprets a loosely typed match flag.
func IndicatesMatch(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t > 0
	case float32:
		return t > 0
	case int:
		return t > 0
	case int64:
		return t > 0
	case string:
		return truthyStrings[strings.ToLower(strings.TrimSpace(t))]
	case map[string]any:
		for _, inner := range t {
			if IndicatesMatch(inner) {
				return true
			}
		}
	}
	return false
}

// TagLabel turns a tag key into a display label: "has_garden" → "Has garden".
func TagLabel(tag string) string {
	s := strings.ToLower(strings.ReplaceAll(tag, "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
