package listing

import "github.com/kailas-cloud/estatedash/internal/domain"

// Journey is the normalized commute to the user's workplace.
type Journey struct {
	Duration *float64 // minutes
}

// Minutes returns the duration if known.
func (j Journey) Minutes() (float64, bool) {
	if j.Duration == nil {
		return 0, false
	}
	return *j.Duration, true
}

// Record renders the flat stored shape.
func (j Journey) Record() domain.Record {
	if j.Duration == nil {
		return domain.Record{}
	}
	return domain.Record{"duration": *j.Duration}
}

// NormalizeJourney flattens any upstream journey shape: a bare number or
// numeric string, {"total": n}, {"duration": n}, a nested {"journey": {...}}
// wrapper or a list of those (first resolvable wins). "total" wins over
// "duration" when both are present.
func NormalizeJourney(v any) Journey {
	if d, ok := journeyMinutes(v, 0); ok {
		return Journey{Duration: &d}
	}
	return Journey{}
}

const maxJourneyDepth = 4

func journeyMinutes(v any, depth int) (float64, bool) {
	if depth > maxJourneyDepth {
		return 0, false
	}
	switch t := v.(type) {
	case nil:
		return 0, false
	case map[string]any:
		return journeyFromMap(t, depth)
	case domain.Record:
		return journeyFromMap(t, depth)
	case []any:
		for _, item := range t {
			if d, ok := journeyMinutes(item, depth+1); ok {
				return d, true
			}
		}
		return 0, false
	}
	return domain.ToNumber(v)
}

func journeyFromMap(m map[string]any, depth int) (float64, bool) {
	for _, key := range []string{"total", "duration", "journey"} {
		if d, ok := journeyMinutes(m[key], depth+1); ok {
			return d, true
		}
	}
	return 0, false
}
