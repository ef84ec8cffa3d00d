package listing

import (
	"github.com/kailas-cloud/estatedash/internal/domain"
	"github.com/kailas-cloud/estatedash/internal/domain/property"
)

// Card is the summary a dashboard tile needs. Every string is render-ready.
type Card struct {
	PropertyID     string   `json:"property_id"`
	Mode           Mode     `json:"mode"`
	Address        string   `json:"address"`
	Price          string   `json:"price"`
	Bedrooms       string   `json:"bedrooms"`
	Bathrooms      string   `json:"bathrooms,omitempty"`
	CommuteMinutes *int     `json:"commute_minutes,omitempty"`
	FurnishType    string   `json:"furnish_type,omitempty"`
	AvailableFrom  string   `json:"available_from,omitempty"`
	MinTenancy     string   `json:"min_tenancy,omitempty"`
	DistanceKm     *float64 `json:"distance_km,omitempty"`
	Criteria       []string `json:"criteria"`
	CriteriaCount  int      `json:"criteria_count"`
	ImageCount     int      `json:"image_count"`
}

// Fact is one labelled key fact.
type Fact struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Detail is the property page view: the card plus key facts and the raw
// enrichment sections.
type Detail struct {
	Card
	Postcode     string        `json:"postcode"`
	Tenure       string        `json:"tenure"`
	EPC          string        `json:"epc"`
	CouncilTax   string        `json:"council_tax_band"`
	KeyFacts     []Fact        `json:"key_facts"`
	Features     []any         `json:"features"`
	Stations     []any         `json:"stations"`
	Latitude     *float64      `json:"latitude,omitempty"`
	Longitude    *float64      `json:"longitude,omitempty"`
	Neighborhood domain.Record `json:"neighborhood_info,omitempty"`
	Description  domain.Record `json:"description_analysis,omitempty"`
	Draft        any           `json:"draft,omitempty"`
}

// Card renders l for mode. An empty mode uses the listing's own mode.
func (l Listing) Card(mode Mode) Card {
	if mode == "" {
		mode = l.Mode()
	}

	c := Card{
		PropertyID:    l.PropertyID(),
		Mode:          mode,
		Address:       l.Address(),
		Bedrooms:      FormatCount(l.fields[property.FieldBedrooms], "bed", "Unknown beds"),
		Criteria:      labels(l.criteria),
		CriteriaCount: l.CriteriaCount(),
		ImageCount:    len(l.Images()),
	}
	if c.Address == "" {
		c.Address = UnknownAddress
	}
	if n, ok := l.Bathrooms(); ok && n > 0 {
		c.Bathrooms = FormatCount(n, "bathroom", "")
	}
	if d, ok := l.journey.Minutes(); ok {
		m := int(d)
		c.CommuteMinutes = &m
	}
	if d, ok := l.DistanceKm(); ok {
		c.DistanceKm = &d
	}

	if mode == ModeRental {
		c.Price = FormatRent(l.fields[property.FieldMonthlyRent])
		c.FurnishType = ValueOrPlaceholder(l.fields[property.FieldFurnishType], PlaceholderAskAgent)
		c.AvailableFrom = FormatLetAvailable(l.letAvailable())
		c.MinTenancy = l.minTenancyText()
	} else {
		c.Price = FormatCurrency(l.fields[property.FieldPrice])
	}
	return c
}

// Detail renders the property page for l.
func (l Listing) Detail() Detail {
	mode := l.Mode()
	if mode == "" {
		mode = ModeSales
	}
	d := Detail{
		Card:         l.Card(mode),
		Postcode:     ValueOrPlaceholder(l.fields[property.FieldPostcode], PlaceholderNA),
		Tenure:       ValueOrPlaceholder(l.fields[property.FieldTenureType], PlaceholderAskAgent),
		EPC:          ValueOrPlaceholder(l.fields[property.FieldEPC], PlaceholderAskAgent),
		CouncilTax:   ValueOrPlaceholder(l.fields[property.FieldCouncilTaxBand], PlaceholderAskAgent),
		Features:     list(l.fields[property.FieldFeatures]),
		Stations:     list(l.fields[property.FieldStations]),
		Neighborhood: l.fields.Map(FieldNeighborhoodInfo),
		Description:  l.fields.Map(FieldDescriptionAnalysis),
		Draft:        l.fields[FieldDraft],
	}
	if p, ok := l.Point(); ok {
		d.Latitude, d.Longitude = &p.Lat, &p.Lng
	}
	if mode == ModeRental {
		d.KeyFacts = l.rentalFacts()
	} else {
		d.KeyFacts = l.salesFacts()
	}
	return d
}

func (l Listing) salesFacts() []Fact {
	years := ValueOrPlaceholder(l.describeOr("years_left_on_lease"), PlaceholderAskAgent)
	if n, ok := l.LeaseYears(); ok {
		years = FormatCount(n, "year", PlaceholderAskAgent)
	}
	serviceCharge := PlaceholderNA
	if n, ok := l.ServiceCharge(); ok {
		serviceCharge = FormatCurrency(n)
	}
	return []Fact{
		{Label: "Years left on lease", Value: years},
		{Label: "Chain free", Value: ValueOrPlaceholder(l.describeOr("is_chain_free"), PlaceholderAskAgent)},
		{Label: "Service charge", Value: serviceCharge},
		{Label: "Ground rent", Value: FormatCurrency(l.fields[property.FieldGroundRent])},
	}
}

func (l Listing) rentalFacts() []Fact {
	deposit := PlaceholderNA
	if n, ok := l.Deposit(); ok {
		deposit = FormatCurrency(n)
	}
	return []Fact{
		{Label: "Available from", Value: FormatLetAvailable(l.letAvailable())},
		{Label: "Deposit", Value: deposit},
		{Label: "Minimum tenancy", Value: l.minTenancyText()},
	}
}

func (l Listing) minTenancyText() string {
	n, ok := l.MinTenancyMonths()
	if !ok {
		return PlaceholderAskAgent
	}
	return FormatCount(n, "month", PlaceholderAskAgent)
}

// letAvailable prefers the description analysis over the listed value.
func (l Listing) letAvailable() any {
	if v := l.describe("let_available"); v != nil {
		return v
	}
	return l.fields[property.FieldLetAvailable]
}

// describeOr reads key from the description analysis, falling back to the
// top-level field of the same name.
func (l Listing) describeOr(key string) any {
	if v := l.describe(key); v != nil {
		return v
	}
	return l.fields[key]
}

func labels(tags []string) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = TagLabel(t)
	}
	return out
}

func list(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	}
	return []any{}
}
