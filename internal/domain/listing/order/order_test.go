package order

import (
	"slices"
	"testing"

	"github.com/kailas-cloud/estatedash/internal/domain"
	"github.com/kailas-cloud/estatedash/internal/domain/listing"
)

func mk(id string, fields domain.Record) listing.Listing {
	f := fields.Clone()
	f["property_id"] = id
	return listing.New(f)
}

func ids(ls []listing.Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.PropertyID()
	}
	return out
}

func TestSort_CriteriaMatch(t *testing.T) {
	ls := []listing.Listing{
		mk("one", domain.Record{"matched_criteria": []any{"a"}}),
		mk("three", domain.Record{"matched_criteria": []any{"a", "b", "c"}}),
		mk("zero", domain.Record{}),
	}
	o, err := Parse("Criteria Match: Most to Least")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := ids(Sort(ls, o, listing.ModeSales))
	want := []string{"three", "one", "zero"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSort_PriceReversal(t *testing.T) {
	ls := []listing.Listing{
		mk("b", domain.Record{"price": 500000.0}),
		mk("a", domain.Record{"price": "£250,000"}),
		mk("d", domain.Record{"price": 900000.0}),
		mk("c", domain.Record{"price": 650000.0}),
		mk("unpriced", domain.Record{"price": "Ask agent"}),
	}
	asc := ids(Sort(ls, PriceAsc, listing.ModeSales))
	desc := ids(Sort(ls, PriceDesc, listing.ModeSales))

	if !slices.Equal(asc, []string{"unpriced", "a", "b", "c", "d"}) {
		t.Fatalf("asc = %v", asc)
	}
	reversed := slices.Clone(asc)
	slices.Reverse(reversed)
	if !slices.Equal(desc, reversed) {
		t.Errorf("desc %v is not the reverse of asc %v", desc, asc)
	}
}

func TestSort_RentalUsesMonthlyRent(t *testing.T) {
	ls := []listing.Listing{
		mk("x", domain.Record{"monthly_rent": 2000.0, "price": 1.0}),
		mk("y", domain.Record{"monthly_rent": 1500.0, "price": 9.0}),
	}
	got := ids(Sort(ls, PriceAsc, listing.ModeRental))
	if !slices.Equal(got, []string{"y", "x"}) {
		t.Errorf("got %v", got)
	}
}

func TestSort_MissingKeys(t *testing.T) {
	ls := []listing.Listing{
		mk("none1", domain.Record{}),
		mk("two", domain.Record{"num_bedrooms": 2.0, "distance_to_preferred_location": 3.0}),
		mk("none2", domain.Record{}),
		mk("four", domain.Record{"num_bedrooms": 4.0, "distance_to_preferred_location": 1.0}),
	}
	if got := ids(Sort(ls, BedroomsDesc, listing.ModeSales)); !slices.Equal(got, []string{"four", "two", "none1", "none2"}) {
		t.Errorf("bedrooms: got %v", got)
	}
	if got := ids(Sort(ls, DistanceAsc, listing.ModeSales)); !slices.Equal(got, []string{"four", "two", "none1", "none2"}) {
		t.Errorf("distance: got %v", got)
	}
}

func TestSort_StableTies(t *testing.T) {
	ls := []listing.Listing{
		mk("first", domain.Record{"distance_to_preferred_location": 1.0}),
		mk("second", domain.Record{"distance_to_preferred_location": 1.0}),
		mk("closest", domain.Record{"distance_to_preferred_location": 0.5}),
	}
	got := ids(Sort(ls, DistanceAsc, ""))
	if !slices.Equal(got, []string{"closest", "first", "second"}) {
		t.Errorf("got %v", got)
	}
}

func TestSort_CommuteAndNewest(t *testing.T) {
	ls := []listing.Listing{
		mk("old-slow", domain.Record{"created_at": "2024-01-01T00:00:00Z", "journey": map[string]any{"total": 50.0}}),
		mk("new-fast", domain.Record{"created_at": "2024-06-01T00:00:00Z", "journey": 10.0}),
		mk("undated", domain.Record{}),
	}
	if got := ids(Sort(ls, CommuteAsc, "")); !slices.Equal(got, []string{"new-fast", "old-slow", "undated"}) {
		t.Errorf("commute: got %v", got)
	}
	if got := ids(Sort(ls, Newest, "")); !slices.Equal(got, []string{"new-fast", "old-slow", "undated"}) {
		t.Errorf("newest: got %v", got)
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	ls := []listing.Listing{mk("b", domain.Record{"price": 2.0}), mk("a", domain.Record{"price": 1.0})}
	_ = Sort(ls, PriceAsc, "")
	if ls[0].PropertyID() != "b" {
		t.Error("input slice reordered")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Order
	}{
		{"", CriteriaMatch},
		{"price_desc", PriceDesc},
		{"Rent: Low to High", PriceAsc},
		{"price: high to low", PriceDesc},
		{"Newest First", Newest},
		{"Closest to the preferred location", DistanceAsc},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if _, err := Parse("cheapest"); err == nil {
		t.Error("expected error for unknown order")
	}
}

func TestLabelsAndOptions(t *testing.T) {
	if PriceAsc.Label(listing.ModeRental) != "Rent: Low to High" {
		t.Errorf("rental label = %q", PriceAsc.Label(listing.ModeRental))
	}
	if PriceAsc.Label(listing.ModeSales) != "Price: Low to High" {
		t.Errorf("sales label = %q", PriceAsc.Label(listing.ModeSales))
	}
	opts := Options(listing.ModeSales)
	if len(opts) != 7 || opts[0].Key != Default {
		t.Errorf("unexpected options: %v", opts)
	}
}
