// Package property holds the canonical PropertyRecord schema.
package property

import (
	"encoding/base64"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

// Canonical field names. Upstream ingestion has written several spellings
// over time; Canonicalize maps them onto these.
const (
	FieldAddress          = "address"
	FieldPostcode         = "postcode"
	FieldPrice            = "price"
	FieldMonthlyRent      = "monthly_rent"
	FieldBedrooms         = "num_bedrooms"
	FieldBathrooms        = "num_bathrooms"
	FieldLatitude         = "latitude"
	FieldLongitude        = "longitude"
	FieldStations         = "stations"
	FieldFeatures         = "features"
	FieldImages           = "compressed_images"
	FieldFloorplan        = "floorplan"
	FieldEPC              = "epc"
	FieldTenureType       = "tenure_type"
	FieldServiceCharge    = "service_charge"
	FieldLengthOfLease    = "length_of_lease"
	FieldGroundRent       = "ground_rent"
	FieldDeposit          = "deposit"
	FieldFurnishType      = "furnish_type"
	FieldLetAvailable     = "let_available"
	FieldMinTenancyMonths = "minimum_tenancy_months"
	FieldCouncilTaxBand   = "council_tax_band"
)

// legacyFields maps historical spellings to canonical names.
var legacyFields = map[string]string{
	"tenureType":          FieldTenureType,
	"floorplans":          FieldFloorplan,
	"annualServiceCharge": FieldServiceCharge,
	"lengthOfLease":       FieldLengthOfLease,
	"groundRent":          FieldGroundRent,
	"monthlyRent":         FieldMonthlyRent,
	"furnishType":         FieldFurnishType,
	"letAvailable":        FieldLetAvailable,
	"councilTaxBand":      FieldCouncilTaxBand,
}

// Canonicalize returns a copy of r with legacy field names renamed and a
// structured address flattened to its display string. A canonical value
// already present wins over its legacy spelling.
func Canonicalize(r domain.Record) domain.Record {
	out := r.Clone()
	for legacy, canonical := range legacyFields {
		v, ok := out[legacy]
		if !ok {
			continue
		}
		if !out.Has(canonical) {
			out[canonical] = v
		}
		delete(out, legacy)
	}

	if addr := out.Map(FieldAddress); addr != nil {
		if display := addr.String("displayAddress"); display != "" {
			out[FieldAddress] = display
		} else {
			delete(out, FieldAddress)
		}
	}
	return out
}

// Validate checks the minimum shape of a property document.
func Validate(r domain.Record) error {
	if r.ID() == "" {
		return domain.NewValidationError(domain.FieldID, "is required")
	}
	return nil
}

// ImagePayloads extracts base64 image payloads. Entries may be plain strings
// or objects carrying a "base64" field; anything else yields an empty slot so
// indexes stay aligned with the stored list.
func ImagePayloads(r domain.Record) []string {
	raw, ok := r[FieldImages].([]any)
	if !ok {
		if ss, ok := r[FieldImages].([]string); ok {
			return ss
		}
		return nil
	}
	out := make([]string, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case string:
			out[i] = v
		case map[string]any:
			out[i], _ = v["base64"].(string)
		}
	}
	return out
}

// DecodeImage decodes one base64 payload. Standard, URL-safe and unpadded
// encodings are all accepted.
func DecodeImage(payload string) ([]byte, error) {
	if payload == "" {
		return nil, domain.ErrDecode
	}
	for _, enc := range imageEncodings {
		if b, err := enc.DecodeString(payload); err == nil {
			return b, nil
		}
	}
	return nil, domain.ErrDecode
}

var imageEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}
