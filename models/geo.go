package models

import "strings"

const (
	// NotAvailable is the wire value used when a field could not be determined.
	NotAvailable = "N/A"

	// UnknownFlag is the glyph used when no country flag can be built.
	UnknownFlag = "❓"

	// regionalIndicatorOffset maps 'A' (65) onto REGIONAL INDICATOR SYMBOL LETTER A (U+1F1E6).
	regionalIndicatorOffset = 127397
)

// GeoInfo is the approximate location of a host.
//
// Example JSON representation:
//
//	{"city": "Frankfurt am Main", "country": "DE", "flag": "🇩🇪"}
type GeoInfo struct {
	// City is the English city name, or "N/A"/"Unknown"
	City string `json:"city"`

	// CountryCode is the ISO 3166-1 alpha-2 code, or "N/A"
	CountryCode string `json:"country"`

	// Flag is the emoji flag derived from CountryCode
	Flag string `json:"flag,omitempty"`
}

// UnknownLocation is recorded for hosts whose location could not be resolved,
// either because location lookup is disabled or the address is unmapped.
func UnknownLocation() *GeoInfo {
	return &GeoInfo{City: "Unknown", CountryCode: NotAvailable}
}

// NewGeoInfo builds a GeoInfo from raw lookup fields, substituting "N/A"
// for empty values and deriving the flag from the country code.
func NewGeoInfo(city, countryCode string) *GeoInfo {
	if city == "" {
		city = NotAvailable
	}
	if countryCode == "" {
		countryCode = NotAvailable
	}
	return &GeoInfo{
		City:        city,
		CountryCode: countryCode,
		Flag:        FlagGlyph(countryCode),
	}
}

// FlagGlyph converts a two-letter country code into its emoji flag made of
// two regional indicator symbols. Anything that is not exactly two ASCII
// letters yields UnknownFlag.
func FlagGlyph(code string) string {
	if len(code) != 2 {
		return UnknownFlag
	}
	code = strings.ToUpper(code)

	var b strings.Builder
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < 'A' || c > 'Z' {
			return UnknownFlag
		}
		b.WriteRune(rune(c) + regionalIndicatorOffset)
	}
	return b.String()
}
