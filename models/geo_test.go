package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagGlyph(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"DE", "🇩🇪"},
		{"us", "🇺🇸"},
		{"Nl", "🇳🇱"},
		{"", UnknownFlag},
		{"N/A", UnknownFlag},
		{"D", UnknownFlag},
		{"DEU", UnknownFlag},
		{"1A", UnknownFlag},
		{"A-", UnknownFlag},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, FlagGlyph(tt.code))
		})
	}
}

func TestNewGeoInfo(t *testing.T) {
	t.Run("full data", func(t *testing.T) {
		g := NewGeoInfo("Frankfurt am Main", "DE")
		assert.Equal(t, "Frankfurt am Main", g.City)
		assert.Equal(t, "DE", g.CountryCode)
		assert.Equal(t, "🇩🇪", g.Flag)
	})

	t.Run("no data", func(t *testing.T) {
		g := NewGeoInfo("", "")
		assert.Equal(t, &GeoInfo{City: NotAvailable, CountryCode: NotAvailable, Flag: UnknownFlag}, g)
	})

	t.Run("country only", func(t *testing.T) {
		g := NewGeoInfo("", "FR")
		assert.Equal(t, NotAvailable, g.City)
		assert.Equal(t, "🇫🇷", g.Flag)
	})
}

func TestUnknownLocation(t *testing.T) {
	g := UnknownLocation()
	assert.Equal(t, "Unknown", g.City)
	assert.Equal(t, NotAvailable, g.CountryCode)
	assert.Empty(t, g.Flag)
}
