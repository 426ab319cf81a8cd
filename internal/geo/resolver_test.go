package geo

import (
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/fleetstatus/models"
)

type fakeReader struct {
	records map[string]*geoip2.City
	err     error
	closed  int
}

func (f *fakeReader) City(ip net.IP) (*geoip2.City, error) {
	if f.err != nil {
		return nil, f.err
	}
	if rec, ok := f.records[ip.String()]; ok {
		return rec, nil
	}
	return &geoip2.City{}, nil
}

func (f *fakeReader) Close() error {
	f.closed++
	return nil
}

func cityRecord(city, country string) *geoip2.City {
	rec := &geoip2.City{}
	if city != "" {
		rec.City.Names = map[string]string{"en": city}
	}
	rec.Country.IsoCode = country
	return rec
}

func TestOpen_MissingDatabase(t *testing.T) {
	r := Open(filepath.Join(t.TempDir(), "missing.mmdb"), nil)

	assert.False(t, r.Enabled())
	assert.Nil(t, r.Lookup("8.8.8.8"))
	assert.NoError(t, r.Close())
}

func TestOpen_EmptyPath(t *testing.T) {
	r := Open("", nil)
	assert.False(t, r.Enabled())
}

func TestMaxMindResolver_Lookup(t *testing.T) {
	noCity := &geoip2.City{}
	noCity.Continent.Code = "EU"

	reader := &fakeReader{records: map[string]*geoip2.City{
		"203.0.113.10": cityRecord("Frankfurt am Main", "DE"),
		"203.0.113.11": noCity,
		"2001:db8::1":  cityRecord("", "NL"),
	}}
	r := &MaxMindResolver{reader: reader, logger: discardLogger()}

	tests := []struct {
		name    string
		address string
		want    *models.GeoInfo
	}{
		{"full record", "203.0.113.10", &models.GeoInfo{City: "Frankfurt am Main", CountryCode: "DE", Flag: "🇩🇪"}},
		{"record without location data", "203.0.113.11", &models.GeoInfo{City: "N/A", CountryCode: "N/A", Flag: "❓"}},
		{"ipv6 country only", "2001:db8::1", &models.GeoInfo{City: "N/A", CountryCode: "NL", Flag: "🇳🇱"}},
		{"unmapped private range", "10.0.0.1", nil},
		{"hostname", "host.example.net", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Lookup(tt.address))
		})
	}
}

func TestMaxMindResolver_LookupError(t *testing.T) {
	r := &MaxMindResolver{reader: &fakeReader{err: errors.New("corrupt")}, logger: discardLogger()}
	assert.Nil(t, r.Lookup("8.8.8.8"))
}

func TestMaxMindResolver_CloseOnce(t *testing.T) {
	reader := &fakeReader{}
	r := &MaxMindResolver{reader: reader, logger: discardLogger()}

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, 1, reader.closed)
}
