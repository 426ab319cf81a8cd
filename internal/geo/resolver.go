// Package geo resolves host addresses to approximate locations using a
// local MaxMind GeoLite2 City database.
package geo

import (
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"

	"evalgo.org/fleetstatus/models"
)

// Resolver looks up the location of an address. It returns nil when the
// address cannot be resolved; lookups never fail the caller.
type Resolver interface {
	Lookup(address string) *models.GeoInfo
	Enabled() bool
}

// cityReader is the subset of *geoip2.Reader used by the resolver.
type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// MaxMindResolver resolves addresses against a GeoLite2 City database.
// A zero or disabled resolver resolves nothing.
type MaxMindResolver struct {
	reader cityReader
	logger *slog.Logger

	closeOnce sync.Once
}

// Open loads the database at path. If the database is missing or cannot be
// read, Open logs once and returns a disabled resolver; location lookup then
// stays off for the lifetime of the process.
func Open(path string, logger *slog.Logger) *MaxMindResolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &MaxMindResolver{logger: logger}

	if path == "" {
		logger.Warn("geoip database not configured, location lookups disabled")
		return r
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		logger.Warn("geoip database unavailable, location lookups disabled",
			"path", path,
			"error", err)
		return r
	}

	logger.Info("geoip database loaded", "path", path)
	r.reader = reader
	return r
}

// Enabled reports whether a database is loaded.
func (r *MaxMindResolver) Enabled() bool {
	return r != nil && r.reader != nil
}

// Lookup returns the location of address, or nil if lookups are disabled,
// the address is not an IP, or the database has no entry for it.
func (r *MaxMindResolver) Lookup(address string) *models.GeoInfo {
	if !r.Enabled() {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		r.logger.Debug("geo lookup skipped, address is not an IP", "address", address)
		return nil
	}

	record, err := r.reader.City(ip)
	if err != nil {
		r.logger.Debug("geo lookup failed", "address", address, "error", err)
		return nil
	}
	return fromCity(record)
}

// Close releases the database. It is safe to call more than once.
func (r *MaxMindResolver) Close() error {
	if !r.Enabled() {
		return nil
	}
	var err error
	r.closeOnce.Do(func() {
		if cerr := r.reader.Close(); cerr != nil {
			err = fmt.Errorf("close geoip database: %w", cerr)
		}
	})
	return err
}

// fromCity converts a database record. A record carrying no data at all
// means the network is not in the database (private ranges, reserved
// blocks); a record with partial data becomes "N/A" fields.
func fromCity(c *geoip2.City) *models.GeoInfo {
	if c == nil || isEmptyRecord(c) {
		return nil
	}
	return models.NewGeoInfo(c.City.Names["en"], c.Country.IsoCode)
}

func isEmptyRecord(c *geoip2.City) bool {
	return len(c.City.Names) == 0 &&
		c.Country.IsoCode == "" &&
		c.RegisteredCountry.IsoCode == "" &&
		c.Continent.Code == "" &&
		c.Location.Latitude == 0 && c.Location.Longitude == 0
}

