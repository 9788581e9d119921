package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

// Manifest is the YAML seed file: countries own cities, cities own POIs.
type Manifest struct {
	Countries []CountryEntry `yaml:"countries"`
}

type CountryEntry struct {
	Slug       string      `yaml:"slug"`
	Name       string      `yaml:"name"`
	Code       string      `yaml:"code"`
	GeoJSONURL string      `yaml:"geojson_url"`
	Color      string      `yaml:"color"`
	Cities     []CityEntry `yaml:"cities"`
}

type CityEntry struct {
	Slug        string     `yaml:"slug"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Lat         float64    `yaml:"lat"`
	Lon         float64    `yaml:"lon"`
	Pictures    []string   `yaml:"pictures"`
	Pois        []PoiEntry `yaml:"pois"`
}

type PoiEntry struct {
	Slug         string                     `yaml:"slug"`
	Name         string                     `yaml:"name"`
	Description  string                     `yaml:"description"`
	Address      string                     `yaml:"address"`
	Website      string                     `yaml:"website"`
	Phone        string                     `yaml:"phone"`
	Lat          float64                    `yaml:"lat"`
	Lon          float64                    `yaml:"lon"`
	Category     string                     `yaml:"category"`
	Tags         []string                   `yaml:"tags"`
	ImageURL     string                     `yaml:"image_url"`
	OpeningHours map[string]OpeningDayEntry `yaml:"opening_hours"`
}

// OpeningDayEntry accepts "09:00-14:00" style ranges, at most two per day.
type OpeningDayEntry []string

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// LoadManifest reads and validates a seed file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a seed document, rejecting unknown fields.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks slugs are present and unique per kind and that every
// coordinate is in range.
func (m *Manifest) Validate() error {
	seen := map[string]bool{}
	unique := func(kind, slug string) error {
		if slug == "" {
			return fmt.Errorf("%s without slug", kind)
		}
		key := kind + "/" + slug
		if seen[key] {
			return fmt.Errorf("duplicate %s slug %q", kind, slug)
		}
		seen[key] = true
		return nil
	}

	for _, co := range m.Countries {
		if err := unique("country", co.Slug); err != nil {
			return err
		}
		for _, ci := range co.Cities {
			if err := unique("city", ci.Slug); err != nil {
				return err
			}
			if !(domain.GeoPoint{Lat: ci.Lat, Lon: ci.Lon}).Valid() {
				return fmt.Errorf("city %s: coordinates out of range", ci.Slug)
			}
			for _, p := range ci.Pois {
				if err := unique("poi", p.Slug); err != nil {
					return err
				}
				if !(domain.GeoPoint{Lat: p.Lat, Lon: p.Lon}).Valid() {
					return fmt.Errorf("poi %s: coordinates out of range", p.Slug)
				}
				if _, err := p.hours(); err != nil {
					return fmt.Errorf("poi %s: %w", p.Slug, err)
				}
			}
		}
	}
	return nil
}

func (p PoiEntry) hours() (domain.OpeningHours, error) {
	if len(p.OpeningHours) == 0 {
		return nil, nil
	}
	out := make(domain.OpeningHours, len(p.OpeningHours))
	for day, ranges := range p.OpeningHours {
		day = strings.ToLower(day)
		if !weekdays[day] {
			return nil, fmt.Errorf("unknown weekday %q", day)
		}
		if len(ranges) > 2 {
			return nil, fmt.Errorf("%s: at most two ranges per day", day)
		}
		var dh domain.DayHours
		for i, r := range ranges {
			from, to, ok := strings.Cut(r, "-")
			if !ok || !isClock(from) || !isClock(to) {
				return nil, fmt.Errorf("%s: bad range %q", day, r)
			}
			if i == 0 {
				dh.MorningOpen, dh.MorningClose = from, to
			} else {
				dh.AfternoonOpen, dh.AfternoonClose = from, to
			}
		}
		out[day] = dh
	}
	return out, nil
}

func isClock(s string) bool {
	var h, m int
	if len(s) != 5 {
		return false
	}
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return false
	}
	return h >= 0 && h < 24 && m >= 0 && m < 60
}

// Poi converts the entry into a domain POI for the given city.
func (p PoiEntry) Poi(cityID string) *domain.Poi {
	hours, _ := p.hours()
	poi := &domain.Poi{
		Slug:         p.Slug,
		Name:         p.Name,
		Description:  p.Description,
		Address:      p.Address,
		Website:      p.Website,
		Phone:        p.Phone,
		Location:     domain.GeoPoint{Lat: p.Lat, Lon: p.Lon},
		CityID:       cityID,
		ImageURL:     p.ImageURL,
		OpeningHours: hours,
	}
	if p.Category != "" {
		poi.Category = &domain.Category{Name: p.Category}
	}
	for _, t := range p.Tags {
		poi.Tags = append(poi.Tags, domain.Tag{Name: t})
	}
	return poi
}
