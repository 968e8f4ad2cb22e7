package mawaqit

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Country is one entry of the mosque directory index.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Mosque is one directory entry as stored in the per-country JSON files.
type Mosque struct {
	Name    string   `json:"name"`
	City    string   `json:"city"`
	Address string   `json:"address"`
	Zipcode string   `json:"zipcode"`
	Slug    string   `json:"slug"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	// Text is the combined display label, filled by Directory.Mosques.
	Text string `json:"text,omitempty"`
}

// Directory serves the local per-country mosque files.
type Directory struct {
	dir string
}

// NewDirectory points at the directory holding <country>.json files.
func NewDirectory(dir string) *Directory {
	return &Directory{dir: dir}
}

var trailingDigits = regexp.MustCompile(`\d+$`)

// countryDisplayName turns "saudi_arabia_2023" into "SAUDI ARABIA".
func countryDisplayName(stem string) string {
	name := trailingDigits.ReplaceAllString(stem, "")
	name = strings.TrimSuffix(name, "_")
	return strings.ToUpper(strings.ReplaceAll(name, "_", " "))
}

// Countries lists the countries with mosque data, sorted by code.
func (d *Directory) Countries() ([]Country, error) {
	files, err := filepath.Glob(filepath.Join(d.dir, "*.json"))
	if err != nil {
		return nil, err
	}

	countries := make([]Country, 0, len(files))
	for _, f := range files {
		stem := strings.TrimSuffix(filepath.Base(f), ".json")
		countries = append(countries, Country{Code: stem, Name: countryDisplayName(stem)})
	}
	sort.Slice(countries, func(i, j int) bool { return countries[i].Code < countries[j].Code })

	return countries, nil
}

// Mosques lists the mosques of one country with display labels filled in.
// A missing country file yields an empty list, not an error.
func (d *Directory) Mosques(countryCode string) ([]Mosque, error) {
	path := filepath.Join(d.dir, countryCode+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("country", countryCode).Msg("no mosque file for country")
			return []Mosque{}, nil
		}
		return nil, err
	}

	var mosques []Mosque
	if err := json.Unmarshal(data, &mosques); err != nil {
		return nil, err
	}

	for i := range mosques {
		m := &mosques[i]
		parts := make([]string, 0, 5)
		for _, p := range []string{m.Name, m.City, m.Address, m.Zipcode, m.Slug} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		m.Text = strings.Join(parts, " - ")
	}

	return mosques, nil
}
