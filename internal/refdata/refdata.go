// Package refdata loads the static lookup tables used by the annotator and
// the location resolver: the MAD landscape catalog, the flat technology list,
// and the INSEE city→postal-code table. All three are loaded fresh at the
// start of every run and read-only afterwards.
package refdata

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"jobwarehouse/etl-service/internal/etlerr"
)

const (
	landscapeFile  = "mad_landscape.json"
	technologyFile = "technologies.json"
	postalCodeFile = "post_code_insee.csv"

	communeColumn    = "Nom_de_la_commune"
	postalCodeColumn = "Code_postal"
)

// Catalogs holds the three reference tables.
type Catalogs struct {
	// Landscape maps a tooling category to the technology names under it.
	Landscape map[string][]string
	// Technologies is the flat technology list.
	Technologies []string
	// PostalByCity maps an upper-cased commune name to its postal code.
	// The first postal code seen for a commune wins.
	PostalByCity map[string]string
}

// Load reads the three reference files from dir. Any missing file, malformed
// content or missing CSV column is a REFERENCE_LOAD error — the run must
// abort before touching the upstream API or the warehouse.
func Load(dir string) (*Catalogs, error) {
	landscape, err := loadLandscape(filepath.Join(dir, landscapeFile))
	if err != nil {
		return nil, err
	}

	technologies, err := loadTechnologies(filepath.Join(dir, technologyFile))
	if err != nil {
		return nil, err
	}

	postalByCity, err := loadPostalCodes(filepath.Join(dir, postalCodeFile))
	if err != nil {
		return nil, err
	}

	return &Catalogs{
		Landscape:    landscape,
		Technologies: technologies,
		PostalByCity: postalByCity,
	}, nil
}

func loadLandscape(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, etlerr.ReferenceLoad(fmt.Sprintf("read %s", filepath.Base(path)), err)
	}

	var landscape map[string][]string
	if err := json.Unmarshal(data, &landscape); err != nil {
		return nil, etlerr.ReferenceLoad(fmt.Sprintf("parse %s", filepath.Base(path)), err)
	}
	return landscape, nil
}

func loadTechnologies(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, etlerr.ReferenceLoad(fmt.Sprintf("read %s", filepath.Base(path)), err)
	}

	var technologies []string
	if err := json.Unmarshal(data, &technologies); err != nil {
		return nil, etlerr.ReferenceLoad(fmt.Sprintf("parse %s", filepath.Base(path)), err)
	}
	return technologies, nil
}

// loadPostalCodes parses the INSEE table: Latin-1 encoded, semicolon
// delimited, with a header row naming the commune and postal-code columns.
func loadPostalCodes(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, etlerr.ReferenceLoad(fmt.Sprintf("open %s", filepath.Base(path)), err)
	}
	defer f.Close()

	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(f))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, etlerr.ReferenceLoad(fmt.Sprintf("read %s header", filepath.Base(path)), err)
	}

	communeIdx, postalIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case communeColumn:
			communeIdx = i
		case postalCodeColumn:
			postalIdx = i
		}
	}
	if communeIdx < 0 || postalIdx < 0 {
		return nil, etlerr.ReferenceLoad(
			fmt.Sprintf("%s is missing required columns %s/%s", filepath.Base(path), communeColumn, postalCodeColumn), nil)
	}

	lookup := make(map[string]string)
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, etlerr.ReferenceLoad(fmt.Sprintf("read %s row", filepath.Base(path)), err)
		}
		if communeIdx >= len(row) || postalIdx >= len(row) {
			continue
		}

		city := strings.ToUpper(strings.TrimSpace(row[communeIdx]))
		postal := strings.TrimSpace(row[postalIdx])
		if city == "" || postal == "" {
			continue
		}
		if _, exists := lookup[city]; !exists {
			lookup[city] = postal
		}
	}

	return lookup, nil
}
