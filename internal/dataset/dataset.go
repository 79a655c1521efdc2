package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Mountain is one row of the clustered mountain reference table.
type Mountain struct {
	Name        string
	Description string
	Region      string
	Height      float64
	Latitude    float64
	Longitude   float64
	Cluster     int
	Indicators  map[string]bool
}

// Detail carries descriptive attributes keyed by mountain id.
type Detail struct {
	ID       int
	Name     string
	Location string
}

// Tables holds all reference data, loaded once at startup and read-only
// afterwards.
type Tables struct {
	Mountains  []Mountain
	indicators map[string]bool
	details    map[string]Detail
	images     map[int]string
}

// Load reads the three reference CSVs. The detail table is EUC-KR encoded;
// the others are UTF-8.
func Load(mountainsPath, detailsPath, imagesPath string) (*Tables, error) {
	t := &Tables{
		indicators: make(map[string]bool),
		details:    make(map[string]Detail),
		images:     make(map[int]string),
	}

	if err := t.loadMountains(mountainsPath); err != nil {
		return nil, fmt.Errorf("load mountains: %w", err)
	}
	if err := t.loadDetails(detailsPath); err != nil {
		return nil, fmt.Errorf("load mountain details: %w", err)
	}
	if err := t.loadImages(imagesPath); err != nil {
		return nil, fmt.Errorf("load mountain images: %w", err)
	}
	return t, nil
}

// HasIndicator reports whether has_<keyword> is a known indicator column.
func (t *Tables) HasIndicator(column string) bool {
	return t.indicators[column]
}

// ByCluster returns mountains assigned to the given cluster label.
func (t *Tables) ByCluster(label int) []Mountain {
	var out []Mountain
	for _, m := range t.Mountains {
		if m.Cluster == label {
			out = append(out, m)
		}
	}
	return out
}

// ByIndicator returns mountains whose indicator column is set.
func (t *Tables) ByIndicator(column string) []Mountain {
	var out []Mountain
	for _, m := range t.Mountains {
		if m.Indicators[column] {
			out = append(out, m)
		}
	}
	return out
}

// ByRegion returns mountains whose region matches exactly.
func (t *Tables) ByRegion(region string) []Mountain {
	var out []Mountain
	for _, m := range t.Mountains {
		if m.Region == region {
			out = append(out, m)
		}
	}
	return out
}

// ImageURL resolves a mountain name to its image URL through the id key.
func (t *Tables) ImageURL(name string) (string, bool) {
	d, ok := t.details[strings.TrimSpace(name)]
	if !ok {
		return "", false
	}
	url, ok := t.images[d.ID]
	return url, ok
}

// Location resolves a mountain name to its location string.
func (t *Tables) Location(name string) (string, bool) {
	d, ok := t.details[strings.TrimSpace(name)]
	if !ok || d.Location == "" {
		return "", false
	}
	return d.Location, true
}

func (t *Tables) loadMountains(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header, rows, err := readAll(f)
	if err != nil {
		return err
	}

	col, err := columnIndex(header, "mountain_name", "mountain_description",
		"region", "mountain_height", "mountain_latitude", "mountain_longitude", "cluster")
	if err != nil {
		return err
	}

	// Everything prefixed has_ is a thematic indicator column.
	var indicatorCols []int
	for i, name := range header {
		if strings.HasPrefix(name, "has_") {
			indicatorCols = append(indicatorCols, i)
			t.indicators[name] = true
		}
	}

	for _, row := range rows {
		m := Mountain{
			Name:        strings.TrimSpace(row[col["mountain_name"]]),
			Description: row[col["mountain_description"]],
			Region:      strings.TrimSpace(row[col["region"]]),
			Indicators:  make(map[string]bool, len(indicatorCols)),
		}
		if m.Height, err = strconv.ParseFloat(row[col["mountain_height"]], 64); err != nil {
			return fmt.Errorf("row %q: parse height: %w", m.Name, err)
		}
		if m.Latitude, err = strconv.ParseFloat(row[col["mountain_latitude"]], 64); err != nil {
			return fmt.Errorf("row %q: parse latitude: %w", m.Name, err)
		}
		if m.Longitude, err = strconv.ParseFloat(row[col["mountain_longitude"]], 64); err != nil {
			return fmt.Errorf("row %q: parse longitude: %w", m.Name, err)
		}
		if m.Cluster, err = strconv.Atoi(strings.TrimSpace(row[col["cluster"]])); err != nil {
			return fmt.Errorf("row %q: parse cluster: %w", m.Name, err)
		}
		for _, i := range indicatorCols {
			v := strings.TrimSpace(row[i])
			m.Indicators[header[i]] = v == "1" || strings.EqualFold(v, "true")
		}
		t.Mountains = append(t.Mountains, m)
	}

	if len(t.Mountains) == 0 {
		return fmt.Errorf("%s: no rows", path)
	}
	return nil
}

func (t *Tables) loadDetails(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// The detail export comes from a EUC-KR database dump.
	header, rows, err := readAll(transform.NewReader(f, korean.EUCKR.NewDecoder()))
	if err != nil {
		return err
	}

	col, err := columnIndex(header, "mountain_id", "mountain_name", "mountain_location")
	if err != nil {
		return err
	}

	for _, row := range rows {
		id, err := strconv.Atoi(strings.TrimSpace(row[col["mountain_id"]]))
		if err != nil {
			return fmt.Errorf("parse mountain_id %q: %w", row[col["mountain_id"]], err)
		}
		d := Detail{
			ID:       id,
			Name:     strings.TrimSpace(row[col["mountain_name"]]),
			Location: strings.TrimSpace(row[col["mountain_location"]]),
		}
		t.details[d.Name] = d
	}
	return nil
}

func (t *Tables) loadImages(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header, rows, err := readAll(f)
	if err != nil {
		return err
	}

	col, err := columnIndex(header, "mountain_id", "mountain_img_url")
	if err != nil {
		return err
	}

	for _, row := range rows {
		id, err := strconv.Atoi(strings.TrimSpace(row[col["mountain_id"]]))
		if err != nil {
			return fmt.Errorf("parse mountain_id %q: %w", row[col["mountain_id"]], err)
		}
		t.images[id] = strings.TrimSpace(row[col["mountain_img_url"]])
	}
	return nil
}

func readAll(r io.Reader) (header []string, rows [][]string, err error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err = cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows, err = cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	return header, rows, nil
}

func columnIndex(header []string, required ...string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return col, nil
}
