// Package catalog holds the storefront's static content and the pure
// functions that turn it into what the page shows: the filtered, sorted and
// paginated product grid, overlay search results and formatted prices.
//
// The content ships as YAML embedded in the binary. [Load] reads an
// alternative file with the same shape.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var defaultData []byte

// Category is a product family shown as a filter pill.
type Category struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Icon  string `yaml:"icon" json:"icon"`
	Count int    `yaml:"count" json:"count,omitempty"`
}

// Product is one item of the catalog grid.
type Product struct {
	ID          int    `yaml:"id" json:"id"`
	Category    string `yaml:"category" json:"category"`
	Name        string `yaml:"name" json:"name"`
	Dimensions  string `yaml:"dimensions" json:"dimensions"`
	Price       int    `yaml:"price" json:"price"`
	Image       string `yaml:"image" json:"image"`
	Featured    bool   `yaml:"featured" json:"featured"`
	New         bool   `yaml:"new" json:"new"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// Testimonial is a customer review shown in the carousel.
type Testimonial struct {
	ID       int    `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Location string `yaml:"location" json:"location"`
	Product  string `yaml:"product" json:"product"`
	Text     string `yaml:"text" json:"text"`
	Rating   int    `yaml:"rating" json:"rating"`
	// Date is the review month as YYYY-MM.
	Date string `yaml:"date" json:"date"`
}

// GalleryItem is a photo of finished work.
type GalleryItem struct {
	ID       int    `yaml:"id" json:"id"`
	Src      string `yaml:"src" json:"src"`
	Thumb    string `yaml:"thumb" json:"thumb"`
	Alt      string `yaml:"alt" json:"alt"`
	Category string `yaml:"category" json:"category"`
	Featured bool   `yaml:"featured" json:"featured"`
}

// Hours are the opening times as display strings.
type Hours struct {
	Weekdays string `yaml:"weekdays" json:"weekdays"`
	Saturday string `yaml:"saturday" json:"saturday"`
	Sunday   string `yaml:"sunday" json:"sunday"`
}

// Social holds the store's profile links.
type Social struct {
	Instagram string `yaml:"instagram" json:"instagram"`
	Facebook  string `yaml:"facebook" json:"facebook"`
	WhatsApp  string `yaml:"whatsapp" json:"whatsapp"`
}

// MapPosition centres the embedded map.
type MapPosition struct {
	Lat  float64 `yaml:"lat" json:"lat"`
	Lng  float64 `yaml:"lng" json:"lng"`
	Zoom int     `yaml:"zoom" json:"zoom"`
}

// Contact is the store's contact card.
type Contact struct {
	Address      string      `yaml:"address" json:"address"`
	Phone        string      `yaml:"phone" json:"phone"`
	PhoneDisplay string      `yaml:"phone_display" json:"phoneDisplay"`
	Email        string      `yaml:"email" json:"email"`
	Hours        Hours       `yaml:"hours" json:"hours"`
	Social       Social      `yaml:"social" json:"social"`
	Map          MapPosition `yaml:"map" json:"map"`
}

// Catalog is the full static content of the site.
type Catalog struct {
	Categories   []Category    `yaml:"categories" json:"categories"`
	Products     []Product     `yaml:"products" json:"products"`
	Testimonials []Testimonial `yaml:"testimonials" json:"testimonials"`
	Gallery      []GalleryItem `yaml:"gallery" json:"gallery"`
	Contact      Contact       `yaml:"contact" json:"contact"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog. It panics if the embedded data is
// invalid, which the package tests rule out.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(bytes.NewReader(defaultData))
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded data: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load parses and validates catalog YAML.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Validate checks ids and cross references. All problems are reported
// together.
func (c *Catalog) Validate() error {
	var errs []error

	categories := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		switch {
		case strings.TrimSpace(cat.ID) == "":
			errs = append(errs, fmt.Errorf("categories[%d]: id is required", i))
		case cat.ID == "all":
			errs = append(errs, fmt.Errorf("categories[%d]: id %q is reserved", i, cat.ID))
		case categories[cat.ID]:
			errs = append(errs, fmt.Errorf("categories[%d] (%s): duplicate id", i, cat.ID))
		}
		categories[cat.ID] = true
	}

	products := make(map[int]bool, len(c.Products))
	for i, p := range c.Products {
		if products[p.ID] {
			errs = append(errs, fmt.Errorf("products[%d] (%s): duplicate id %d", i, p.Name, p.ID))
		}
		products[p.ID] = true
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, fmt.Errorf("products[%d]: name is required", i))
		}
		if !categories[p.Category] {
			errs = append(errs, fmt.Errorf("products[%d] (%s): unknown category %q", i, p.Name, p.Category))
		}
		if p.Price < 0 {
			errs = append(errs, fmt.Errorf("products[%d] (%s): price must not be negative", i, p.Name))
		}
	}

	for i, t := range c.Testimonials {
		if t.Rating < 1 || t.Rating > 5 {
			errs = append(errs, fmt.Errorf("testimonials[%d] (%s): rating must be between 1 and 5", i, t.Name))
		}
	}

	return errors.Join(errs...)
}

// Product returns the product with id.
func (c *Catalog) Product(id int) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// HasCategory reports whether id is a category or [All].
func (c *Catalog) HasCategory(id string) bool {
	if id == All {
		return true
	}
	for _, cat := range c.Categories {
		if cat.ID == id {
			return true
		}
	}
	return false
}

// All is the pseudo-category that matches every product.
const All = "all"

// Pills returns the category filters with the "all" pill first.
func (c *Catalog) Pills() []Category {
	pills := make([]Category, 0, len(c.Categories)+1)
	pills = append(pills, Category{ID: All, Name: "Todos", Icon: "grid_view"})
	return append(pills, c.Categories...)
}
