package analytics

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"kaamgarau/internal/core"
)

// Category is the closed set of project categories with a fixed chart style.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryDesign
	CategoryDevelopment
	CategoryWriting
	CategoryMarketing
)

// DefaultColor is used for categories outside the known set.
const DefaultColor = "#A78BFA"

var knownCategories = []Category{CategoryDesign, CategoryDevelopment, CategoryWriting, CategoryMarketing}

var ErrInvalidCatalog = errors.New("invalid category catalog")

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ParseCategory matches the known names case-insensitively. It is used for
// catalog keys; event categories are matched exactly by Resolve.
func ParseCategory(name string) Category {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "design":
		return CategoryDesign
	case "development":
		return CategoryDevelopment
	case "writing":
		return CategoryWriting
	case "marketing":
		return CategoryMarketing
	default:
		return CategoryUnknown
	}
}

func (c Category) String() string {
	switch c {
	case CategoryDesign:
		return "Design"
	case CategoryDevelopment:
		return "Development"
	case CategoryWriting:
		return "Writing"
	case CategoryMarketing:
		return "Marketing"
	default:
		return "Unknown"
	}
}

// Style is how a category is drawn.
type Style struct {
	Name  core.Label
	Color string
}

// Catalog resolves raw category names to chart styles. It is read-only after
// construction and safe for concurrent use.
type Catalog struct {
	styles       map[Category]Style
	defaultColor string
}

// DefaultCatalog returns the built-in styles.
func DefaultCatalog() *Catalog {
	return &Catalog{
		styles: map[Category]Style{
			CategoryDesign:      {Name: core.Label{EN: "Design", NP: "डिजाइन"}, Color: "#34D399"},
			CategoryDevelopment: {Name: core.Label{EN: "Development", NP: "विकास"}, Color: "#60A5FA"},
			CategoryWriting:     {Name: core.Label{EN: "Writing", NP: "लेखन"}, Color: "#FBBF24"},
			CategoryMarketing:   {Name: core.Label{EN: "Marketing", NP: "मार्केटिङ"}, Color: "#F87171"},
		},
		defaultColor: DefaultColor,
	}
}

// Resolve returns the display name and colour for a raw category string.
// Only the exact canonical spelling gets a known style; anything else,
// including "design" or " Design", keeps its raw name in both languages.
func (c *Catalog) Resolve(raw string) (core.Label, string) {
	if cat := ParseCategory(raw); cat != CategoryUnknown && raw == cat.String() {
		if style, ok := c.styles[cat]; ok {
			return style.Name, style.Color
		}
	}
	return core.Label{EN: raw, NP: raw}, c.defaultColor
}

// Style returns the style for a known category.
func (c *Catalog) Style(cat Category) (Style, bool) {
	s, ok := c.styles[cat]
	return s, ok
}

// Known lists the catalog entries in their canonical order.
func (c *Catalog) Known() []Style {
	out := make([]Style, 0, len(knownCategories))
	for _, cat := range knownCategories {
		out = append(out, c.styles[cat])
	}
	return out
}

type catalogFile struct {
	DefaultColor string                  `toml:"default_color"`
	Categories   map[string]catalogEntry `toml:"categories"`
}

type catalogEntry struct {
	NP    string `toml:"np"`
	Color string `toml:"color"`
}

// LoadCatalog overlays a TOML file onto the default catalog. An empty path or
// a missing file yields the defaults. Only the four known categories may be
// restyled:
//
//	default_color = "#A78BFA"
//
//	[categories.Design]
//	np = "डिजाइन"
//	color = "#10B981"
func LoadCatalog(path string) (*Catalog, error) {
	catalog := DefaultCatalog()
	if path == "" {
		return catalog, nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return catalog, nil
		}
		return nil, fmt.Errorf("stat catalog: %w", err)
	}

	var file catalogFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}

	if file.DefaultColor != "" {
		if !colorPattern.MatchString(file.DefaultColor) {
			return nil, fmt.Errorf("%w: default_color %q", ErrInvalidCatalog, file.DefaultColor)
		}
		catalog.defaultColor = file.DefaultColor
	}

	for name, entry := range file.Categories {
		cat := ParseCategory(name)
		if cat == CategoryUnknown {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidCatalog, name)
		}
		style := catalog.styles[cat]
		if entry.Color != "" {
			if !colorPattern.MatchString(entry.Color) {
				return nil, fmt.Errorf("%w: color %q for %s", ErrInvalidCatalog, entry.Color, name)
			}
			style.Color = entry.Color
		}
		if entry.NP != "" {
			style.Name.NP = entry.NP
		}
		catalog.styles[cat] = style
	}

	return catalog, nil
}
