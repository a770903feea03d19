// Package catalog serves the static content shipped with Respira: breathing
// techniques, the reading library, ambient tracks, subscription plans and chat
// themes. The data is embedded YAML and never changes at runtime.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	apperrors "github.com/faycal55/respira/pkg/errors"
	"github.com/faycal55/respira/pkg/slug"

	"github.com/faycal55/respira/internal/domain"
)

// AllCategories selects every book or track.
const AllCategories = "Toutes"

//go:embed catalog.yaml
var embedded []byte

type document struct {
	Techniques []domain.BreathingTechnique `yaml:"techniques"`
	Books      []domain.Book               `yaml:"books"`
	Tracks     []domain.Track              `yaml:"tracks"`
	Plans      []domain.Plan               `yaml:"plans"`
	Themes     []domain.ConversationTheme  `yaml:"themes"`
}

// Catalog is an immutable, indexed view of the content. Accessors return copies.
type Catalog struct {
	doc        document
	techniques map[string]int
	books      map[string]int
	tracks     map[string]int
	plans      map[string]int
	themes     map[string]int
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is
// invalid, which the package tests rule out.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embedded)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded data: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Parse decodes and validates a catalog document. Books and tracks without an
// id get the slug of their title.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{}
	var err error
	if c.techniques, err = index(doc.Techniques, func(t domain.BreathingTechnique) string { return t.ID }); err != nil {
		return nil, fmt.Errorf("techniques: %w", err)
	}
	for i := range doc.Techniques {
		if err := doc.Techniques[i].Validate(); err != nil {
			return nil, err
		}
	}

	for i := range doc.Books {
		if doc.Books[i].ID == "" {
			doc.Books[i].ID = slug.Generate(doc.Books[i].Title)
		}
	}
	if c.books, err = index(doc.Books, func(b domain.Book) string { return b.ID }); err != nil {
		return nil, fmt.Errorf("books: %w", err)
	}

	for i := range doc.Tracks {
		if doc.Tracks[i].ID == "" {
			doc.Tracks[i].ID = slug.Generate(doc.Tracks[i].Title)
		}
	}
	if c.tracks, err = index(doc.Tracks, func(t domain.Track) string { return t.ID }); err != nil {
		return nil, fmt.Errorf("tracks: %w", err)
	}
	if c.plans, err = index(doc.Plans, func(p domain.Plan) string { return p.ID }); err != nil {
		return nil, fmt.Errorf("plans: %w", err)
	}
	if c.themes, err = index(doc.Themes, func(t domain.ConversationTheme) string { return t.ID }); err != nil {
		return nil, fmt.Errorf("themes: %w", err)
	}
	c.doc = doc
	return c, nil
}

func index[T any](items []T, id func(T) string) (map[string]int, error) {
	m := make(map[string]int, len(items))
	for i, it := range items {
		key := id(it)
		if key == "" {
			return nil, fmt.Errorf("entry %d has no id", i)
		}
		if _, dup := m[key]; dup {
			return nil, fmt.Errorf("duplicate id %q", key)
		}
		m[key] = i
	}
	return m, nil
}

// Techniques returns the breathing techniques in catalog order.
func (c *Catalog) Techniques() []domain.BreathingTechnique {
	out := make([]domain.BreathingTechnique, len(c.doc.Techniques))
	for i, t := range c.doc.Techniques {
		t.Phases = slices.Clone(t.Phases)
		out[i] = t
	}
	return out
}

// Technique looks a technique up by id.
func (c *Catalog) Technique(id string) (*domain.BreathingTechnique, error) {
	i, ok := c.techniques[id]
	if !ok {
		return nil, apperrors.NotFound("technique", id)
	}
	t := c.doc.Techniques[i]
	t.Phases = slices.Clone(t.Phases)
	return &t, nil
}

// BookFilter narrows the library. Empty fields and AllCategories match everything.
type BookFilter struct {
	Category string
	Search   string
}

// Books returns the books matching f. Search is a case-insensitive substring
// match on title, author and theme.
func (c *Catalog) Books(f BookFilter) []domain.Book {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	out := []domain.Book{}
	for _, b := range c.doc.Books {
		if !matchCategory(f.Category, b.Category) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(b.Title), q) &&
			!strings.Contains(strings.ToLower(b.Author), q) &&
			!strings.Contains(strings.ToLower(b.Theme), q) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (c *Catalog) Book(id string) (*domain.Book, error) {
	i, ok := c.books[id]
	if !ok {
		return nil, apperrors.NotFound("book", id)
	}
	b := c.doc.Books[i]
	return &b, nil
}

// BookCategories lists the library categories in first-seen order, prefixed
// with AllCategories.
func (c *Catalog) BookCategories() []string {
	return categories(c.doc.Books, func(b domain.Book) string { return b.Category })
}

// Tracks returns the tracks of category.
func (c *Catalog) Tracks(category string) []domain.Track {
	out := []domain.Track{}
	for _, t := range c.doc.Tracks {
		if matchCategory(category, t.Category) {
			out = append(out, t)
		}
	}
	return out
}

func (c *Catalog) Track(id string) (*domain.Track, error) {
	i, ok := c.tracks[id]
	if !ok {
		return nil, apperrors.NotFound("track", id)
	}
	t := c.doc.Tracks[i]
	return &t, nil
}

func (c *Catalog) TrackCategories() []string {
	return categories(c.doc.Tracks, func(t domain.Track) string { return t.Category })[1:]
}

func (c *Catalog) Plans() []domain.Plan {
	out := make([]domain.Plan, len(c.doc.Plans))
	for i, p := range c.doc.Plans {
		p.Features = slices.Clone(p.Features)
		out[i] = p
	}
	return out
}

func (c *Catalog) Plan(id string) (*domain.Plan, error) {
	i, ok := c.plans[id]
	if !ok {
		return nil, apperrors.NotFound("plan", id)
	}
	p := c.doc.Plans[i]
	p.Features = slices.Clone(p.Features)
	return &p, nil
}

func (c *Catalog) Themes() []domain.ConversationTheme {
	return slices.Clone(c.doc.Themes)
}

func (c *Catalog) Theme(id string) (*domain.ConversationTheme, error) {
	i, ok := c.themes[id]
	if !ok {
		return nil, apperrors.NotFound("theme", id)
	}
	t := c.doc.Themes[i]
	return &t, nil
}

func matchCategory(want, got string) bool {
	return want == "" || want == AllCategories || want == got
}

func categories[T any](items []T, cat func(T) string) []string {
	out := []string{AllCategories}
	for _, it := range items {
		if c := cat(it); !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
