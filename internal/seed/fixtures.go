package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"pitchside/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures.yml
var defaultFixtures []byte

// Fixtures is the reference data kept in fixtures.yml.
type Fixtures struct {
	Categories  []CategoryFixture   `yaml:"categories"`
	SocialLinks []SocialLinkFixture `yaml:"socialLinks"`
	BaseURLs    []BaseURLFixture    `yaml:"baseURLs"`
}

type CategoryFixture struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

type SocialLinkFixture struct {
	Platform string `yaml:"platform"`
	URL      string `yaml:"url"`
	Icon     string `yaml:"icon"`
	Order    int    `yaml:"order"`
}

type BaseURLFixture struct {
	Name  string `yaml:"name"`
	URL   string `yaml:"url"`
	Order int    `yaml:"order"`
}

// DefaultFixtures returns the embedded fixtures.
func DefaultFixtures() (*Fixtures, error) {
	return ParseFixtures(bytes.NewReader(defaultFixtures))
}

// LoadFixtures reads fixtures from a YAML file.
func LoadFixtures(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return ParseFixtures(f)
}

// ParseFixtures decodes YAML fixtures. Unknown keys are rejected.
func ParseFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	for i, c := range fx.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("category fixture %d has no name", i)
		}
	}
	return &fx, nil
}

// FixtureResult counts the rows created by ApplyFixtures.
type FixtureResult struct {
	Categories  int
	SocialLinks int
	BaseURLs    int
}

// ApplyFixtures inserts the fixtures that are not stored yet.
func ApplyFixtures(ctx context.Context, db *gorm.DB, fx *Fixtures) (FixtureResult, error) {
	var res FixtureResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range fx.Categories {
			slug := models.Slugify(c.Slug)
			if slug == "" {
				slug = models.Slugify(c.Name)
			}
			created, err := firstOrCreate(tx, &models.Category{
				Name:        c.Name,
				Slug:        slug,
				Description: c.Description,
				Icon:        c.Icon,
			}, "slug = ?", slug)
			if err != nil {
				return fmt.Errorf("category %q: %w", c.Name, err)
			}
			if created {
				res.Categories++
			}
		}

		for _, l := range fx.SocialLinks {
			link := &models.SocialLink{Platform: l.Platform, URL: l.URL, Icon: l.Icon, Order: l.Order}
			link.SetDefaults()
			created, err := firstOrCreate(tx, link, "platform = ?", l.Platform)
			if err != nil {
				return fmt.Errorf("social link %q: %w", l.Platform, err)
			}
			if created {
				res.SocialLinks++
			}
		}

		for _, b := range fx.BaseURLs {
			u := &models.BaseURL{Name: b.Name, URL: b.URL, Order: b.Order}
			u.SetDefaults()
			created, err := firstOrCreate(tx, u, "name = ?", b.Name)
			if err != nil {
				return fmt.Errorf("base url %q: %w", b.Name, err)
			}
			if created {
				res.BaseURLs++
			}
		}
		return nil
	})
	return res, err
}

// firstOrCreate stores rec unless a row matching the condition exists.
func firstOrCreate(tx *gorm.DB, rec any, cond string, arg any) (bool, error) {
	var n int64
	if err := tx.Model(rec).Where(cond, arg).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := tx.Create(rec).Error; err != nil {
		return false, err
	}
	return true, nil
}
