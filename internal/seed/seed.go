package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pitchside/internal/middleware"
	"pitchside/internal/models"
	"pitchside/internal/repository"
	"pitchside/internal/validation"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// Options controls how much demo content Run generates per category.
type Options struct {
	Streams       int
	LiveTV        int
	Highlights    int
	Announcements int
	Ads           int

	// Clean removes existing content before seeding. Users and settings are kept.
	Clean bool
	// Seed makes generated content reproducible. Zero picks a random seed.
	Seed int64
	// Fixtures overrides the embedded reference data.
	Fixtures *Fixtures
}

// DefaultOptions returns a small demo data set.
func DefaultOptions() Options {
	return Options{Streams: 4, LiveTV: 2, Highlights: 3, Announcements: 2, Ads: 3}
}

// Result counts the records created by Run.
type Result struct {
	FixtureResult
	Streams       int
	LiveTV        int
	Highlights    int
	Announcements int
	Ads           int
}

// Seeder populates a database with fixtures and generated content.
type Seeder struct {
	db        *gorm.DB
	resources *repository.Resources
	clock     clockwork.Clock
}

func NewSeeder(db *gorm.DB, clock clockwork.Clock) *Seeder {
	return &Seeder{db: db, resources: repository.NewResources(db), clock: clock}
}

// contentTables lists the content tables in an order that respects category references.
var contentTables = []string{
	"streams", "live_tvs", "highlights", "announcements", "ads",
	"social_links", "base_urls", "categories",
}

// Clean deletes all content rows.
func (s *Seeder) Clean(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range contentTables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clean %s: %w", table, err)
			}
		}
		return nil
	})
}

// Run applies the fixtures and generates content for every stored category.
func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result

	if opts.Clean {
		if err := s.Clean(ctx); err != nil {
			return res, err
		}
	}

	fx := opts.Fixtures
	if fx == nil {
		var err error
		if fx, err = DefaultFixtures(); err != nil {
			return res, err
		}
	}
	fr, err := ApplyFixtures(ctx, s.db, fx)
	if err != nil {
		return res, err
	}
	res.FixtureResult = fr

	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return res, fmt.Errorf("load categories: %w", err)
	}
	if len(categories) == 0 && (opts.Streams > 0 || opts.LiveTV > 0 || opts.Highlights > 0) {
		return res, errors.New("no categories to attach content to")
	}

	f := NewFactory(opts.Seed, s.clock)
	for _, cat := range categories {
		for range opts.Streams {
			if err := create(ctx, s.resources.Streams, f.BuildStream(cat.ID)); err != nil {
				return res, err
			}
			res.Streams++
		}
		for range opts.LiveTV {
			if err := create(ctx, s.resources.LiveTV, f.BuildLiveTV(cat.ID)); err != nil {
				return res, err
			}
			res.LiveTV++
		}
		for range opts.Highlights {
			if err := create(ctx, s.resources.Highlights, f.BuildHighlight(cat.ID)); err != nil {
				return res, err
			}
			res.Highlights++
		}
	}
	for range opts.Announcements {
		if err := create(ctx, s.resources.Announcements, f.BuildAnnouncement()); err != nil {
			return res, err
		}
		res.Announcements++
	}
	for range opts.Ads {
		if err := create(ctx, s.resources.Ads, f.BuildAd()); err != nil {
			return res, err
		}
		res.Ads++
	}

	middleware.Logger.InfoContext(ctx, "Seed complete",
		slog.Int("categories", res.Categories),
		slog.Int("streams", res.Streams),
		slog.Int("live_tv", res.LiveTV),
		slog.Int("highlights", res.Highlights),
		slog.Int("announcements", res.Announcements),
		slog.Int("ads", res.Ads),
	)
	return res, nil
}

// create validates rec the way the API does and stores it.
func create[T any](ctx context.Context, r *repository.Resource[T], rec *T) error {
	if appErr := validation.Struct(rec); appErr != nil {
		return fmt.Errorf("seed %s: %w", r.Name(), appErr)
	}
	if _, err := r.Create(ctx, rec); err != nil {
		return fmt.Errorf("seed %s: %w", r.Name(), err)
	}
	return nil
}
