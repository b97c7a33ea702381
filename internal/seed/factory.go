// Package seed loads reference fixtures and generates demo content for development
// databases and tests.
package seed

import (
	"fmt"
	"strings"
	"time"

	"pitchside/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jonboulle/clockwork"
)

// Factory builds content records. It does not persist anything.
type Factory struct {
	faker *gofakeit.Faker
	clock clockwork.Clock
}

// NewFactory returns a Factory. A zero seed picks a random one; a nil clock uses the
// wall clock.
func NewFactory(seed int64, clock clockwork.Clock) *Factory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Factory{faker: gofakeit.New(seed), clock: clock}
}

func (f *Factory) team() models.Team {
	name := f.faker.City()
	return models.Team{
		Name: name + " " + f.faker.RandomString([]string{"FC", "United", "City", "Rovers", "Athletic"}),
		Logo: fmt.Sprintf("https://picsum.photos/seed/%s/128/128", f.faker.UUID()),
	}
}

// BuildStream returns a stream in category. Kick-off lands within the next two days and
// the stream expires three hours after it.
func (f *Factory) BuildStream(category uint, overrides ...func(*models.Stream)) *models.Stream {
	date := f.clock.Now().Add(time.Duration(f.faker.Number(0, 48)) * time.Hour).Truncate(time.Minute)
	s := &models.Stream{
		Team1:      f.team(),
		Team2:      f.team(),
		Date:       date,
		StreamURL:  fmt.Sprintf("https://live.pitchside.dev/%s.m3u8", f.faker.UUID()),
		ExpiryTime: date.Add(3 * time.Hour),
		Category:   &models.CategoryRef{ID: category},
		IsLive:     f.faker.Bool(),
		Views:      int64(f.faker.Number(0, 50000)),
	}
	s.Title = s.Team1.Name + " vs " + s.Team2.Name

	for _, override := range overrides {
		override(s)
	}
	return s
}

// BuildLiveTV returns a live channel in category.
func (f *Factory) BuildLiveTV(category uint, overrides ...func(*models.LiveTV)) *models.LiveTV {
	name := f.faker.Company() + " Sports"
	l := &models.LiveTV{
		ChannelName: name,
		Logo:        fmt.Sprintf("https://picsum.photos/seed/%s/200/200", f.faker.UUID()),
		URL:         fmt.Sprintf("https://tv.pitchside.dev/%s.m3u8", models.Slugify(name)),
		Category:    &models.CategoryRef{ID: category},
		Views:       int64(f.faker.Number(0, 100000)),
		Description: f.faker.Sentence(10),
	}
	l.SetDefaults()

	for _, override := range overrides {
		override(l)
	}
	return l
}

// BuildHighlight returns a highlight clip in category.
func (f *Factory) BuildHighlight(category uint, overrides ...func(*models.Highlight)) *models.Highlight {
	id := f.faker.UUID()
	h := &models.Highlight{
		Title:     strings.TrimSuffix(f.faker.Sentence(6), "."),
		URL:       fmt.Sprintf("https://vod.pitchside.dev/%s.mp4", id),
		Thumbnail: fmt.Sprintf("https://picsum.photos/seed/%s/640/360", id),
		Category:  &models.CategoryRef{ID: category},
		Duration:  fmt.Sprintf("%d:%02d", f.faker.Number(1, 12), f.faker.Number(0, 59)),
		Views:     int64(f.faker.Number(0, 250000)),
		Tags:      []string{f.faker.Word(), f.faker.Word()},
	}

	for _, override := range overrides {
		override(h)
	}
	return h
}

// BuildAnnouncement returns an active announcement expiring within a week.
func (f *Factory) BuildAnnouncement(overrides ...func(*models.Announcement)) *models.Announcement {
	expiry := f.clock.Now().Add(time.Duration(f.faker.Number(1, 7*24)) * time.Hour)
	a := &models.Announcement{
		Title:      strings.TrimSuffix(f.faker.Sentence(4), "."),
		Message:    f.faker.Paragraph(1, 2, 8, " "),
		Priority:   f.faker.Number(0, 5),
		ExpiryDate: &expiry,
	}
	a.SetDefaults()

	for _, override := range overrides {
		override(a)
	}
	return a
}

// BuildAd returns an active ad of a random type.
func (f *Factory) BuildAd(overrides ...func(*models.Ad)) *models.Ad {
	expiry := f.clock.Now().Add(time.Duration(f.faker.Number(1, 30)) * 24 * time.Hour)
	a := &models.Ad{
		Type:       f.faker.RandomString([]string{models.AdTypeDirect, models.AdTypeBanner}),
		Title:      f.faker.Company(),
		Content:    f.faker.Sentence(8),
		Link:       f.faker.URL(),
		Position:   f.faker.RandomString([]string{"header", "sidebar", "player", "footer"}),
		ExpiryDate: &expiry,
	}
	a.SetDefaults()

	for _, override := range overrides {
		override(a)
	}
	return a
}
