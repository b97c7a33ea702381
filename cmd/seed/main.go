// Command seed loads reference fixtures and demo content into the database.
package main

import (
	"context"
	"flag"
	"log"

	"pitchside/internal/bootstrap"
	"pitchside/internal/config"
	"pitchside/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	streams := flag.Int("streams", defaults.Streams, "Streams per category")
	liveTV := flag.Int("livetv", defaults.LiveTV, "Live TV channels per category")
	highlights := flag.Int("highlights", defaults.Highlights, "Highlights per category")
	announcements := flag.Int("announcements", defaults.Announcements, "Announcements to create")
	ads := flag.Int("ads", defaults.Ads, "Ads to create")
	fixtures := flag.String("fixtures", "", "YAML fixtures file (defaults to the embedded set)")
	shouldClean := flag.Bool("clean", false, "Delete existing content before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed for reproducible content")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer rt.Close(ctx)

	opts := seed.Options{
		Streams:       *streams,
		LiveTV:        *liveTV,
		Highlights:    *highlights,
		Announcements: *announcements,
		Ads:           *ads,
		Clean:         *shouldClean,
		Seed:          *seedValue,
	}
	if *fixtures != "" {
		if opts.Fixtures, err = seed.LoadFixtures(*fixtures); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}

	res, err := seed.NewSeeder(rt.DB, nil).Run(ctx, opts)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✅ %d categories, %d social links, %d base URLs", res.Categories, res.SocialLinks, res.BaseURLs)
	log.Printf("✅ %d streams, %d live TV, %d highlights, %d announcements, %d ads",
		res.Streams, res.LiveTV, res.Highlights, res.Announcements, res.Ads)
}
