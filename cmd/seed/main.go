package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/jaswdr/faker"
	"github.com/jessevdk/go-flags"

	"github.com/tripmind/tripmind/pkg/domain"
	"github.com/tripmind/tripmind/pkg/store"
)

// opts for the demo data seeder
type opts struct {
	DSN          string `long:"dsn" env:"DSN" default:"file:tripmind.db?cache=shared&mode=rwc" description:"database connection string"`
	Destination  string `long:"destination" default:"Paris" description:"destination to seed items for"`
	Users        int    `long:"users" default:"20" description:"number of demo users"`
	Items        int    `long:"items" default:"50" description:"number of demo items"`
	Interactions int    `long:"interactions" default:"300" description:"number of demo swipes"`
	Seed         int64  `long:"seed" default:"42" description:"random seed"`
}

var categories = []struct {
	name   string
	tags   []domain.Tag
	energy domain.EnergyLevel
}{
	{"museum", []domain.Tag{domain.TagCulture, domain.TagHistory}, domain.EnergyLow},
	{"gallery", []domain.Tag{domain.TagArt, domain.TagCulture}, domain.EnergyLow},
	{"nightclub", []domain.Tag{domain.TagNightlife}, domain.EnergyHigh},
	{"restaurant", []domain.Tag{domain.TagFood}, domain.EnergyModerate},
	{"park", []domain.Tag{domain.TagNature, domain.TagRelaxation, domain.TagFamilyFriendly}, domain.EnergyLow},
	{"tour", []domain.Tag{domain.TagHistory, domain.TagOutdoors}, domain.EnergyModerate},
	{"activity", []domain.Tag{domain.TagAdventure, domain.TagSports}, domain.EnergyHigh},
	{"market", []domain.Tag{domain.TagFood, domain.TagShopping}, domain.EnergyModerate},
}

var priceRanges = []string{"free", "$", "$$", "$$$"}

func main() {
	var o opts
	if _, err := flags.Parse(&o); err != nil {
		os.Exit(1)
	}

	if err := run(o); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func run(o opts) error {
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(o.Seed)) //nolint:gosec // demo data, not crypto
	fake := faker.NewWithSeed(rand.NewSource(o.Seed))

	db, err := store.New(store.Config{DSN: o.DSN})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	items := make([]domain.Item, 0, o.Items)
	for i := 0; i < o.Items; i++ {
		cat := categories[i%len(categories)]
		name := fmt.Sprintf("%s %s", fake.Company().Name(), strings.Title(cat.name)) //nolint:staticcheck // ascii names only
		item := domain.Item{
			ID:          fmt.Sprintf("seed-%s-%03d", cat.name, i+1),
			Name:        name,
			Location:    o.Destination,
			Category:    cat.name,
			Description: fake.Lorem().Sentence(12),
			Tags:        cat.tags,
			EnergyLevel: cat.energy,
			PriceRange:  priceRanges[rnd.Intn(len(priceRanges))],
		}
		if err := db.CreateItem(ctx, &item); err != nil {
			return fmt.Errorf("create item %s: %w", item.ID, err)
		}
		items = append(items, item)
	}
	log.Printf("[INFO] seeded %d items for %s", len(items), o.Destination)

	users := make([]string, 0, o.Users)
	for i := 0; i < o.Users; i++ {
		id := fmt.Sprintf("user-%03d", i+1)
		user := domain.User{ID: id, Age: 18 + rnd.Intn(50)}
		if err := db.UpsertUser(ctx, &user); err != nil {
			return fmt.Errorf("create user %s: %w", id, err)
		}
		users = append(users, id)
	}
	log.Printf("[INFO] seeded %d users", len(users))

	// each user leans towards one category so collaborative neighborhoods form
	for i := 0; i < o.Interactions; i++ {
		userIdx := rnd.Intn(len(users))
		item := items[rnd.Intn(len(items))]
		action := domain.ActionDislike
		if item.Category == categories[userIdx%len(categories)].name || rnd.Float64() < 0.3 {
			action = domain.ActionLike
		}
		inter := domain.Interaction{
			UserID:      users[userIdx],
			ItemID:      item.ID,
			Action:      action,
			Destination: o.Destination,
			CreatedAt:   time.Now().UTC().Add(-time.Duration(rnd.Intn(72)) * time.Hour),
		}
		if err := db.RecordInteraction(ctx, &inter); err != nil {
			return fmt.Errorf("record interaction: %w", err)
		}
	}
	log.Printf("[INFO] seeded %d swipes", o.Interactions)

	return nil
}
