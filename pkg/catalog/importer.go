package catalog

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"github.com/microcosm-cc/bluemonday"

	"github.com/tripmind/tripmind/pkg/config"
	"github.com/tripmind/tripmind/pkg/domain"
)

// ItemStore is the write surface the importer needs
type ItemStore interface {
	CreateItem(ctx context.Context, item *domain.Item) error
}

// Importer builds a generic candidate pool for a destination that has no
// items yet. It fetches the destination's guide page, reduces it to text
// with trafilatura and derives a small item set from category templates,
// enriching descriptions with sentences from the page. The page is only an
// enrichment: the template set is generated even when the fetch fails, so
// the fallback works offline.
type Importer struct {
	store     ItemStore
	cfg       config.CatalogConfig
	client    *http.Client
	sanitizer *bluemonday.Policy
}

// template for one generic destination item
type itemTemplate struct {
	nameSuffix  string
	category    string
	tags        []domain.Tag
	energyLevel domain.EnergyLevel
	priceRange  string
}

var itemTemplates = []itemTemplate{
	{"History Museum", "museum", []domain.Tag{domain.TagCulture, domain.TagHistory}, domain.EnergyLow, "$$"},
	{"Art Gallery", "gallery", []domain.Tag{domain.TagArt, domain.TagCulture}, domain.EnergyLow, "$$"},
	{"Old Town Walking Tour", "tour", []domain.Tag{domain.TagCulture, domain.TagHistory, domain.TagOutdoors}, domain.EnergyModerate, "$"},
	{"Central Park", "park", []domain.Tag{domain.TagNature, domain.TagRelaxation, domain.TagFamilyFriendly}, domain.EnergyLow, "free"},
	{"Food Market", "market", []domain.Tag{domain.TagFood, domain.TagShopping}, domain.EnergyModerate, "$$"},
	{"Night Club", "nightclub", []domain.Tag{domain.TagNightlife}, domain.EnergyHigh, "$$$"},
	{"Adventure Park", "activity", []domain.Tag{domain.TagAdventure, domain.TagSports, domain.TagFamilyFriendly}, domain.EnergyHigh, "$$$"},
	{"Botanical Garden", "garden", []domain.Tag{domain.TagNature, domain.TagRelaxation}, domain.EnergyLow, "$"},
	{"Local Cuisine Restaurant", "restaurant", []domain.Tag{domain.TagFood}, domain.EnergyModerate, "$$$"},
	{"Shopping District", "shopping", []domain.Tag{domain.TagShopping}, domain.EnergyModerate, "$$"},
}

// NewImporter creates a catalog importer
func NewImporter(store ItemStore, cfg config.CatalogConfig) *Importer {
	return &Importer{
		store:     store,
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Import generates and persists a generic item set for the destination,
// returning the created items
func (im *Importer) Import(ctx context.Context, destination string) ([]domain.Item, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, fmt.Errorf("empty destination")
	}

	snippets := im.fetchSnippets(ctx, destination)

	maxItems := im.cfg.MaxItems
	if maxItems <= 0 || maxItems > len(itemTemplates) {
		maxItems = len(itemTemplates)
	}

	slug := slugify(destination)
	items := make([]domain.Item, 0, maxItems)
	for i, tpl := range itemTemplates[:maxItems] {
		description := ""
		if len(snippets) > 0 {
			description = snippets[i%len(snippets)]
		}
		item := domain.Item{
			ID:          fmt.Sprintf("%s-%s-%d", slug, tpl.category, i+1),
			Name:        fmt.Sprintf("%s %s", destination, tpl.nameSuffix),
			Location:    destination,
			Category:    tpl.category,
			Description: description,
			Tags:        tpl.tags,
			EnergyLevel: tpl.energyLevel,
			PriceRange:  tpl.priceRange,
		}
		if err := im.store.CreateItem(ctx, &item); err != nil {
			return nil, fmt.Errorf("persist imported item: %w", err)
		}
		items = append(items, item)
	}

	log.Printf("[INFO] imported %d generic items for destination %q", len(items), destination)
	return items, nil
}

// fetchSnippets pulls description sentences from the destination guide
// page; any failure just means empty descriptions
func (im *Importer) fetchSnippets(ctx context.Context, destination string) []string {
	pageURL := fmt.Sprintf(im.cfg.SourceURL, url.PathEscape(strings.ReplaceAll(destination, " ", "_")))
	parsedURL, err := url.Parse(pageURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		log.Printf("[WARN] invalid catalog source URL %q: %v", pageURL, err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		log.Printf("[WARN] create catalog request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", im.cfg.UserAgent)

	resp, err := im.client.Do(req)
	if err != nil {
		log.Printf("[WARN] fetch destination guide %s: %v", pageURL, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[WARN] unexpected status %d for destination guide %s", resp.StatusCode, pageURL)
		return nil
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		Deduplicate:     true,
		OriginalURL:     parsedURL,
	}
	result, err := trafilatura.Extract(resp.Body, opts)
	if err != nil || result == nil || result.ContentText == "" {
		log.Printf("[WARN] no content extracted from %s: %v", pageURL, err)
		return nil
	}

	return splitSentences(im.sanitizer.Sanitize(result.ContentText))
}

// splitSentences chops extracted text into usable description snippets
func splitSentences(text string) []string {
	var snippets []string
	for _, part := range strings.Split(text, ". ") {
		part = strings.TrimSpace(part)
		if len(part) < 40 || len(part) > 300 {
			continue
		}
		if !strings.HasSuffix(part, ".") {
			part += "."
		}
		snippets = append(snippets, part)
		if len(snippets) >= 20 {
			break
		}
	}
	return snippets
}

// slugify turns a destination name into an id-safe prefix
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
