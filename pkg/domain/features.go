package domain

import "strings"

// Tag is a canonical feature tag from the closed vocabulary. Free-form input
// tags are mapped through CanonicalTag so the content filter's overlap
// computation is total; anything outside the vocabulary lands in the single
// unknown bucket.
type Tag string

// canonical tag vocabulary
const (
	TagCulture        Tag = "culture"
	TagNightlife      Tag = "nightlife"
	TagFamilyFriendly Tag = "family-friendly"
	TagOutdoors       Tag = "outdoors"
	TagFood           Tag = "food"
	TagShopping       Tag = "shopping"
	TagHistory        Tag = "history"
	TagAdventure      Tag = "adventure"
	TagRelaxation     Tag = "relaxation"
	TagArt            Tag = "art"
	TagNature         Tag = "nature"
	TagSports         Tag = "sports"
	TagUnknown        Tag = "unknown"
)

var knownTags = map[Tag]struct{}{
	TagCulture: {}, TagNightlife: {}, TagFamilyFriendly: {}, TagOutdoors: {},
	TagFood: {}, TagShopping: {}, TagHistory: {}, TagAdventure: {},
	TagRelaxation: {}, TagArt: {}, TagNature: {}, TagSports: {},
}

// CanonicalTag maps a raw tag string to the closed vocabulary, returning
// TagUnknown for values outside it
func CanonicalTag(s string) Tag {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownTags[t]; ok {
		return t
	}
	return TagUnknown
}

// CanonicalTags converts raw tag strings into a deduplicated canonical set,
// preserving first-seen order
func CanonicalTags(raw []string) []Tag {
	seen := make(map[Tag]struct{}, len(raw))
	tags := make([]Tag, 0, len(raw))
	for _, s := range raw {
		t := CanonicalTag(s)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}
