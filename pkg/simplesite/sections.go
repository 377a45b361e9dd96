package simplesite

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SectionID names one of the canonical home-page sections
type SectionID string

const (
	SectionHero     SectionID = "hero"
	SectionServices SectionID = "services"
	SectionProjects SectionID = "projects"
	SectionAbout    SectionID = "about"
	SectionContact  SectionID = "contact"
)

// SectionOrderKey is the content key holding the persisted section order
const SectionOrderKey = "home_sections_order"

// DefaultSectionOrder is the render order used when no order is stored
func DefaultSectionOrder() []SectionID {
	return []SectionID{SectionHero, SectionServices, SectionProjects, SectionAbout, SectionContact}
}

// IsSectionID reports whether s names a canonical section
func IsSectionID(s string) bool {
	switch SectionID(s) {
	case SectionHero, SectionServices, SectionProjects, SectionAbout, SectionContact:
		return true
	}
	return false
}

// ParseSectionOrder splits a stored order value into its raw ids. Both the
// comma-joined form ("hero,about") and a JSON array (["hero","about"]) are
// accepted. Ids are trimmed and empty entries dropped; no other filtering is
// applied.
func ParseSectionOrder(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if strings.HasPrefix(value, "[") {
		var ids []string
		if err := json.Unmarshal([]byte(value), &ids); err == nil {
			return compactIDs(ids)
		}
	}

	return compactIDs(strings.Split(value, ","))
}

func compactIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// FormatSectionOrder encodes ids in the comma-joined storage form
func FormatSectionOrder(ids []SectionID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

// ValidateSectionOrder checks an order value submitted by the admin. Unlike
// the resolver, which silently ignores bad ids, writes must name canonical
// sections exactly once each.
func ValidateSectionOrder(value string) ([]SectionID, error) {
	ids := ParseSectionOrder(value)
	seen := make(map[string]bool, len(ids))
	out := make([]SectionID, 0, len(ids))
	for _, id := range ids {
		if !IsSectionID(id) {
			return nil, fmt.Errorf("unknown section %q", id)
		}
		if seen[id] {
			return nil, fmt.Errorf("section %q listed more than once", id)
		}
		seen[id] = true
		out = append(out, SectionID(id))
	}
	return out, nil
}
