// Package collections maps logical content kinds to physical collection names.
package collections

import (
	"slices"
	"sort"
)

// Kind is the logical name of an entity type.
type Kind string

const (
	Tours               Kind = "tours"
	Destinations        Kind = "destinations"
	BlogPosts           Kind = "blogPosts"
	Cities              Kind = "cities"
	Testimonials        Kind = "testimonials"
	Team                Kind = "team"
	TravelEssentials    Kind = "travelEssentials"
	FAQs                Kind = "faqs"
	ExploreDestinations Kind = "exploreDestinations"
	ExploreTours        Kind = "exploreTours"
	Inquiries           Kind = "inquiries"
)

// All lists every kind in a stable order.
var All = []Kind{
	Tours, Destinations, BlogPosts, Cities, Testimonials, Team,
	TravelEssentials, FAQs, ExploreDestinations, ExploreTours, Inquiries,
}

// Content lists the kinds managed through the admin screens and covered by
// seed fixtures.
var Content = slices.Clip(All[:len(All)-1])

// Registry resolves kinds to physical names. The zero value maps every kind
// to its own name.
type Registry struct {
	overrides map[Kind]string
}

// NewRegistry builds a registry from a kind -> name override map. Unknown
// kinds and empty names are ignored.
func NewRegistry(overrides map[string]string) Registry {
	r := Registry{overrides: make(map[Kind]string)}
	for k, v := range overrides {
		kind := Kind(k)
		if v == "" || !Known(kind) {
			continue
		}
		r.overrides[kind] = v
	}
	return r
}

// Name returns the physical collection name for kind.
func (r Registry) Name(kind Kind) string {
	if name, ok := r.overrides[kind]; ok {
		return name
	}
	return string(kind)
}

// Names returns the physical names of all kinds, sorted.
func (r Registry) Names() []string {
	out := make([]string, 0, len(All))
	for _, k := range All {
		out = append(out, r.Name(k))
	}
	sort.Strings(out)
	return out
}

func Known(kind Kind) bool {
	for _, k := range All {
		if k == kind {
			return true
		}
	}
	return false
}
