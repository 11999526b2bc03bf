package hooks

import (
	"tourdesk/accessor"
	"tourdesk/collections"
	"tourdesk/models"
)

// Hooks builds one query per entity kind against the registry's physical
// collection names.
type Hooks struct {
	acc *accessor.Accessor
	reg collections.Registry
}

func New(acc *accessor.Accessor, reg collections.Registry) *Hooks {
	return &Hooks{acc: acc, reg: reg}
}

func (h *Hooks) Tours() *Query[models.Tour] {
	return NewQuery[models.Tour](h.acc, h.reg.Name(collections.Tours))
}

func (h *Hooks) Destinations() *Query[models.Destination] {
	return NewQuery[models.Destination](h.acc, h.reg.Name(collections.Destinations))
}

func (h *Hooks) BlogPosts() *Query[models.BlogPost] {
	return NewQuery[models.BlogPost](h.acc, h.reg.Name(collections.BlogPosts))
}

func (h *Hooks) Cities() *Query[models.City] {
	return NewQuery[models.City](h.acc, h.reg.Name(collections.Cities))
}

func (h *Hooks) Testimonials() *Query[models.Testimonial] {
	return NewQuery[models.Testimonial](h.acc, h.reg.Name(collections.Testimonials))
}

func (h *Hooks) Team() *Query[models.TeamMember] {
	return NewQuery[models.TeamMember](h.acc, h.reg.Name(collections.Team))
}

func (h *Hooks) TravelEssentials() *Query[models.TravelEssential] {
	return NewQuery[models.TravelEssential](h.acc, h.reg.Name(collections.TravelEssentials))
}

func (h *Hooks) FAQs() *Query[models.FAQ] {
	return NewQuery[models.FAQ](h.acc, h.reg.Name(collections.FAQs))
}

func (h *Hooks) ExploreDestinations() *Query[models.ExploreDestination] {
	return NewQuery[models.ExploreDestination](h.acc, h.reg.Name(collections.ExploreDestinations))
}

func (h *Hooks) ExploreTours() *Query[models.ExploreTour] {
	return NewQuery[models.ExploreTour](h.acc, h.reg.Name(collections.ExploreTours))
}
