package routes

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tourdesk/admin"
	"tourdesk/auth"
	"tourdesk/inquiry"
	"tourdesk/metrics"
	"tourdesk/middleware"
	"tourdesk/pages"
	"tourdesk/ratelim"
)

// Deps is everything the route table needs.
type Deps struct {
	Pages   *pages.Handler
	Admin   *admin.Handler
	Inquiry *inquiry.Service
	Login   *auth.Handler
	Auth    *middleware.Auth
	// Guard wraps admin mutations; nil leaves them unguarded.
	Guard        func(httprouter.Handle) httprouter.Handle
	FormLimiter  *ratelim.RateLimiter
	LoginLimiter *ratelim.RateLimiter
	StaticDir    string
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func AddOpsRoutes(router *httprouter.Router) {
	router.GET("/health", Index)
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())
}

func AddStaticRoutes(router *httprouter.Router, dir string) {
	if dir == "" {
		return
	}
	router.ServeFiles("/static/uploads/*filepath", http.Dir(dir))
}

func AddPublicRoutes(router *httprouter.Router, d Deps) {
	p := d.Pages
	router.GET("/api/prefetch", p.Prefetch)
	router.GET("/api/tours", p.Tours)
	router.GET("/api/tours/:id", p.Tour)
	router.GET("/api/tours/:id/brochure", p.Brochure)
	router.GET("/api/destinations", p.Destinations)
	router.GET("/api/blog", p.BlogPosts)
	router.GET("/api/blog/:id", p.BlogPost)
	router.GET("/api/cities", p.Cities)
	router.GET("/api/testimonials", p.Testimonials)
	router.GET("/api/team", p.Team)
	router.GET("/api/essentials", p.TravelEssentials)
	router.GET("/api/faqs", p.FAQs)
	router.GET("/api/explore/destinations", p.ExploreDestinations)
	router.GET("/api/explore/tours", p.ExploreTours)

	router.POST("/api/inquiries", d.FormLimiter.Limit(d.Inquiry.Create))
}

func AddAdminRoutes(router *httprouter.Router, d Deps) {
	guard := d.Guard
	if guard == nil {
		guard = func(h httprouter.Handle) httprouter.Handle { return h }
	}
	gate := d.Auth.RequireAdmin
	a := d.Admin

	router.POST("/api/admin/login", d.LoginLimiter.Limit(d.Login.Login))
	router.GET("/api/admin/inquiries", gate(a.Inquiries))
	router.GET("/api/admin/content/:kind", gate(a.List))
	router.POST("/api/admin/content/:kind", gate(guard(a.Create)))
	router.PUT("/api/admin/content/:kind/:id", gate(guard(a.Update)))
	router.DELETE("/api/admin/content/:kind/:id", gate(guard(a.Delete)))
}
