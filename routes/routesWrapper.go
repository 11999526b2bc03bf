package routes

import (
	"github.com/julienschmidt/httprouter"
)

// RoutesWrapper builds the full route table.
func RoutesWrapper(d Deps) *httprouter.Router {
	router := httprouter.New()
	AddOpsRoutes(router)
	AddStaticRoutes(router, d.StaticDir)
	AddPublicRoutes(router, d)
	AddAdminRoutes(router, d)
	return router
}
