package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/catalog/pkg/app"
	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/services/catalog/application/handlers"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// CatalogRoutes registers the category, subcategory, item and image
// endpoints on the provided chi router.
func CatalogRoutes(r chi.Router, a *app.Application) {
	Mount(r, HandlerDeps(a, appsvcs.New(a)))
}

// HandlerDeps builds the handler dependencies from the Application container.
func HandlerDeps(a *app.Application, svcs *appsvcs.Services) handlers.Deps {
	d := handlers.Deps{
		Services: svcs,
		Images:   a.Images,
		Logger:   a.Logger,
	}
	production := false
	if a.Config != nil {
		production = a.Config.Environment == config.EnvProduction
		d.MaxUploadBytes = a.Config.MaxUploadBytes
	}
	d.Errors = errhttp.New(production, a.Logger)
	return d
}

// Mount registers the catalog routes backed by d.
func Mount(r chi.Router, d handlers.Deps) {
	category := handlers.NewCategoryHandler(d)
	subcategory := handlers.NewSubcategoryHandler(d)
	item := handlers.NewItemHandler(d)
	images := handlers.NewImageHandler(d)

	r.Route("/category", func(r chi.Router) {
		r.Post("/create", category.Create)
		r.Get("/", category.GetAll)
		r.Get("/{id}", category.Get)
		r.Put("/{id}", category.Edit)
	})

	r.Route("/subcategory", func(r chi.Router) {
		r.Post("/create", subcategory.Create)
		r.Get("/", subcategory.GetAll)
		r.Get("/category/{categoryID}", subcategory.ByCategory)
		r.Get("/{id}", subcategory.Get)
		r.Put("/{id}", subcategory.Edit)
	})

	r.Route("/item", func(r chi.Router) {
		r.Post("/create", item.Create)
		r.Get("/", item.GetAll)
		r.Get("/search", item.Search)
		r.Get("/category/{categoryID}", item.ByCategory)
		r.Get("/subcategory/{subcategoryID}", item.BySubcategory)
		r.Get("/{id}", item.Get)
		r.Put("/{id}", item.Edit)
	})

	r.Get("/{filename}", images.Serve)
}
