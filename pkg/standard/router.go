package standard

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router exposing the registry API. The editor
// front end uses the mutation and request routes, the admin front end
// the request/decision and validate routes, and the reporting pipeline
// reads /classes/{name}/technologies only.
func NewRouter(store *ConfigStore) chi.Router {
	mutator := NewMutator(store)
	queue := NewRequestQueue(store)
	engine := NewApprovalEngine(store)
	resolver := NewResolver(store)
	validator := NewValidator(store)
	log := store.Log()

	r := chi.NewRouter()

	r.Route("/technologies", func(r chi.Router) {
		r.Get("/", listTechnologiesHandler(store))
		r.Post("/", addTechnologyHandler(mutator))
		r.Get("/{code}/components", technologyComponentsHandler(resolver))
	})

	r.Route("/components", func(r chi.Router) {
		r.Get("/", listComponentsHandler(store))
		r.Post("/", addComponentHandler(mutator))
		r.Get("/{name}/technologies", componentTechnologiesHandler(resolver))
		r.Post("/{name}/technologies", assignTechnologyHandler(mutator))
		r.Get("/{name}/classes", componentClassesHandler(resolver))
	})

	r.Route("/classes", func(r chi.Router) {
		r.Get("/", listClassesHandler(store))
		r.Post("/", addClassHandler(mutator))
		r.Get("/{name}/components", classComponentsHandler(resolver))
		r.Post("/{name}/components", assignComponentHandler(mutator))
		r.Get("/{name}/technologies", resolveClassHandler(resolver))
	})

	r.Route("/requests", func(r chi.Router) {
		r.Get("/", listPendingHandler(queue))
		r.Post("/approve-all", bulkDecisionHandler(engine, true))
		r.Post("/reject-all", bulkDecisionHandler(engine, false))
		r.Post("/{kind:remove-component|remove-class-component|remove-component-technology|update-application-type}", requestRemovalHandler(queue))
		r.Get("/{id}", getRequestHandler(log))
		r.Post("/{id}/approve", approveHandler(engine))
		r.Post("/{id}/reject", rejectHandler(engine))
	})

	r.Get("/validate", validateHandler(validator))
	r.Get("/changelog", changeLogHandler(log))
	r.Get("/summary", summaryHandler(store))

	return r
}
