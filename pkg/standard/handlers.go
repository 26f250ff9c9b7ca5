package standard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// addTechnologyHandler returns a handler that creates a technology.
// POST /technologies
func addTechnologyHandler(mutator *Mutator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		entry, err := mutator.AddTechnology(body.Code, body.Description, extractActor(r))
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

// addComponentHandler returns a handler that creates a component.
// POST /components
func addComponentHandler(mutator *Mutator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		entry, err := mutator.AddComponent(body.Name, extractActor(r))
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

// addClassHandler returns a handler that creates an asset class.
// POST /classes
func addClassHandler(mutator *Mutator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		entry, err := mutator.AddClass(body.Name, extractActor(r))
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

// assignComponentHandler returns a handler that links a component into a
// class. POST /classes/{name}/components
func assignComponentHandler(mutator *Mutator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		className := chi.URLParam(r, "name")
		var body struct {
			ComponentName string `json:"componentName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		entry, err := mutator.AssignComponentToClass(className, body.ComponentName, extractActor(r))
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

// assignTechnologyHandler returns a handler that assigns a technology to
// a component. POST /components/{name}/technologies
func assignTechnologyHandler(mutator *Mutator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		componentName := chi.URLParam(r, "name")
		var body struct {
			TechnologyCode  string          `json:"technologyCode"`
			ApplicationType ApplicationType `json:"applicationType"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !body.ApplicationType.Valid() {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("applicationType must be %s or %s", ApplicationPrimary, ApplicationSecondary))
			return
		}
		entry, err := mutator.AssignTechnologyToComponent(
			componentName, body.TechnologyCode, body.ApplicationType, extractActor(r))
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		if entry == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "unchanged"})
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

// resolveClassHandler returns a handler that resolves the technologies a
// class requires. GET /classes/{name}/technologies
//
// This is the reporting pipeline's sole surface for requirement-level
// data.
func resolveClassHandler(resolver *Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		className := chi.URLParam(r, "name")
		requirements, err := resolver.ResolveClassTechnologies(className)
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"class":        className,
			"technologies": requirements,
		})
	}
}

// classComponentsHandler returns the components of a class.
// GET /classes/{name}/components
func classComponentsHandler(resolver *Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		className := chi.URLParam(r, "name")
		components, err := resolver.ClassComponents(className)
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"class":      className,
			"components": components,
		})
	}
}

// componentTechnologiesHandler returns the technology assignments of a
// component. GET /components/{name}/technologies
func componentTechnologiesHandler(resolver *Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		componentName := chi.URLParam(r, "name")
		rows, err := resolver.ComponentTechnologies(componentName)
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"component":   componentName,
			"assignments": rows,
		})
	}
}

// componentClassesHandler returns the classes that include a component.
// GET /components/{name}/classes
func componentClassesHandler(resolver *Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		componentName := chi.URLParam(r, "name")
		classes, err := resolver.ComponentClasses(componentName)
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"component": componentName,
			"classes":   classes,
		})
	}
}

// technologyComponentsHandler returns the components driving a
// technology. GET /technologies/{code}/components?applicationType=
func technologyComponentsHandler(resolver *Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		techCode := chi.URLParam(r, "code")
		applicationType := ApplicationType(r.URL.Query().Get("applicationType"))
		if applicationType != "" && !applicationType.Valid() {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("applicationType must be %s or %s", ApplicationPrimary, ApplicationSecondary))
			return
		}
		rows, err := resolver.TechnologyComponents(techCode, applicationType)
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"technology":  techCode,
			"assignments": rows,
		})
	}
}

// requestRemovalHandler returns a handler that queues a gated removal or
// re-rating request. POST /requests/{kind}
func requestRemovalHandler(queue *RequestQueue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := chi.URLParam(r, "kind")
		var body struct {
			ClassName       string          `json:"className"`
			ComponentName   string          `json:"componentName"`
			TechnologyCode  string          `json:"technologyCode"`
			ApplicationType ApplicationType `json:"applicationType"`
			Reason          string          `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		actor := extractActor(r)

		var (
			entry *ChangeLogEntry
			err   error
		)
		switch kind {
		case "remove-component":
			entry, err = queue.RequestRemoveComponent(body.ComponentName, actor, body.Reason)
		case "remove-class-component":
			entry, err = queue.RequestRemoveClassComponent(body.ClassName, body.ComponentName, actor, body.Reason)
		case "remove-component-technology":
			entry, err = queue.RequestRemoveComponentTechnology(body.ComponentName, body.TechnologyCode, actor, body.Reason)
		case "update-application-type":
			entry, err = queue.RequestUpdateApplicationType(
				body.ComponentName, body.TechnologyCode, body.ApplicationType, actor, body.Reason)
		default:
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown request kind %q", kind))
			return
		}
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{
			"requestId": entry.ID,
			"status":    entry.Status,
		})
	}
}

// listPendingHandler returns the pending requests, oldest first.
// GET /requests?entityType=&action=
func listPendingHandler(queue *RequestQueue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := PendingFilter{
			EntityType: EntityType(r.URL.Query().Get("entityType")),
			Action:     ChangeAction(r.URL.Query().Get("action")),
		}
		entries, err := queue.ListPending(filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"requests":  entries,
			"totalSize": len(entries),
		})
	}
}

// getRequestHandler retrieves one change-log entry by id.
// GET /requests/{id}
func getRequestHandler(log *ChangeLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		entry, err := log.Get(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if entry == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("change log entry %s not found", id))
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// approveHandler approves one pending request.
// POST /requests/{id}/approve
func approveHandler(engine *ApprovalEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		entry, err := engine.Approve(id, extractActor(r))
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// rejectHandler rejects one pending request.
// POST /requests/{id}/reject
func rejectHandler(engine *ApprovalEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var body struct {
			Note string `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		entry, err := engine.Reject(id, extractActor(r), body.Note)
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// bulkDecisionHandler approves or rejects a set of requests, collecting
// per-item outcomes. POST /requests/approve-all, /requests/reject-all
func bulkDecisionHandler(engine *ApprovalEngine, approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IDs  []string `json:"ids"`
			Note string   `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(body.IDs) == 0 {
			writeError(w, http.StatusBadRequest, "ids must not be empty")
			return
		}
		actor := extractActor(r)
		var outcomes []BatchOutcome
		if approve {
			outcomes = engine.ApproveAll(body.IDs, actor)
		} else {
			outcomes = engine.RejectAll(body.IDs, actor, body.Note)
		}
		writeJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
	}
}

// validateHandler runs the integrity scan. GET /validate
func validateHandler(validator *Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		findings, err := validator.Scan()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"findings": findings,
			"clean":    len(findings) == 0,
		})
	}
}

// changeLogHandler lists change-log entries, newest first.
// GET /changelog?entityKey=&pageSize=&pageToken=
func changeLogHandler(log *ChangeLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageSize := 20
		if ps := r.URL.Query().Get("pageSize"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 {
				pageSize = v
			}
		}
		entries, nextToken, total, err := log.List(
			r.URL.Query().Get("entityKey"), pageSize, r.URL.Query().Get("pageToken"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"entries":       entries,
			"nextPageToken": nextToken,
			"totalSize":     total,
		})
	}
}

// summaryHandler returns table counts and pending totals. GET /summary
func summaryHandler(store *ConfigStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := store.Counts()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		pending, err := store.Log().ListPending(PendingFilter{})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"counts":          counts,
			"pendingRequests": len(pending),
		})
	}
}

// listTechnologiesHandler lists the technology master rows.
// GET /technologies
func listTechnologiesHandler(store *ConfigStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		techs, err := store.ListTechnologies()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"technologies": techs})
	}
}

// listComponentsHandler lists the component master rows. GET /components
func listComponentsHandler(store *ConfigStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comps, err := store.ListComponents()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"components": comps})
	}
}

// listClassesHandler lists the asset class master rows. GET /classes
func listClassesHandler(store *ConfigStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classes, err := store.ListClasses()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"classes": classes})
	}
}

// extractActor extracts the actor from the request headers.
// Prefers X-User-Principal over X-User-Role, falls back to "system".
func extractActor(r *http.Request) string {
	if principal := r.Header.Get("X-User-Principal"); principal != "" {
		return principal
	}
	if role := r.Header.Get("X-User-Role"); role != "" {
		return role
	}
	return "system"
}

// writeRegistryError maps a registry error to its HTTP status. The
// message is passed through verbatim so the front ends can surface it.
func writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrIntegrityViolation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
