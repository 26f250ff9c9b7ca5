package standard

import (
	"fmt"
	"sort"
)

// ClassRequirement is the class-level requirement for one technology:
// the winning application type and the sorted component names that
// contribute it.
type ClassRequirement struct {
	ApplicationType ApplicationType `json:"applicationType"`
	Components      []string        `json:"components"`
}

// Resolver answers read-only questions about the standard by traversing
// the class-component and component-technology junctions. It never
// mutates the store. Each operation runs its queries inside one
// Snapshot, so a traversal never mixes state from before and after a
// concurrent cascade.
type Resolver struct {
	store *ConfigStore
}

// NewResolver creates a new Resolver.
func NewResolver(store *ConfigStore) *Resolver {
	return &Resolver{store: store}
}

// ResolveClassTechnologies returns the technologies an asset class
// requires, keyed by technology code. If any contributing component
// rates a technology Primary the class-level result is Primary,
// otherwise Secondary. The result is independent of the order components
// or assignments were inserted.
func (r *Resolver) ResolveClassTechnologies(className string) (map[string]ClassRequirement, error) {
	var result map[string]ClassRequirement
	err := r.store.Snapshot(func(tx *ConfigStore) error {
		class, err := tx.GetClass(className)
		if err != nil {
			return err
		}
		if class == nil {
			return fmt.Errorf("class %q: %w", className, ErrNotFound)
		}

		links, err := tx.ClassComponentsByClass(className)
		if err != nil {
			return err
		}
		if len(links) == 0 {
			result = map[string]ClassRequirement{}
			return nil
		}

		componentNames := make([]string, len(links))
		for i, link := range links {
			componentNames[i] = link.ComponentName
		}

		rows, err := tx.ComponentTechnologiesByComponents(componentNames)
		if err != nil {
			return err
		}

		result = make(map[string]ClassRequirement, len(rows))
		for _, row := range rows {
			req, ok := result[row.TechnologyCode]
			if !ok {
				result[row.TechnologyCode] = ClassRequirement{
					ApplicationType: row.ApplicationType,
					Components:      []string{row.ComponentName},
				}
				continue
			}
			if row.ApplicationType.Outranks(req.ApplicationType) {
				req.ApplicationType = row.ApplicationType
			}
			req.Components = append(req.Components, row.ComponentName)
			result[row.TechnologyCode] = req
		}

		for code, req := range result {
			sort.Strings(req.Components)
			result[code] = req
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ClassComponents returns the sorted component names linked to a class.
func (r *Resolver) ClassComponents(className string) ([]string, error) {
	var names []string
	err := r.store.Snapshot(func(tx *ConfigStore) error {
		class, err := tx.GetClass(className)
		if err != nil {
			return err
		}
		if class == nil {
			return fmt.Errorf("class %q: %w", className, ErrNotFound)
		}
		links, err := tx.ClassComponentsByClass(className)
		if err != nil {
			return err
		}
		names = make([]string, len(links))
		for i, link := range links {
			names[i] = link.ComponentName
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ComponentClasses returns the sorted class names that include a
// component.
func (r *Resolver) ComponentClasses(componentName string) ([]string, error) {
	var names []string
	err := r.store.Snapshot(func(tx *ConfigStore) error {
		comp, err := tx.GetComponent(componentName)
		if err != nil {
			return err
		}
		if comp == nil {
			return fmt.Errorf("component %q: %w", componentName, ErrNotFound)
		}
		links, err := tx.ClassComponentsByComponent(componentName)
		if err != nil {
			return err
		}
		names = make([]string, len(links))
		for i, link := range links {
			names[i] = link.ClassName
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ComponentTechnologies returns the assignment rows for one component,
// ordered by technology code.
func (r *Resolver) ComponentTechnologies(componentName string) ([]ComponentTechnology, error) {
	var rows []ComponentTechnology
	err := r.store.Snapshot(func(tx *ConfigStore) error {
		comp, err := tx.GetComponent(componentName)
		if err != nil {
			return err
		}
		if comp == nil {
			return fmt.Errorf("component %q: %w", componentName, ErrNotFound)
		}
		rows, err = tx.ComponentTechnologiesByComponent(componentName)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TechnologyComponents returns the assignment rows driving one
// technology, ordered by component name. applicationType narrows the
// result to Primary or Secondary assignments; pass "" for both.
func (r *Resolver) TechnologyComponents(techCode string, applicationType ApplicationType) ([]ComponentTechnology, error) {
	if applicationType != "" && !applicationType.Valid() {
		return nil, fmt.Errorf("application type must be %s or %s, got %q",
			ApplicationPrimary, ApplicationSecondary, applicationType)
	}
	var rows []ComponentTechnology
	err := r.store.Snapshot(func(tx *ConfigStore) error {
		tech, err := tx.GetTechnology(techCode)
		if err != nil {
			return err
		}
		if tech == nil {
			return fmt.Errorf("technology %q: %w", techCode, ErrNotFound)
		}
		rows, err = tx.ComponentTechnologiesByTechnology(techCode, applicationType)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
