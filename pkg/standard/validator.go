package standard

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// FindingKind classifies a validator finding.
type FindingKind string

const (
	// FindingComponentWithoutTechnology flags a component that no
	// technology is assigned to.
	FindingComponentWithoutTechnology FindingKind = "component_without_technology"

	// FindingComponentWithoutClass flags a component no class includes.
	FindingComponentWithoutClass FindingKind = "component_without_class"

	// FindingClassWithoutComponents flags a class with zero components.
	FindingClassWithoutComponents FindingKind = "class_without_components"

	// FindingDanglingReference flags a junction row whose referenced key
	// is absent from its master table. It should never persist after a
	// cascade; seeing one means an out-of-band edit corrupted the store.
	FindingDanglingReference FindingKind = "dangling_reference"
)

// Finding is one non-fatal integrity observation.
type Finding struct {
	Kind   FindingKind `json:"kind"`
	Key    string      `json:"key"`
	Detail string      `json:"detail"`
}

// Validator is a read-only integrity scanner over the current table
// state. It returns findings, never raises on their account, and has no
// side effects.
type Validator struct {
	store *ConfigStore
}

// NewValidator creates a new Validator.
func NewValidator(store *ConfigStore) *Validator {
	return &Validator{store: store}
}

// Scan inspects the five tables and returns every finding. The error is
// non-nil only when the store itself cannot be read. All table reads run
// in one Snapshot so a concurrent cascade cannot surface as spurious
// findings.
func (v *Validator) Scan() ([]Finding, error) {
	var findings []Finding
	err := v.store.Snapshot(func(tx *ConfigStore) error {
		var err error
		findings, err = scan(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return findings, nil
}

func scan(tx *ConfigStore) ([]Finding, error) {
	components, err := tx.ListComponents()
	if err != nil {
		return nil, err
	}
	classes, err := tx.ListClasses()
	if err != nil {
		return nil, err
	}
	technologies, err := tx.ListTechnologies()
	if err != nil {
		return nil, err
	}
	classLinks, err := tx.ListClassComponents()
	if err != nil {
		return nil, err
	}
	techRows, err := tx.ListComponentTechnologies()
	if err != nil {
		return nil, err
	}

	componentNames := mapset.NewSet[string]()
	for _, c := range components {
		componentNames.Add(c.Name)
	}
	classNames := mapset.NewSet[string]()
	for _, c := range classes {
		classNames.Add(c.Name)
	}
	techCodes := mapset.NewSet[string]()
	for _, t := range technologies {
		techCodes.Add(t.Code)
	}

	linkedComponents := mapset.NewSet[string]()
	linkedClasses := mapset.NewSet[string]()
	for _, link := range classLinks {
		linkedComponents.Add(link.ComponentName)
		linkedClasses.Add(link.ClassName)
	}
	assignedComponents := mapset.NewSet[string]()
	for _, row := range techRows {
		assignedComponents.Add(row.ComponentName)
	}

	var findings []Finding

	for _, name := range sorted(componentNames.Difference(assignedComponents)) {
		findings = append(findings, Finding{
			Kind:   FindingComponentWithoutTechnology,
			Key:    name,
			Detail: "component has no technology assignments",
		})
	}
	for _, name := range sorted(componentNames.Difference(linkedComponents)) {
		findings = append(findings, Finding{
			Kind:   FindingComponentWithoutClass,
			Key:    name,
			Detail: "component is not linked to any class",
		})
	}
	for _, name := range sorted(classNames.Difference(linkedClasses)) {
		findings = append(findings, Finding{
			Kind:   FindingClassWithoutComponents,
			Key:    name,
			Detail: "class has no components",
		})
	}

	// Dangling junction references, all four FK directions.
	for _, link := range classLinks {
		if !classNames.Contains(link.ClassName) {
			findings = append(findings, Finding{
				Kind:   FindingDanglingReference,
				Key:    junctionKey(link.ClassName, link.ComponentName),
				Detail: fmt.Sprintf("class_component references unknown class %q", link.ClassName),
			})
		}
		if !componentNames.Contains(link.ComponentName) {
			findings = append(findings, Finding{
				Kind:   FindingDanglingReference,
				Key:    junctionKey(link.ClassName, link.ComponentName),
				Detail: fmt.Sprintf("class_component references unknown component %q", link.ComponentName),
			})
		}
	}
	for _, row := range techRows {
		if !componentNames.Contains(row.ComponentName) {
			findings = append(findings, Finding{
				Kind:   FindingDanglingReference,
				Key:    junctionKey(row.ComponentName, row.TechnologyCode),
				Detail: fmt.Sprintf("component_technology references unknown component %q", row.ComponentName),
			})
		}
		if !techCodes.Contains(row.TechnologyCode) {
			findings = append(findings, Finding{
				Kind:   FindingDanglingReference,
				Key:    junctionKey(row.ComponentName, row.TechnologyCode),
				Detail: fmt.Sprintf("component_technology references unknown technology %q", row.TechnologyCode),
			})
		}
	}

	return findings, nil
}

func sorted(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}
