package standard

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigStore owns the five normalized tables and the change log. It has
// no business logic; it is the durability and integrity boundary every
// other component relies on. All writes that must be atomic run inside
// Atomically, which holds one exclusive transaction for their duration.
type ConfigStore struct {
	db *gorm.DB
}

// NewConfigStore creates a new ConfigStore.
func NewConfigStore(db *gorm.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// AutoMigrate creates or updates the five data tables and the change log.
func (s *ConfigStore) AutoMigrate() error {
	models := []any{
		&Technology{},
		&Component{},
		&AssetClass{},
		&ClassComponent{},
		&ComponentTechnology{},
		&ChangeLogEntry{},
	}
	for _, m := range models {
		if err := s.db.AutoMigrate(m); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// Atomically executes fn inside a single transaction. Every write fn
// performs commits together or not at all; readers never observe a
// half-applied cascade.
func (s *ConfigStore) Atomically(fn func(tx *ConfigStore) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ConfigStore{db: tx})
	})
}

// Snapshot executes fn inside a single read transaction. A multi-query
// read sees exactly one committed state; a cascade committing midway
// through is either fully visible to fn or not at all.
func (s *ConfigStore) Snapshot(fn func(tx *ConfigStore) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ConfigStore{db: tx})
	})
}

// Log returns a ChangeLog bound to the same connection (and, inside
// Atomically, the same transaction) as the store.
func (s *ConfigStore) Log() *ChangeLog {
	return NewChangeLog(s.db)
}

// ── Master row lookups ──

// GetTechnology retrieves a technology by code. Returns nil, nil if absent.
func (s *ConfigStore) GetTechnology(code string) (*Technology, error) {
	var tech Technology
	if err := s.db.Where("technology_code = ?", code).First(&tech).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get technology: %w", err)
	}
	return &tech, nil
}

// GetComponent retrieves a component by name. Returns nil, nil if absent.
func (s *ConfigStore) GetComponent(name string) (*Component, error) {
	var comp Component
	if err := s.db.Where("component_name = ?", name).First(&comp).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get component: %w", err)
	}
	return &comp, nil
}

// GetClass retrieves an asset class by name. Returns nil, nil if absent.
func (s *ConfigStore) GetClass(name string) (*AssetClass, error) {
	var class AssetClass
	if err := s.db.Where("class_name = ?", name).First(&class).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	return &class, nil
}

// ── Master row inserts ──

// InsertTechnology inserts a technology row. Fails with ErrDuplicate if
// the code is taken.
func (s *ConfigStore) InsertTechnology(tech *Technology) error {
	existing, err := s.GetTechnology(tech.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("technology %q: %w", tech.Code, ErrDuplicate)
	}
	if err := s.db.Create(tech).Error; err != nil {
		return fmt.Errorf("insert technology: %w", err)
	}
	return nil
}

// InsertComponent inserts a component row. Fails with ErrDuplicate if the
// name is taken.
func (s *ConfigStore) InsertComponent(comp *Component) error {
	existing, err := s.GetComponent(comp.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("component %q: %w", comp.Name, ErrDuplicate)
	}
	if err := s.db.Create(comp).Error; err != nil {
		return fmt.Errorf("insert component: %w", err)
	}
	return nil
}

// InsertClass inserts an asset class row. Fails with ErrDuplicate if the
// name is taken.
func (s *ConfigStore) InsertClass(class *AssetClass) error {
	existing, err := s.GetClass(class.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("class %q: %w", class.Name, ErrDuplicate)
	}
	if err := s.db.Create(class).Error; err != nil {
		return fmt.Errorf("insert class: %w", err)
	}
	return nil
}

// ── Master row deletes ──

// DeleteComponent deletes a component row. Fails with ErrNotFound if the
// name is absent. Junction cleanup is the caller's responsibility (the
// approval engine cascades inside one transaction).
func (s *ConfigStore) DeleteComponent(name string) error {
	result := s.db.Where("component_name = ?", name).Delete(&Component{})
	if result.Error != nil {
		return fmt.Errorf("delete component: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("component %q: %w", name, ErrNotFound)
	}
	return nil
}

// ── Junction rows ──

// GetComponentTechnology retrieves one assignment row. Returns nil, nil
// if absent.
func (s *ConfigStore) GetComponentTechnology(componentName, techCode string) (*ComponentTechnology, error) {
	var row ComponentTechnology
	err := s.db.Where("component_name = ? AND technology_code = ?", componentName, techCode).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get component technology: %w", err)
	}
	return &row, nil
}

// GetClassComponent retrieves one link row. Returns nil, nil if absent.
func (s *ConfigStore) GetClassComponent(className, componentName string) (*ClassComponent, error) {
	var row ClassComponent
	err := s.db.Where("class_name = ? AND component_name = ?", className, componentName).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get class component: %w", err)
	}
	return &row, nil
}

// UpsertClassComponent creates the link row if absent. The row carries no
// payload, so re-linking is a no-op.
func (s *ConfigStore) UpsertClassComponent(row *ClassComponent) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class_name"}, {Name: "component_name"}},
		DoNothing: true,
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("upsert class component: %w", err)
	}
	return nil
}

// UpsertComponentTechnology creates the assignment row, or overwrites its
// application type if the (component, technology) pair already exists.
func (s *ConfigStore) UpsertComponentTechnology(row *ComponentTechnology) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "component_name"}, {Name: "technology_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"application_type"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("upsert component technology: %w", err)
	}
	return nil
}

// UpdateApplicationType overwrites the rating of an existing assignment.
// Fails with ErrNotFound if the pair is absent.
func (s *ConfigStore) UpdateApplicationType(componentName, techCode string, applicationType ApplicationType) error {
	result := s.db.Model(&ComponentTechnology{}).
		Where("component_name = ? AND technology_code = ?", componentName, techCode).
		Update("application_type", string(applicationType))
	if result.Error != nil {
		return fmt.Errorf("update application type: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("assignment %s/%s: %w", componentName, techCode, ErrNotFound)
	}
	return nil
}

// DeleteClassComponent deletes one link row. Fails with ErrNotFound if
// the pair is absent.
func (s *ConfigStore) DeleteClassComponent(className, componentName string) error {
	result := s.db.Where("class_name = ? AND component_name = ?", className, componentName).
		Delete(&ClassComponent{})
	if result.Error != nil {
		return fmt.Errorf("delete class component: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("link %s/%s: %w", className, componentName, ErrNotFound)
	}
	return nil
}

// DeleteComponentTechnology deletes one assignment row. Fails with
// ErrNotFound if the pair is absent.
func (s *ConfigStore) DeleteComponentTechnology(componentName, techCode string) error {
	result := s.db.Where("component_name = ? AND technology_code = ?", componentName, techCode).
		Delete(&ComponentTechnology{})
	if result.Error != nil {
		return fmt.Errorf("delete component technology: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("assignment %s/%s: %w", componentName, techCode, ErrNotFound)
	}
	return nil
}

// DeleteClassComponentsByComponent deletes every class link referencing
// the component, returning the number of rows removed.
func (s *ConfigStore) DeleteClassComponentsByComponent(componentName string) (int64, error) {
	result := s.db.Where("component_name = ?", componentName).Delete(&ClassComponent{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete class components for %s: %w", componentName, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteComponentTechnologiesByComponent deletes every technology
// assignment referencing the component, returning the number of rows
// removed.
func (s *ConfigStore) DeleteComponentTechnologiesByComponent(componentName string) (int64, error) {
	result := s.db.Where("component_name = ?", componentName).Delete(&ComponentTechnology{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete component technologies for %s: %w", componentName, result.Error)
	}
	return result.RowsAffected, nil
}

// ── List queries ──

// ListTechnologies returns all technologies ordered by code.
func (s *ConfigStore) ListTechnologies() ([]Technology, error) {
	var techs []Technology
	if err := s.db.Order("technology_code ASC").Find(&techs).Error; err != nil {
		return nil, fmt.Errorf("list technologies: %w", err)
	}
	return techs, nil
}

// ListComponents returns all components ordered by name.
func (s *ConfigStore) ListComponents() ([]Component, error) {
	var comps []Component
	if err := s.db.Order("component_name ASC").Find(&comps).Error; err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	return comps, nil
}

// ListClasses returns all asset classes ordered by name.
func (s *ConfigStore) ListClasses() ([]AssetClass, error) {
	var classes []AssetClass
	if err := s.db.Order("class_name ASC").Find(&classes).Error; err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListClassComponents returns every class-component link row.
func (s *ConfigStore) ListClassComponents() ([]ClassComponent, error) {
	var rows []ClassComponent
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list class components: %w", err)
	}
	return rows, nil
}

// ListComponentTechnologies returns every component-technology row.
func (s *ConfigStore) ListComponentTechnologies() ([]ComponentTechnology, error) {
	var rows []ComponentTechnology
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list component technologies: %w", err)
	}
	return rows, nil
}

// ClassComponentsByClass returns the link rows for one class.
func (s *ConfigStore) ClassComponentsByClass(className string) ([]ClassComponent, error) {
	var rows []ClassComponent
	err := s.db.Where("class_name = ?", className).
		Order("component_name ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list components of class %s: %w", className, err)
	}
	return rows, nil
}

// ClassComponentsByComponent returns the link rows referencing one
// component.
func (s *ConfigStore) ClassComponentsByComponent(componentName string) ([]ClassComponent, error) {
	var rows []ClassComponent
	err := s.db.Where("component_name = ?", componentName).
		Order("class_name ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list classes of component %s: %w", componentName, err)
	}
	return rows, nil
}

// ComponentTechnologiesByComponent returns the assignment rows for one
// component.
func (s *ConfigStore) ComponentTechnologiesByComponent(componentName string) ([]ComponentTechnology, error) {
	var rows []ComponentTechnology
	err := s.db.Where("component_name = ?", componentName).
		Order("technology_code ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list technologies of component %s: %w", componentName, err)
	}
	return rows, nil
}

// ComponentTechnologiesByComponents returns the assignment rows for a set
// of components in one query.
func (s *ConfigStore) ComponentTechnologiesByComponents(componentNames []string) ([]ComponentTechnology, error) {
	if len(componentNames) == 0 {
		return nil, nil
	}
	var rows []ComponentTechnology
	err := s.db.Where("component_name IN ?", componentNames).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list technologies of components: %w", err)
	}
	return rows, nil
}

// ComponentTechnologiesByTechnology returns the assignment rows driving
// one technology, optionally filtered to a single application type.
func (s *ConfigStore) ComponentTechnologiesByTechnology(techCode string, applicationType ApplicationType) ([]ComponentTechnology, error) {
	query := s.db.Where("technology_code = ?", techCode).Order("component_name ASC")
	if applicationType != "" {
		query = query.Where("application_type = ?", string(applicationType))
	}
	var rows []ComponentTechnology
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list components of technology %s: %w", techCode, err)
	}
	return rows, nil
}

// Counts returns row counts for the five tables and the change log, for
// the summary surface.
func (s *ConfigStore) Counts() (map[string]int64, error) {
	counts := make(map[string]int64, 6)
	for _, t := range []struct {
		name  string
		model any
	}{
		{"technologies", &Technology{}},
		{"components", &Component{}},
		{"classes", &AssetClass{}},
		{"class_component", &ClassComponent{}},
		{"component_technology", &ComponentTechnology{}},
		{"change_log", &ChangeLogEntry{}},
	} {
		var n int64
		if err := s.db.Model(t.model).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", t.name, err)
		}
		counts[t.name] = n
	}
	return counts, nil
}
