package standard

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ApplicationType is the requirement priority of a technology for a
// component. Primary outranks Secondary when aggregated to class level.
type ApplicationType string

const (
	ApplicationPrimary   ApplicationType = "Primary"
	ApplicationSecondary ApplicationType = "Secondary"
)

// Valid reports whether t is one of the two accepted application types.
func (t ApplicationType) Valid() bool {
	return t == ApplicationPrimary || t == ApplicationSecondary
}

// Outranks reports whether t wins over other when multiple components
// drive the same technology for a class.
func (t ApplicationType) Outranks(other ApplicationType) bool {
	return t == ApplicationPrimary && other == ApplicationSecondary
}

// JSONAny is a custom GORM type for map[string]any stored as JSON text.
type JSONAny map[string]any

// Scan implements the sql.Scanner interface for JSONAny.
func (m *JSONAny) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	default:
		return fmt.Errorf("unsupported type for JSONAny: %T", value)
	}
	return json.Unmarshal(bytes, m)
}

// Value implements the driver.Valuer interface for JSONAny.
func (m JSONAny) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Technology is a monitoring method in the standard, keyed by its short
// code (e.g. "VI" for vibration analysis).
type Technology struct {
	Code        string    `gorm:"primaryKey;column:technology_code;type:varchar(16)"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the GORM table name.
func (Technology) TableName() string { return "technologies" }

// Component is a monitorable part type shared across asset classes.
type Component struct {
	Name      string    `gorm:"primaryKey;column:component_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the GORM table name.
func (Component) TableName() string { return "components" }

// AssetClass is an asset category composed of components.
type AssetClass struct {
	Name      string    `gorm:"primaryKey;column:class_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the GORM table name.
func (AssetClass) TableName() string { return "classes" }

// ClassComponent links an asset class to a component it contains.
// At most one row per (class, component) pair.
type ClassComponent struct {
	ClassName     string `gorm:"primaryKey;column:class_name"`
	ComponentName string `gorm:"primaryKey;column:component_name;index:idx_cc_component"`
}

// TableName returns the GORM table name.
func (ClassComponent) TableName() string { return "class_component" }

// ComponentTechnology assigns a technology to a component with a rating.
// At most one row per (component, technology) pair; re-assigning
// overwrites the rating.
type ComponentTechnology struct {
	ComponentName   string          `gorm:"primaryKey;column:component_name"`
	TechnologyCode  string          `gorm:"primaryKey;column:technology_code;index:idx_ct_technology"`
	ApplicationType ApplicationType `gorm:"column:application_type;not null"`
}

// TableName returns the GORM table name.
func (ComponentTechnology) TableName() string { return "component_technology" }
