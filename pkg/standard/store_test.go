package standard

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB creates an in-memory SQLite DB with the registry tables
// migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	store := NewConfigStore(db)
	require.NoError(t, store.AutoMigrate())
	return db
}

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	return NewConfigStore(newTestDB(t))
}

// seedStandard loads the small fixture the traversal tests share: two
// classes, three components, three technologies.
//
//	Centrifugal Pump: Pump Unit (VIB=Primary, IR=Secondary), Coupling (VIB=Secondary)
//	Gearbox:          Gear Set (VIB=Primary, OIL=Primary)
func seedStandard(t *testing.T, store *ConfigStore) {
	t.Helper()

	for _, tech := range []Technology{
		{Code: "VIB", Description: "Vibration analysis"},
		{Code: "IR", Description: "Infrared thermography"},
		{Code: "OIL", Description: "Oil analysis"},
	} {
		require.NoError(t, store.InsertTechnology(&tech))
	}
	for _, name := range []string{"Pump Unit", "Coupling", "Gear Set"} {
		require.NoError(t, store.InsertComponent(&Component{Name: name}))
	}
	for _, name := range []string{"Centrifugal Pump", "Gearbox"} {
		require.NoError(t, store.InsertClass(&AssetClass{Name: name}))
	}

	for _, link := range []ClassComponent{
		{ClassName: "Centrifugal Pump", ComponentName: "Pump Unit"},
		{ClassName: "Centrifugal Pump", ComponentName: "Coupling"},
		{ClassName: "Gearbox", ComponentName: "Gear Set"},
	} {
		require.NoError(t, store.UpsertClassComponent(&link))
	}
	for _, row := range []ComponentTechnology{
		{ComponentName: "Pump Unit", TechnologyCode: "VIB", ApplicationType: ApplicationPrimary},
		{ComponentName: "Pump Unit", TechnologyCode: "IR", ApplicationType: ApplicationSecondary},
		{ComponentName: "Coupling", TechnologyCode: "VIB", ApplicationType: ApplicationSecondary},
		{ComponentName: "Gear Set", TechnologyCode: "VIB", ApplicationType: ApplicationPrimary},
		{ComponentName: "Gear Set", TechnologyCode: "OIL", ApplicationType: ApplicationPrimary},
	} {
		require.NoError(t, store.UpsertComponentTechnology(&row))
	}
}

func TestConfigStore_MasterRows(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.InsertTechnology(&Technology{Code: "VIB", Description: "Vibration analysis"}))
	require.NoError(t, store.InsertComponent(&Component{Name: "Pump Unit"}))
	require.NoError(t, store.InsertClass(&AssetClass{Name: "Centrifugal Pump"}))

	tech, err := store.GetTechnology("VIB")
	require.NoError(t, err)
	require.NotNil(t, tech)
	assert.Equal(t, "Vibration analysis", tech.Description)

	comp, err := store.GetComponent("Pump Unit")
	require.NoError(t, err)
	require.NotNil(t, comp)

	class, err := store.GetClass("Centrifugal Pump")
	require.NoError(t, err)
	require.NotNil(t, class)

	// Absent keys return nil, nil.
	tech, err = store.GetTechnology("US")
	require.NoError(t, err)
	assert.Nil(t, tech)
}

func TestConfigStore_DuplicateInserts(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.InsertTechnology(&Technology{Code: "VIB"}))
	err := store.InsertTechnology(&Technology{Code: "VIB", Description: "again"})
	require.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, store.InsertComponent(&Component{Name: "Pump Unit"}))
	require.ErrorIs(t, store.InsertComponent(&Component{Name: "Pump Unit"}), ErrDuplicate)

	require.NoError(t, store.InsertClass(&AssetClass{Name: "Gearbox"}))
	require.ErrorIs(t, store.InsertClass(&AssetClass{Name: "Gearbox"}), ErrDuplicate)
}

func TestConfigStore_JunctionUpserts(t *testing.T) {
	store := newTestStore(t)
	seedStandard(t, store)

	// Re-linking an existing class-component pair is a no-op.
	require.NoError(t, store.UpsertClassComponent(&ClassComponent{
		ClassName:     "Centrifugal Pump",
		ComponentName: "Pump Unit",
	}))
	links, err := store.ClassComponentsByClass("Centrifugal Pump")
	require.NoError(t, err)
	assert.Len(t, links, 2)

	// Re-assigning an existing pair overwrites the rating in place.
	require.NoError(t, store.UpsertComponentTechnology(&ComponentTechnology{
		ComponentName:   "Coupling",
		TechnologyCode:  "VIB",
		ApplicationType: ApplicationPrimary,
	}))
	row, err := store.GetComponentTechnology("Coupling", "VIB")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, ApplicationPrimary, row.ApplicationType)

	rows, err := store.ComponentTechnologiesByComponent("Coupling")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestConfigStore_UpdateApplicationType(t *testing.T) {
	store := newTestStore(t)
	seedStandard(t, store)

	require.NoError(t, store.UpdateApplicationType("Pump Unit", "IR", ApplicationPrimary))
	row, err := store.GetComponentTechnology("Pump Unit", "IR")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, ApplicationPrimary, row.ApplicationType)

	err = store.UpdateApplicationType("Pump Unit", "US", ApplicationPrimary)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConfigStore_Deletes(t *testing.T) {
	store := newTestStore(t)
	seedStandard(t, store)

	require.NoError(t, store.DeleteClassComponent("Centrifugal Pump", "Coupling"))
	require.ErrorIs(t, store.DeleteClassComponent("Centrifugal Pump", "Coupling"), ErrNotFound)

	require.NoError(t, store.DeleteComponentTechnology("Coupling", "VIB"))
	require.ErrorIs(t, store.DeleteComponentTechnology("Coupling", "VIB"), ErrNotFound)

	require.NoError(t, store.DeleteComponent("Coupling"))
	require.ErrorIs(t, store.DeleteComponent("Coupling"), ErrNotFound)
}

func TestConfigStore_DeletesByComponent(t *testing.T) {
	store := newTestStore(t)
	seedStandard(t, store)

	techRemoved, err := store.DeleteComponentTechnologiesByComponent("Pump Unit")
	require.NoError(t, err)
	assert.Equal(t, int64(2), techRemoved)

	classRemoved, err := store.DeleteClassComponentsByComponent("Pump Unit")
	require.NoError(t, err)
	assert.Equal(t, int64(1), classRemoved)

	// Counts are zero for a component with no rows.
	techRemoved, err = store.DeleteComponentTechnologiesByComponent("Pump Unit")
	require.NoError(t, err)
	assert.Zero(t, techRemoved)
}

func TestConfigStore_ListOrdering(t *testing.T) {
	store := newTestStore(t)
	seedStandard(t, store)

	techs, err := store.ListTechnologies()
	require.NoError(t, err)
	require.Len(t, techs, 3)
	assert.Equal(t, "IR", techs[0].Code)
	assert.Equal(t, "OIL", techs[1].Code)
	assert.Equal(t, "VIB", techs[2].Code)

	comps, err := store.ListComponents()
	require.NoError(t, err)
	require.Len(t, comps, 3)
	assert.Equal(t, "Coupling", comps[0].Name)

	classes, err := store.ListClasses()
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "Centrifugal Pump", classes[0].Name)
}

func TestConfigStore_ComponentTechnologiesByTechnology(t *testing.T) {
	store := newTestStore(t)
	seedStandard(t, store)

	rows, err := store.ComponentTechnologiesByTechnology("VIB", "")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Coupling", rows[0].ComponentName)

	rows, err = store.ComponentTechnologiesByTechnology("VIB", ApplicationPrimary)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, ApplicationPrimary, row.ApplicationType)
	}
}

func TestConfigStore_Counts(t *testing.T) {
	store := newTestStore(t)
	seedStandard(t, store)

	counts, err := store.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts["technologies"])
	assert.Equal(t, int64(3), counts["components"])
	assert.Equal(t, int64(2), counts["classes"])
	assert.Equal(t, int64(3), counts["class_component"])
	assert.Equal(t, int64(5), counts["component_technology"])
	assert.Equal(t, int64(0), counts["change_log"])
}

func TestConfigStore_AtomicallyRollsBack(t *testing.T) {
	store := newTestStore(t)
	seedStandard(t, store)

	boom := assert.AnError
	err := store.Atomically(func(tx *ConfigStore) error {
		if err := tx.DeleteComponent("Pump Unit"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	comp, err := store.GetComponent("Pump Unit")
	require.NoError(t, err)
	assert.NotNil(t, comp)
}
