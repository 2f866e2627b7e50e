package domain

// PlanID is an internal identifier for a plan record.
type PlanID string

// DayID is an internal identifier for a plan day record.
type DayID string

// ItemID is an internal identifier for a plan item record.
type ItemID string

// RangeID groups the per-day item rows of one multi-day hotel stay or car rental.
type RangeID string

// CatalogRef is an identifier into one of the read-only catalogs.
// Its format is controlled by the catalog owner; the planner only accepts UUIDs as references.
type CatalogRef string
