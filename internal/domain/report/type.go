package report

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

type Category string

const (
	CategoryRoads       Category = "roads"
	CategoryWater       Category = "water"
	CategoryElectricity Category = "electricity"
	CategoryWaste       Category = "waste"
	CategoryDrainage    Category = "drainage"
	CategoryStreetlight Category = "streetlight"
	CategoryOther       Category = "other"
)

func (Category) Schema() huma.Schema {
	return huma.Schema{
		Type: "string",
		Enum: []any{
			string(CategoryRoads),
			string(CategoryWater),
			string(CategoryElectricity),
			string(CategoryWaste),
			string(CategoryDrainage),
			string(CategoryStreetlight),
			string(CategoryOther),
		},
		Description: "Civic issue category",
		Examples:    []any{CategoryRoads},
	}
}

// Validate implements the huma.Validatable interface.
func (c Category) Validate() error {
	switch c {
	case CategoryRoads, CategoryWater, CategoryElectricity,
		CategoryWaste, CategoryDrainage, CategoryStreetlight, CategoryOther:
		return nil
	}
	return fmt.Errorf("invalid issue category: %s", c)
}

// String returns the wire representation of the category.
func (c Category) String() string {
	return string(c)
}

// DisplayName returns a human-readable category label.
func (c Category) DisplayName() string {
	switch c {
	case CategoryRoads:
		return "Roads & Traffic"
	case CategoryWater:
		return "Water Supply"
	case CategoryElectricity:
		return "Electricity"
	case CategoryWaste:
		return "Waste Management"
	case CategoryDrainage:
		return "Drainage"
	case CategoryStreetlight:
		return "Street Lighting"
	case CategoryOther:
		return "Other"
	default:
		return "Unknown"
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (Priority) Schema() huma.Schema {
	return huma.Schema{
		Type: "string",
		Enum: []any{
			string(PriorityLow),
			string(PriorityMedium),
			string(PriorityHigh),
		},
		Description: "Reporter-assigned urgency of the issue",
		Examples:    []any{PriorityMedium},
	}
}

// Validate implements the huma.Validatable interface.
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	}
	return fmt.Errorf("invalid priority: %s", p)
}

// String returns the wire representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// DisplayName returns a human-readable priority label.
func (p Priority) DisplayName() string {
	switch p {
	case PriorityLow:
		return "Low Priority"
	case PriorityMedium:
		return "Medium Priority"
	case PriorityHigh:
		return "High Priority"
	default:
		return "Unknown"
	}
}
