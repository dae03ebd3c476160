package entity

import "time"

// HoaRubro is one line item of an HOA statement.
type HoaRubro struct {
	RubroNumber *int     `json:"rubroNumber"`
	Label       *string  `json:"label"`
	Total       *float64 `json:"total"`
}

// HoaSummary is the per user/building/unit/period aggregate.
// ID is {userId}_{buildingCode}_{unitCode}_{periodKey}.
type HoaSummary struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"userId"`
	BuildingCode          string     `json:"buildingCode"`
	BuildingAddress       *string    `json:"buildingAddress"`
	UnitCode              string     `json:"unitCode"`
	UnitLabel             *string    `json:"unitLabel"`
	OwnerName             *string    `json:"ownerName"`
	PeriodKey             string     `json:"periodKey"`
	PeriodYear            int        `json:"periodYear"`
	PeriodMonth           int        `json:"periodMonth"`
	PeriodLabel           string     `json:"periodLabel"`
	TotalToPayUnit        *float64   `json:"totalToPayUnit"`
	TotalBuildingExpenses *float64   `json:"totalBuildingExpenses"`
	Rubros                []HoaRubro `json:"rubros"`
	RubrosTotal           *float64   `json:"rubrosTotal"`
	RubrosWithTotals      int        `json:"rubrosWithTotals"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}
