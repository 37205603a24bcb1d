package dto

import "github.com/yukikurage/project-management-api/internal/models"

// DashboardIndicatorDTO represents an indicator in API responses
type DashboardIndicatorDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// ToDashboardIndicatorDTO converts a DashboardIndicator to its DTO
func ToDashboardIndicatorDTO(indicator models.DashboardIndicator) DashboardIndicatorDTO {
	return DashboardIndicatorDTO{
		ID:    indicator.ID.Hex(),
		Name:  indicator.Name,
		Value: indicator.Value,
	}
}

// ToDashboardIndicatorDTOs converts a slice of indicators
func ToDashboardIndicatorDTOs(indicators []models.DashboardIndicator) []DashboardIndicatorDTO {
	items := make([]DashboardIndicatorDTO, len(indicators))
	for i, indicator := range indicators {
		items[i] = ToDashboardIndicatorDTO(indicator)
	}
	return items
}
