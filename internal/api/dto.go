package api

import (
	"github.com/starford/laguz/internal/models"
)

// StatusResponse reports the outcome of the most recent normalization pass.
type StatusResponse struct {
	Ran     bool                `json:"ran"`
	Summary *models.PassSummary `json:"summary,omitempty"`
}

// MappingsResponse wraps the raw to canonical path mapping.
type MappingsResponse struct {
	Mappings []models.MappingPair `json:"mappings"`
	Total    int                  `json:"total"`
}

// UnresolvedResponse wraps unresolved link reports.
type UnresolvedResponse struct {
	Links []models.UnresolvedLink `json:"links"`
	Total int                     `json:"total"`
}

// PassResponse is returned after a manually triggered pass.
type PassResponse struct {
	Summary models.PassSummary `json:"summary"`
}
