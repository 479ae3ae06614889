package dto

// ImportKindDTO describes one supported import type and its columns.
type ImportKindDTO struct {
	Type     string   `json:"type"`
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}
