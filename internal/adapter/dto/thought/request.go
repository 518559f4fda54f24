package thought

// MergeThoughtsRequest represents the request to merge thoughts into a primary
type MergeThoughtsRequest struct {
	MergeIDs      []string `json:"merge_ids" validate:"required,min=1,dive,uuid"`
	MergedContent *string  `json:"merged_content,omitempty" validate:"omitempty,notblank"`
}
