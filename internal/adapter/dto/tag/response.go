package tag

// TagResponse represents a vocabulary entry
type TagResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	ThoughtCount int    `json:"thought_count"`
}
