package common

// PaginationResponse represents pagination metadata
type PaginationResponse struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Count    int `json:"count"`
}
