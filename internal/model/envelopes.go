package model

// ListResult is the list-with-count envelope; Count is the server-side
// total, which may exceed len(Items) for paged queries
type ListResult[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// ResultState discriminates soft outcomes returned with HTTP 200
type ResultState string

const (
	ResultFound     ResultState = "found"
	ResultNotFound  ResultState = "notFound"
	ResultDuplicate ResultState = "duplicate"
	ResultSuccess   ResultState = "success"
	ResultInvalid   ResultState = "invalid"
)

// SearchResult is the single-result-with-status envelope
type SearchResult[T any] struct {
	State ResultState `json:"state"`
	Model *T          `json:"model,omitempty"`
}

// ImageUpload is the response of POST /image
type ImageUpload struct {
	Image string `json:"image"`
}
