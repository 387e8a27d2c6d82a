package model

// Office is the organizational category documents are filed under.
type Office struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}
