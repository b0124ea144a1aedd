package models

import "encoding/json"

// Envelope is the response shape shared by every backend endpoint.
type Envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Page is the paginated variant nested inside Envelope.Data.
type Page struct {
	Count int64           `json:"count"`
	Rows  json.RawMessage `json:"rows"`
}
