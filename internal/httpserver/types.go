package httpserver

// RenderRequest is the body of POST /render. View and Layout are URLs or view
// names below the views directory, PartialsDirs are directories below it.
// An explicit empty Layout disables the configured one.
type RenderRequest struct {
	View         string            `json:"view" validate:"required"`
	ViewHeaders  map[string]string `json:"view_headers,omitempty"`
	Layout       *string           `json:"layout,omitempty"`
	NoLayout     bool              `json:"no_layout,omitempty"`
	Placeholder  string            `json:"placeholder,omitempty"`
	PartialsDirs []string          `json:"partials_dirs,omitempty" validate:"omitempty,dive,required"`
	Context      map[string]any    `json:"context,omitempty"`
	Data         map[string]any    `json:"data,omitempty"`
	Cache        *bool             `json:"cache,omitempty"` // defaults to true
}

// StatsResponse reports the number of entries held by each template store
type StatsResponse struct {
	Success bool           `json:"success"`
	Entries map[string]int `json:"entries"`
}

// ErrorResponse is written for every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
