package dto

type CameraHealth struct {
	Supported bool `json:"supported"`
	Active    bool `json:"active"`
}

// Health is the body of GET /health.
type Health struct {
	Status  string       `json:"status"`
	Service string       `json:"service"`
	Version string       `json:"version"`
	Ready   bool         `json:"ready"`
	Camera  CameraHealth `json:"camera"`
}
