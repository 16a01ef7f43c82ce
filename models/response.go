package models

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// CoverBase64Response is the response for GET /api/cover-base64/:isbn.
type CoverBase64Response struct {
	ISBN        string `json:"isbn"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
	DataURI     string `json:"data_uri"`
}

// ServiceInfo is the response for GET /.
type ServiceInfo struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Method    string            `json:"method"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status    string     `json:"status"` // always "healthy"
	Service   string     `json:"service"`
	Uptime    string     `json:"uptime"`
	FetchMode string     `json:"fetch_mode"`
	PoolStats *PoolStats `json:"pool_stats,omitempty"`
	Version   string     `json:"version"`
}

// PoolStats reports the state of the shared browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}
