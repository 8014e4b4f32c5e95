// Package health holds the health check response.
package health

// Response is the GET /healthz body.
type Response struct {
	Status     string            `json:"status"` // ready | unavailable
	Components map[string]string `json:"components"`
	Providers  []string          `json:"providers"`
}
