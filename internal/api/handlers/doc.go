// Package handlers implements HTTP handlers for the watchlist API. Probe
// endpoints are plain echo handlers; everything under /api/v1 is a huma
// operation.
package handlers

// StatusResponse is the body of the probe endpoints.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}
