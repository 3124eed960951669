// Package dto provides request and response types for the Thumblify API.
// These types are used by huma to generate OpenAPI documentation and perform validation.
package dto

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}
