package services

import "errors"

var (
	// ErrGatewayNotConfigured means no credential has been accepted by the backend yet
	ErrGatewayNotConfigured = errors.New("gateway is not configured: set an API key first")
	// ErrServerNotFound means the server id is not in the store
	ErrServerNotFound = errors.New("server not found")
	// ErrAlreadyConnected means connect was requested for a connected server
	ErrAlreadyConnected = errors.New("server is already connected")
	// ErrEmptyMessage means the chat text was blank
	ErrEmptyMessage = errors.New("message is empty")
	// ErrImageNotFound means a container image does not exist in its registry
	ErrImageNotFound = errors.New("container image not found")
)
