// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrBusExists indicates that a bus with the same external
// identifier or registration number is already registered, while
// ErrBusNotFound signals that a lookup matched no bus record.
package repository

import "errors"

// ErrBusNotFound is returned when a bus lookup matches no row.
// Handlers should translate this into an HTTP 404 response.
var ErrBusNotFound = errors.New("bus not found")

// ErrBusExists is returned when registering a bus whose bus_id or
// registration number is already taken. Handlers should translate
// this into an HTTP 409 response.
var ErrBusExists = errors.New("bus already exists")
