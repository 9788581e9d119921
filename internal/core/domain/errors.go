package domain

import "errors"

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means a caller-supplied value failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidProfile means the travel profile is not foot, bike or car.
	ErrInvalidProfile = errors.New("invalid travel profile")

	// ErrNoRoute means the routing engine could not connect the waypoints.
	ErrNoRoute = errors.New("no route between waypoints")

	// ErrRoutingUnavailable means the routing engine could not be reached.
	ErrRoutingUnavailable = errors.New("routing engine unavailable")

	// ErrUnavailable means an optional backend is not configured.
	ErrUnavailable = errors.New("service unavailable")
)
