// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

// Package distance computes lane distances between resolved endpoints,
// either as a closed-form great-circle value or as a routed driving
// distance over the road network.
package distance

import (
	"context"
	"log"

	"github.com/jcodagnone/lanedist/spatial"
)

// Method names the formula that produced a distance value.
type Method string

const (
	MethodGreatCircle Method = "great_circle"
	MethodDriving     Method = "driving"
)

// Router computes the driving distance in miles between two points over
// the road network.
type Router interface {
	DrivingMiles(ctx context.Context, origin, destination spatial.Point) (float64, error)
}

// Engine selects between the great-circle formula and a routed driving
// distance. A nil Router always computes great circle.
type Engine struct {
	router Router
}

func NewEngine(router Router) *Engine {
	return &Engine{router: router}
}

// GreatCircleMiles is the haversine distance between two points.
func GreatCircleMiles(a, b spatial.Point) float64 {
	return a.HaversineMiles(&b)
}

// Miles computes the distance between origin and destination. When routed
// is set and a router is configured, the driving distance is attempted
// first; a routing failure downgrades to the great-circle formula instead
// of leaving the row unresolved. The returned Method names the formula
// that actually produced the value.
func (e *Engine) Miles(ctx context.Context, origin, destination spatial.Point, routed bool) (float64, Method) {
	if routed && e.router != nil {
		miles, err := e.router.DrivingMiles(ctx, origin, destination)
		if err == nil {
			return miles, MethodDriving
		}

		log.Printf("Routing %s -> %s failed, using great circle: %s", origin, destination, err)
	}

	return GreatCircleMiles(origin, destination), MethodGreatCircle
}
