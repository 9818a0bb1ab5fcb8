// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

// Package api exposes place resolution and lane distance over a small
// JSON HTTP surface.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/lanedist/cache"
	"github.com/jcodagnone/lanedist/distance"
	"github.com/jcodagnone/lanedist/pipeline"
	"github.com/jcodagnone/lanedist/resolve"
)

type Server struct {
	resolver pipeline.PlaceResolver
	engine   *distance.Engine
	store    cache.Store
}

func NewServer(resolver pipeline.PlaceResolver, engine *distance.Engine, store cache.Store) *Server {
	if engine == nil {
		engine = distance.NewEngine(nil)
	}

	return &Server{
		resolver: resolver,
		engine:   engine,
		store:    store,
	}
}

// Routes registers the API handlers on the router.
func (s *Server) Routes(r *gin.Engine) {
	r.GET("/api/resolve", s.resolvePlace)
	r.GET("/api/distance", s.laneDistance)
	r.GET("/api/cache/stats", s.cacheStats)
}

func (s *Server) Run(addr string) error {
	r := gin.Default()
	s.Routes(r)

	return r.Run(addr)
}

// ResolveResponse is one resolved endpoint.
type ResolveResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Ambiguous bool    `json:"ambiguous"`
	Source    string  `json:"source"`
}

func (s *Server) resolvePlace(ctx *gin.Context) {
	place := ctx.Query("place")
	code := ctx.Query("code")

	if place == "" && code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "place or code query parameter is required"})

		return
	}

	result, err := s.resolver.ResolvePlace(ctx.Request.Context(), place, code)
	if err != nil {
		var notFound *resolve.NotFoundError
		if errors.As(err, &notFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, resolveResponse(result))
}

func resolveResponse(r resolve.Result) ResolveResponse {
	return ResolveResponse{
		Latitude:  r.Point.Lat,
		Longitude: r.Point.Lng,
		Ambiguous: r.Ambiguous,
		Source:    string(r.Provenance),
	}
}

// DistanceResponse is one resolved lane.
type DistanceResponse struct {
	Origin        ResolveResponse `json:"origin"`
	Destination   ResolveResponse `json:"destination"`
	DistanceMiles float64         `json:"distance_miles"`
	Method        string          `json:"method"`
}

func (s *Server) laneDistance(ctx *gin.Context) {
	origin := ctx.Query("origin")
	dest := ctx.Query("destination")

	if origin == "" || dest == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "origin and destination query parameters are required"})

		return
	}

	originResult, ok := s.resolveEndpoint(ctx, "origin", origin, ctx.Query("origin_code"))
	if !ok {
		return
	}

	destResult, ok := s.resolveEndpoint(ctx, "destination", dest, ctx.Query("destination_code"))
	if !ok {
		return
	}

	useRouted := originResult.Provenance == resolve.ProvenanceExternal ||
		destResult.Provenance == resolve.ProvenanceExternal

	miles, method := s.engine.Miles(ctx.Request.Context(), originResult.Point, destResult.Point, useRouted)

	ctx.JSON(http.StatusOK, DistanceResponse{
		Origin:        resolveResponse(originResult),
		Destination:   resolveResponse(destResult),
		DistanceMiles: miles,
		Method:        string(method),
	})
}

// resolveEndpoint resolves one lane side, writing the error response on
// failure. Missing places are 404; anything else is internal.
func (s *Server) resolveEndpoint(ctx *gin.Context, side, name, code string) (resolve.Result, bool) {
	result, err := s.resolver.ResolvePlace(ctx.Request.Context(), name, code)
	if err != nil {
		status := http.StatusInternalServerError

		var notFound *resolve.NotFoundError
		if errors.As(err, &notFound) {
			status = http.StatusNotFound
		}

		ctx.JSON(status, gin.H{"error": side + ": " + err.Error()})

		return resolve.Result{}, false
	}

	return result, true
}

// CacheStatsResponse reports the persistent cache size.
type CacheStatsResponse struct {
	Entries int `json:"entries"`
}

func (s *Server) cacheStats(ctx *gin.Context) {
	count, err := s.store.Count()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, CacheStatsResponse{Entries: count})
}
