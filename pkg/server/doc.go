// Package server exposes a route table over HTTP.
//
// Endpoints:
//
//	GET /healthz           liveness probe
//	GET /routes            route tree (text, or JSON with ?format=json)
//	GET /resolve?path=...  resolution outcome as JSON (?follow=false for one step)
//	GET /metrics           Prometheus metrics
//	GET /ws                navigation over a WebSocket
//
// On /ws each text frame is a navigation: either a bare path or a JSON object
// {"path": "/item", "replace": true, "params": {"page": 2}}. Every navigation
// is answered with one JSON frame whose "type" is mount, error or superseded.
// A connection has its own Navigator, so a newer frame supersedes the ones
// still loading.
package server
