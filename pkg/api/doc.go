// Package api serves dendro over HTTP.
//
// Routes:
//
//	POST   /v1/cluster              dataset + linkage → clustering result
//	POST   /v1/render               pipeline options → one rendered artifact
//	POST   /v1/widgets              pipeline options → live widget
//	GET    /v1/widgets/{id}         scene JSON, or ?format=svg|png
//	POST   /v1/widgets/{id}/click   {"x": .., "y": ..} in scene coordinates
//	POST   /v1/widgets/{id}/select  {"node": id}, or {"node": null} to clear
//	DELETE /v1/widgets/{id}
//	GET    /healthz
//	GET    /metrics                 Prometheus exposition
//
// Errors are returned as {"error": {"code": "...", "message": "..."}} with
// the status derived from the error code, see [StatusCode].
//
// Requests only accept inline data: a "source" naming a path or URL is
// rejected so the server never reads its own filesystem on behalf of a
// client.
package api
