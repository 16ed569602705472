// Package routecore matches request paths against attribute route
// templates and generates URLs from route names and values.
//
// A Router is built over an EndpointSource, which supplies the endpoint
// set together with a version token. The router compiles the set into
// immutable inbound and outbound route tables and swaps them atomically
// whenever the source version changes; operations in flight keep using
// the snapshot they started with.
//
//	src := source.NewStaticSource(
//		source.Endpoint{Template: "api/Blog/{id:int}", Name: "BlogItem"},
//	)
//	router := routecore.New(src)
//
//	match, err := router.MatchRequest(ctx, "/api/Blog/42")
//	url, err := router.GenerateLink(ctx, "BlogItem", routing.RouteValues{"id": "42"})
//
// Template syntax follows attribute routing conventions: literal
// segments, {parameter} segments, {optional?} and {defaulted=value}
// parameters, {param:constraint} checks and {*catchall} tails.
package routecore
