// Package docroute builds HTTP routes and their OpenAPI 3.1 description
// in one pass. Every composition step (register a verb, route a path, nest
// a subtree, merge two routers, attach a fallback) changes the request
// dispatcher and the document together, so the served API and the
// documented API cannot drift apart.
//
// Handlers are typed; request parameters, bodies and responses are Go
// types and the document is derived from them when the endpoint is built:
//
//	type GetItemReq struct {
//	    ID string `path:"id"`
//	}
//
//	items := docroute.New().
//	    Route("/items", docroute.Get(docroute.Handle(listItems)).
//	        Post(docroute.Handle(createItem, docroute.WithStatus(http.StatusCreated)))).
//	    Route("/items/{id}", docroute.Get(docroute.Handle(getItem)))
//
//	svc := docroute.New().
//	    Nest("/api", items).
//	    Finalize(docroute.Info{Title: "Items", Version: "1.0.0"},
//	        docroute.WithSpecRoute("/openapi.json"))
//
// Named struct types become shared schemas under components.schemas. Two
// handlers contributing the same name with the same content share one
// entry; the same name with different content panics with
// ErrComponentConflict.
//
// All composition mistakes panic with an error wrapping one of the Err*
// sentinels, since they can only come from how the program assembles its
// routes.
package docroute
