// Package mockserver serves a small Drupal-like REST API from memory.
//
// It implements the endpoints the rest of this module talks to:
//
//	GET    /entity/types                          resource catalog
//	GET    /entity/types/{entityType}/{bundle}    field metadata
//	GET    /entity/query/{entityType}             list and filter
//	POST   /entity/{entityType}                   create
//	GET    /{entityType}/{id}                     read (json or hal_json)
//	PATCH  /{entityType}/{id}                     update
//	DELETE /{entityType}/{id}                     delete
//
// Reads with ?_format=hal_json return HAL documents whose "_embedded"
// relations follow the links registered with [Server.Link], in the order
// they were added.
//
// The server backs the tests of the registry and resolver and the
// "waterwheel mock" command.
package mockserver
