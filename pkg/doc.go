// Package pkg provides the core libraries for Waterwheel, a client for
// Drupal-style REST APIs.
//
// # Overview
//
// Waterwheel keeps a registry of resource clients keyed by entity type and
// bundle, and resolves the embedded references of HAL+JSON documents. The
// pkg directory is organized into these areas:
//
//  1. [waterwheel] - The resource registry and its catalog discovery
//  2. [resource] - Entity and query clients built from descriptors
//  3. [hal] - HAL+JSON parsing and the embedded reference resolver
//  4. [transport] - HTTP transport with auth, caching and retries
//  5. [cache] - Response caches (file, Redis, MongoDB)
//  6. [mockserver] - An in-memory API for tests and demos
//
// # Architecture
//
// The typical data flow:
//
//	GET /entity/types
//	         ↓
//	    [waterwheel] package (catalog → registry of clients)
//	         ↓
//	    [resource] package (CRUD and query requests)
//	         ↓
//	    [hal] package (embedded references fetched concurrently)
//
// # Quick Start
//
//	ww, err := waterwheel.New("http://example.com", &transport.Credentials{User: "admin", Pass: "secret"}, nil)
//	if err != nil {
//	    return err
//	}
//	if _, err := ww.PopulateResources(ctx); err != nil {
//	    return err
//	}
//	article, _ := ww.Entity("node.article")
//	resp, err := article.Read(ctx, "1")
//
// # Error Handling
//
// Errors carry a machine-readable code from [errors]; use errors.Is with a
// code to branch on them.
package pkg
