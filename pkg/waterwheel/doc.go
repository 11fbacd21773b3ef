// Package waterwheel is the resource registry of a Drupal-style REST API.
//
// A [Waterwheel] maps registry keys ("comment", "node.article", ...) to
// typed clients from package resource. The registry is filled from a known
// catalog, from explicit descriptors via [Waterwheel.AddResources], or from
// the server itself via [Waterwheel.PopulateResources]. The "query" key is
// always present and holds the cross-entity query client.
//
//	ww, err := waterwheel.New("https://example.com", creds, nil)
//	if err != nil {
//	    return err
//	}
//	keys, err := ww.PopulateResources(ctx)
//	article, ok := ww.Entity("node.article")
//
// The registry is safe for concurrent use. Readers see either the map
// before or after a write, never a partial insertion.
//
// The registry does not log unless [WithLogger] is given and never retries
// a failed request.
package waterwheel
