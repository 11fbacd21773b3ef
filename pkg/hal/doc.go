// Package hal parses HAL+JSON documents and resolves their embedded
// references.
//
// # Documents
//
// [Parse] reads a document from raw bytes. Relations under "_embedded" keep
// the order in which the server declared them, which a plain
// map[string]any would lose:
//
//	doc, err := hal.Parse(resp.Body)
//
// [FromMap] accepts already-decoded data; its relations are sorted by name.
//
// # Resolving
//
// A [Resolver] dereferences every embedded reference with one GET per
// reference and returns the payloads in document order. The first element
// is always the document's own payload:
//
//	r := hal.NewResolver(tr, creds)
//	items, err := r.FetchEmbedded(ctx, doc, "field_tags")
//
// Fetches run concurrently (see [WithConcurrency]); assembly order never
// depends on completion order. The first failing fetch cancels the rest and
// its error is returned as is.
//
// A document without "_embedded" is rejected with [ErrNotHAL].
package hal
