// Package resource provides typed clients for the entity resources exposed
// by a remote Drupal-style REST API.
//
// A [Descriptor] describes one resource family: its base URL, credentials,
// per-verb URL templates, entity type and bundle, and the template of its
// options (field metadata) endpoint. [Entity] wraps a descriptor and builds
// create/read/update/delete requests from the templates. [Query] is the
// cross-entity listing client whose entity type is chosen per call.
//
// Both implement [Client], a tagged interface discriminated by [Kind], so a
// registry can hold them in one map and callers can switch on the variant.
//
// Templates carry a single placeholder such as "/node/{node}"; the
// identifier replaces the first {...} token. A verb without a template makes
// that operation return an UNSUPPORTED error instead of failing construction.
package resource
