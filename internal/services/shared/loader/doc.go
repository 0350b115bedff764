// Package loader is the single chokepoint for outbound HTTP calls made by
// arena clients.
//
// Every call goes through Loader.Load, which resolves the endpoint against
// the configured base URL, sends cookies by default, and normalizes the
// outcome: JSON bodies are decoded, other bodies are returned as text, and
// non-2xx responses fail with the server's own body text.
//
// Successful GET results are kept in a Cache keyed by the endpoint string
// exactly as given, query included. Entries are never updated or evicted.
// Non-GET calls neither read nor write the cache. Concurrent GETs for an
// endpoint that is not cached yet each reach the network and the last one to
// finish owns the entry, unless Config.Coalesce is set.
package loader
