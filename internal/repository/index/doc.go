// Package index persists the cache metadata document: a JSON object mapping
// "<kind>@<minecraft-version>" keys to the build number present on disk.
//
// The document is always read and written whole. A single mutex serializes
// every access within the process; several processes sharing one cache
// directory are not supported.
package index
