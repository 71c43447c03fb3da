// Package rest exposes server operations over HTTP with gin.
//
// Every reply uses the envelope {"success": bool, "payload": ...}. Unknown
// servers and uncached versions answer 404; everything else that fails
// answers 500. Starting a server whose artifact is stale answers 202 at once
// and refreshes and launches in the background.
package rest
