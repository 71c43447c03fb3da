// Package downloader streams artifacts from the registry into the cache.
//
// DownloadOne and RefreshOne work on a single cache key. BulkRefresh runs one
// unit per distinct key concurrently without a cap; a failing unit never
// cancels its siblings and every unit failure is reported.
package downloader
