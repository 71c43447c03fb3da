// Package cache implements the artifact cache: server jars stored under the
// cache directory together with the metadata index recording which build
// every file holds.
//
// A metadata entry is written only after its file was replaced completely,
// so the recorded build always matches the bytes on disk.
package cache
