// Package server contains the core domain types of servo.
//
// MinecraftVersion and ServerVersion model the MAJOR.MINOR[.PATCH][-BUILD]
// identifiers used by the cache, the registry and the per-server documents.
// Kind describes one server flavor: the registry project it is published
// under, how its data directories are initialised and which arguments the
// launched artifact expects. Config is the persisted per-server document.
package server
