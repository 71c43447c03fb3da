// Package servers manages server instances: their configuration documents,
// their data directories and the launch of a cached artifact.
//
// A server is created once with a pinned Minecraft version. Starting it
// refreshes the cached artifact of that version when the registry has a newer
// build, then spawns the runtime with the kind's argument convention and
// returns without supervising the child.
package servers
