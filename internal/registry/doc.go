// Package registry queries the remote build registry that publishes server
// artifacts.
//
// The registry follows the PaperMC v1 API shape: a project lists its Minecraft
// versions, every version lists its builds, and every build can be
// downloaded. Requests carry no timeout and are never retried; callers that
// need a bound pass a context with a deadline.
package registry
