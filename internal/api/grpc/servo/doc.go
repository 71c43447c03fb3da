// Package servo exposes server operations over gRPC.
//
// The service servo.v1.ServerService is described by a hand-written
// grpc.ServiceDesc whose messages are protobuf well-known types, so no
// generated code is needed: names travel as StringValue, servers as Struct.
// Client wraps the same methods for callers.
package servo
