/*
Package controller drives a single graph on behalf of a host.

A Controller validates its graph once, defers the first activation to the
first Tick, forwards ticks and exposes GoTo operations as the host-facing
mutation surface. Controllers are safe for concurrent use; they serialize
access to the graph, which is not.

Controllers can be published in a Registry for lookup by name, e.g. by the
HTTP and MCP adapters.
*/
package controller
