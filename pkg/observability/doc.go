/*
Package observability provides lifecycle hooks for monitoring the Nody engine.

It includes structured logging hooks (log/slog), Prometheus metrics hooks, and
Compose, which fans a single hook slot out to several observers.
*/
package observability
