/*
Package observability turns navigator events into Prometheus metrics and
structured log lines.

Both are exposed as domain.Callbacks so they compose with host callbacks
through Callbacks.Merge.
*/
package observability
