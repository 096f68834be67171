// Package tasks implements the batch operations of a run: feed discovery,
// statistics enrichment, playlist mutation with retry and deferral, radar
// refilling, lifecycle cleanup, and weekly stats sampling. The Engine wires
// them together in run order.
//
// All tasks talk to YouTube through the API interface so tests can substitute
// a fake without standing up an HTTP server.
package tasks
