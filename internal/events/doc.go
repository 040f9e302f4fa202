// Package events delivers operator notifications (the console's toasts)
// asynchronously to a sink.
//
// # Components
//
//   - [Sink]: consumer interface (channel, JSON lines, callback, no-op).
//   - [Dispatcher]: buffered relay with drop-if-full or block-if-full delivery.
//   - [Notification]: one message with level, source and metadata.
//
// # Architecture boundaries
//
// This package owns buffering and delivery. It does not decide what to say;
// the console and the mutation flows do.
//
// # What this package must NOT do
//
//   - Import perksAdmin or any sibling package.
//   - Perform I/O beyond what a caller-supplied Sink does.
package events
