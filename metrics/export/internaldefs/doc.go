// Package internaldefs holds the metric names and bucket bounds shared by the
// exporters.
//
// The Prometheus and OTel exporters both read these definitions, so a console
// counter has the same name in either backend.
//
// # What this package must NOT do
//
//   - Import an exporter package.
//   - Perform I/O.
package internaldefs
