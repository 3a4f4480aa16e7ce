// Package outcome defines the per-request summary record produced by the
// dispatcher and the classification taxonomy that steers logging and
// telemetry.
//
// Every request, successful or not, yields exactly one Outcome. The
// classification is distinct from the wire status code: a client that
// disconnects mid-transfer keeps the status code its response carried, but is
// classified ConnectionClosed so collectors can separate connectivity noise
// from server faults.
package outcome
