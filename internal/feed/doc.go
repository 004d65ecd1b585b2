// Package feed turns upstream endpoints into a stream of canonical
// snapshots.
//
// A Source performs one poll and always returns a domain.Snapshot: transport
// and decode failures are folded into a snapshot with Success=false and a
// user-facing message, so nothing downstream ever sees an error. A Poller
// drives a Source on a fixed interval and hands each snapshot to a Handler.
//
// Upstream payloads disagree on where rows and totals live (rows under
// "data" or "data.data", totals at the top level or under "data.totales").
// Shape maps each payload onto the canonical snapshot with JSONPath
// expressions, so the layout lives in configuration instead of code.
package feed
