// Package tasks implements the generation lifecycle manager.
//
// The core abstraction is [Manager], which owns the status, progress, and
// track set of the one generation in flight, drives the remote service
// through submit and poll cycles, and writes completed tracks through to the
// local cache. Callers observe the lifecycle through immutable [Snapshot]
// values, either on demand or via a subscription channel.
//
// Concurrency model: at most one poll loop runs per manager, and the next
// poll is only issued after the previous remote call resolved (single-flight).
// Every submit, extend, and cancel bumps an internal epoch; a response that
// resolves after its epoch has passed is discarded rather than applied, so a
// cancelled generation can never transition state retroactively.
package tasks
