// Package remote builds statelet producers for conventional REST APIs.
//
// A [Client] wraps a base URL, shared headers, and a pooled HTTP client;
// its request methods (Get, Post, Put, Patch, Delete) return
// [statelet.Producer] values that perform the call when a pipeline invokes
// them. A [Resource] layers REST collection conventions on top of a
// client: List with query filtering, Get/Update/Delete by id, Create.
//
// Producers returned by this package emit the response body as raw JSON.
// Non-2xx responses fail with a [*StatusError] carrying the status code
// and body, so stores record a useful diagnostic on mutation failures.
//
// The statelet core places no constraint on how producers are built; this
// package is one collaborator, not a required transport.
package remote
