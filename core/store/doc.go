// Package store owns the durable equipment document.
//
// The whole collection lives in one JSON file and is read and written as a
// single Snapshot. Saves are all-or-nothing: the new document is written to a
// temp file in the same directory, fsynced and renamed over the canonical
// path, so a reader (or a process restarted after a crash) only ever sees a
// complete document.
//
// # Records
//
// Assets are modelled as Record, an ordered map of field name to Value. Only
// the id and code fields carry meaning here; everything else is preserved as
// it was written, including unknown fields and their order.
//
// # Errors
//
//   - ErrNotFound: no document yet (callers bootstrap one), or an absent id/code.
//   - ErrCorruptStore: the document does not decode.
//   - ErrIOFailure: a save could not complete; the previous document is intact.
//   - ErrDuplicateCode, ErrInvalidRecord: collection invariants were broken.
//
// FileStore keeps no cache. Serializing read-modify-write cycles is the job
// of core/txn.
package store
