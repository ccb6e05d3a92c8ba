// Package txn makes read-modify-write cycles on the document store atomic
// with respect to each other.
//
// The store itself only offers an atomic whole-document save. Run adds the
// missing half: it takes sole access (a weighted semaphore of size one, whose
// waiters are admitted first come first served), loads, runs the unit of
// work, validates the result and saves it. Because ordering is total rather
// than per record, two mutations can never observe overlapping state.
//
// Reads go through Coordinator.Snapshot and do not queue behind writers; they
// see the most recent committed document.
//
//	created, err := txn.Run(ctx, coord, "create", func(s *store.Snapshot) (*store.Snapshot, store.Record, error) {
//	    rec.SetText(store.FieldCode, codes.Next(s, codes.KindEquipment))
//	    s.Assets = append([]store.Record{rec}, s.Assets...)
//	    return s, rec, nil
//	})
package txn
