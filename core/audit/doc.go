// Package audit keeps a trail of committed mutations in an optional SQL
// database.
//
// Feature services call Log after every successful create, update, delete,
// image attach and import. When no database is configured the Nop recorder
// is used and the trail is simply not kept.
package audit
