// Package assets is the equipment record feature.
//
// It exposes the document store through a Service (create, update, delete,
// lookup, search, image upload, code preview and spreadsheet import) and an
// HTTP Handler. Every mutation runs as a single txn.Run unit, so concurrent
// requests are applied one after another and none is lost.
//
// # HTTP Endpoints
//
//   - GET /api/meta : collection metadata (public)
//   - GET /api/assets?q= : list and search (login)
//   - GET /api/assets/by-code/:code : QR lookup (public)
//   - PUT /api/assets/by-code/:code : maintenance report (login; admins may change any field)
//   - GET /api/next-code?kind=EQ|GN : code preview (admin)
//   - POST /api/assets?kind= : create (admin)
//   - GET|PUT|DELETE /api/assets/:id (admin for writes)
//   - POST /api/assets/:id/image : multipart upload, field "image" (admin)
//   - POST /api/import : reconcile parsed rows, merge or replace (admin)
//   - GET /api/audit?limit= : recent audit entries (admin)
//   - GET /assets/images/:file : stored images (public)
//
// Errors use the envelope {"ok": false, "message": "..."}; see StatusFor for
// the status mapping.
package assets
