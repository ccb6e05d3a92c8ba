// Package integrity provides health checks for the data the service depends on.
//
// # Checks Provided
//
//   - Store: Loads the JSON document and lists every blank or duplicate id and code,
//     maintenance statuses outside the allowed choices, and broken user entries.
//   - Storage: Checks that the image bucket and image prefix exist (supports fixing).
//   - Images: Compares the image paths recorded on assets with the objects in storage.
//   - Audit: Validates the audit table against the audit.Entry model (columns, types).
//
// # HTTP Endpoints
//
// All endpoints require an admin token.
//
//   - GET /integrity : Runs all checks (supports ?fix=true).
//   - GET /integrity/store : Runs the document check.
//   - GET /integrity/storage : Runs the storage check (supports ?fix=true).
//   - GET /integrity/images : Runs the image check.
//   - GET /integrity/audit : Runs the audit schema check.
package integrity
