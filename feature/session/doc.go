// Package session handles login for the accounts stored in the document.
//
//   - POST /api/login : exchanges username and password for a bearer token
//   - GET /api/me : returns the user behind the token
package session
