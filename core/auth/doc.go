// Package auth issues and verifies the bearer tokens handed out at login and
// checks user passwords.
//
// Tokens are HS256 JWTs carrying the username, role and display name.
// Passwords in the document may be bcrypt hashes or, for documents created
// by older installs, plain text.
package auth
