// Package sec provides authentication and security primitives for the blog
// API.
//
// # Authentication
//
// Every protected request carries HTTP Basic Auth credentials; there are no
// sessions or tokens. Credentials are validated against bcrypt password hashes
// stored in the database.
//
// IMPORTANT: Basic Auth transmits credentials in base64 encoding (not encrypted).
// TLS must be used in production to protect credentials in transit.
//
// # Components
//
//   - [Credentials]: registers users and verifies username/password pairs
//   - [RequireUser]: echo middleware gating routes behind Basic Auth
//   - [GetAuthenticatedUser], [SetAuthenticatedUser]: Context accessors for user info
//   - [HashPassword], [ComparePassword]: peppered bcrypt password hashing
package sec
