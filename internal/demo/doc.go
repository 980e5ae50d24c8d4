// Package demo is a small HTTP server that walks a browser through the
// authorization code flow of every configured platform and prints the
// resulting profile as JSON.
//
// The CSRF state of a pending login lives in a signed cookie scoped to
// /oauth/{platform}, so the server keeps no session storage.
package demo
