// Package password implements salted password-based key derivation for the
// goCred engine.
//
// The Deriver is PBKDF2-HMAC-SHA256 with a fixed, configured iteration count
// and output length. Unlike self-salting encodings, the salt is an explicit
// input: an account's salt is generated once at signup and reused for every
// derivation over the account's lifetime, which is what makes the engine's
// password-history comparison possible.
package password
