// Package goCred provides a credential-lifecycle engine: signup, login,
// password change, and forgotten-password reset over a pluggable account
// store, with a configurable password policy, salted PBKDF2 hashing, bounded
// password history, and a failed-login attempt ceiling.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goCred is the public surface. It exposes [Engine], [Builder], [Config], the
// [AccountStore] and [MailSender] strategy interfaces, and value types
// (AccountSummary, ResetResult, MetricsSnapshot, AuditEvent). Password
// derivation lives in the password sub-package, the policy predicates in
// policy, and the bundled store implementations in store.
//
// # What this package must NOT do
//
//   - Persist or log plaintext passwords; the only plaintext hand-offs are
//     the ForgotPassword result and the MailSender call.
//   - Consult ambient state (environment, globals) after Build; every policy
//     decision flows from the explicit Config.
//   - Import any sub-package that re-imports goCred (no import cycles).
//
// # Security contract
//
// Hash comparisons are constant-time. A failed login is indistinguishable
// between an unknown username and a wrong password. Audit events never carry
// passwords, hashes, or salts.
package goCred
