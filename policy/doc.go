// Package policy decides whether a candidate password is acceptable.
//
// A Validator evaluates a fixed conjunction of predicates, short-circuited in
// order: presence, minimum length, composition (the configured pattern must
// match the entire candidate, and every Require pattern must match somewhere),
// and a verbatim denylist-dictionary lookup. The dictionary file is opened
// fresh on every validation and streamed line by line, so denylist edits take
// effect without a restart. Change/reset validation additionally rejects any
// candidate whose derived hash appears in the account's password history.
//
// An unreadable dictionary is a configuration fault, never a policy verdict:
// it surfaces as ErrDictionaryUnavailable, distinct from ViolationError.
package policy
