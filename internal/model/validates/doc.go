// Package validates provides the stock record validators.
//
// Every validator but NotNull passes when its column is absent or NULL, so
// they compose: NotNull("email") plus Matches("email", re) reports a missing
// email once, as "is missing".
package validates
