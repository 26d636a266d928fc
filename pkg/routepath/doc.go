// Package routepath normalizes navigation paths before they reach the resolver
// and defines which characters a literal route segment may contain.
//
// Every path handed to the resolver goes through [Canonicalize] first, so
// "/dashboard/", "//dashboard" and "/x/../dashboard" all resolve the same way.
package routepath
