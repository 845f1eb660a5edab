// Package step defines the contract between computation steps and the
// result cache.
//
// A Step exposes the three things the cache consumes: a stable unique
// identity, a cache-eligibility flag, and the serialization format for
// its result. The package also provides deterministic identity
// derivation for step implementers.
package step
