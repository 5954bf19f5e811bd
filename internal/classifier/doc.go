// Package classifier recursively walks normalized request values and tags
// scalar leaves with content categories (phone numbers, emails, hardware
// identifiers, payment card numbers, and so on).
//
// The classifier is a set of independent pattern rules, not a partition:
// one value may match several categories, and each match is recorded.
// Three rule families exist:
//
//   - A data-driven keyword+value regex table covering ~45 categories,
//     compiled once at construction.
//   - An IMEI rule that Luhn-validates 15-digit values under IMEI-ish keys
//     and buckets failures separately for false-positive analysis.
//   - A payment card rule that Luhn-validates 13-19 digit values and
//     classifies the issuing network by prefix.
//
// Classification never fails: malformed or unrecognizable input simply
// produces no findings.
package classifier
