// Package model defines the core data types shared across the sdksniff
// pipeline: the normalized request value tree produced by the body decoder,
// the category/finding types produced by the PII classifier, and the log
// entry format persisted by the event store.
//
// The types in this package are deliberately free of business logic beyond
// construction, merging, and (de)serialization. Decoding lives in the
// decoder package, classification in the classifier package, persistence in
// the store package, and scoring in the risk package.
package model
