// Package sniffer orchestrates the detection pipeline: intercepted
// request events are decoded into value trees, classified for leaked
// data, deduplicated, and persisted. It also replays previously captured
// traffic dumps through the same pipeline so rule changes can be
// evaluated against historical sessions.
package sniffer
