// Package decoder normalizes raw intercepted HTTP requests into value
// trees for classification. It handles gzip decompression, GraphQL
// envelopes, JSON, form-encoded and multipart bodies, query strings, and
// EXIF metadata embedded in uploaded images.
//
// The decoder never fails a request: every parse error degrades to a
// coarser classification target (ultimately a single "raw_body" scalar)
// so that malformed or adversarial payloads lose precision, not
// visibility. Oversized bodies are truncated to a fixed prefix rather
// than rejected, which bounds classification cost per request.
package decoder
