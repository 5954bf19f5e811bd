package decoder

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/nao1215/sdksniff/internal/model"
)

// Default size limits.
const (
	// DefaultMaxBodyBytes is the body size ceiling. Bodies larger than
	// this are not parsed; only a truncated prefix is classified. This
	// bounds classifier cost against pathological inputs.
	DefaultMaxBodyBytes = 1_000_000

	// DefaultTruncateBytes is the prefix length classified when a body
	// exceeds the ceiling.
	DefaultTruncateBytes = 1000
)

// Synthetic keys used when no structural key exists.
const (
	// RawBodyKey is the key assigned to unparseable or truncated bodies.
	RawBodyKey = "raw_body"

	// GraphQLLiteralsKey is the key assigned to string literals extracted
	// from a GraphQL query document.
	GraphQLLiteralsKey = "graphql_literals"
)

// Request is one decoded-at-the-transport-layer HTTP request, as handed
// over by the intercepting proxy. The body is already decrypted but may
// still be compressed.
type Request struct {
	// Method is the HTTP method (GET, POST, ...).
	Method string

	// URL is the full request URL.
	URL string

	// ContentType is the Content-Type header value, possibly empty.
	ContentType string

	// ContentEncoding is the Content-Encoding header value, possibly empty.
	ContentEncoding string

	// Body is the raw request body.
	Body []byte

	// Query holds the parsed query string parameters.
	Query url.Values
}

// Target is one classification unit produced by the decoder: a value
// tree plus the key it originated under (empty for whole bodies).
type Target struct {
	Key   string
	Value model.Value
}

// Decoder turns raw requests into classification targets.
type Decoder struct {
	maxBodyBytes  int
	truncateBytes int
	logger        *slog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the structured logger used for decode diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) { d.logger = logger }
}

// WithMaxBodyBytes overrides the body size ceiling.
func WithMaxBodyBytes(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxBodyBytes = n
		}
	}
}

// WithTruncateBytes overrides the truncated-prefix length.
func WithTruncateBytes(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.truncateBytes = n
		}
	}
}

// New creates a Decoder with default limits.
func New(opts ...Option) *Decoder {
	d := &Decoder{
		maxBodyBytes:  DefaultMaxBodyBytes,
		truncateBytes: DefaultTruncateBytes,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// graphqlLiteralRE extracts quoted string literals from a GraphQL query
// document. Very short and very long literals are skipped: field names
// under 2 characters are noise and 200+ character blobs are handled by
// the raw body path.
var graphqlLiteralRE = regexp.MustCompile(`"([^"]{2,200})"`)

// Decode normalizes one request into classification targets.
//
// The stages are ordered and first-match-wins for the body: GraphQL
// envelope, then generic POST/PUT body handling, each with its own
// fallback chain. Query parameters always produce an independent target
// regardless of what happened to the body. Decode never fails; the
// worst outcome is a single raw_body scalar.
func (d *Decoder) Decode(req Request) []Target {
	var targets []Target

	body := d.decompress(req)
	text := strings.TrimSpace(strings.ToValidUTF8(string(body), "�"))

	switch {
	case d.isGraphQL(req) && text != "":
		targets = append(targets, d.decodeGraphQL(text)...)
	case (req.Method == "POST" || req.Method == "PUT") && text != "":
		targets = append(targets, d.decodeBody(req, text)...)
	}

	if len(req.Query) > 0 {
		targets = append(targets, Target{Value: valuesToMapping(req.Query)})
	}

	return targets
}

// decompress applies gzip decompression when the headers and magic bytes
// agree. Any failure returns the original bytes: compressed garbage is
// still classified as raw text rather than dropped.
func (d *Decoder) decompress(req Request) []byte {
	body := req.Body
	if !strings.Contains(strings.ToLower(req.ContentEncoding), "gzip") {
		return body
	}
	if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
		return body
	}

	gz, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		d.logger.Debug("gzip header rejected, using raw bytes", "url", req.URL, "error", err)
		return body
	}
	defer gz.Close() //nolint:errcheck // read-side close

	// Read one byte past the ceiling so oversize detection still fires
	// on decompressed size, not compressed size.
	decoded, err := io.ReadAll(io.LimitReader(gz, int64(d.maxBodyBytes)+1))
	if err != nil {
		d.logger.Debug("gzip stream truncated, using raw bytes", "url", req.URL, "error", err)
		return body
	}
	return decoded
}

// isGraphQL reports whether the request looks like a GraphQL call.
func (d *Decoder) isGraphQL(req Request) bool {
	u := strings.ToLower(req.URL)
	if strings.Contains(u, "/graphql") || strings.HasSuffix(u, ".graphql.json") {
		return true
	}
	return strings.Contains(strings.ToLower(req.ContentType), "graphql")
}

// decodeGraphQL unwraps a GraphQL envelope: variables are classified as
// a mapping, string literals inside the query document as a sequence,
// and the whole parsed envelope as a catch-all. A body that is not valid
// JSON degrades to a raw_body scalar.
func (d *Decoder) decodeGraphQL(text string) []Target {
	parsed, err := model.FromJSON([]byte(text))
	if err != nil {
		d.logger.Debug("graphql envelope is not JSON, classifying raw", "error", err)
		return []Target{{Key: RawBodyKey, Value: model.NewScalar(text)}}
	}

	var targets []Target

	if variables, ok := parsed.Get("variables"); ok && variables.Kind() == model.KindMapping && variables.Len() > 0 {
		targets = append(targets, Target{Value: variables})
	}

	if query, ok := parsed.Get("query"); ok && query.Kind() == model.KindScalar && query.Text() != "" {
		if literals := graphqlLiteralRE.FindAllStringSubmatch(query.Text(), -1); len(literals) > 0 {
			seq := model.NewSequence()
			for _, m := range literals {
				seq.Append(model.NewScalar(m[1]))
			}
			targets = append(targets, Target{Key: GraphQLLiteralsKey, Value: seq})
		}
	}

	// The whole envelope is classified too: SDKs stuff identifiers into
	// extensions and operationName, not just variables.
	targets = append(targets, Target{Value: parsed})
	return targets
}

// decodeBody handles generic POST/PUT bodies: oversize truncation, then
// JSON, then content-type specific formats, then raw text.
func (d *Decoder) decodeBody(req Request, text string) []Target {
	if len(text) > d.maxBodyBytes {
		d.logger.Debug("oversized body truncated", "url", req.URL, "size", len(text))
		return []Target{{Key: RawBodyKey, Value: model.NewScalar(truncate(text, d.truncateBytes))}}
	}

	if parsed, err := model.FromJSON([]byte(text)); err == nil {
		return []Target{{Value: parsed}}
	}

	contentType := strings.ToLower(req.ContentType)
	switch {
	case strings.Contains(contentType, "x-www-form-urlencoded"):
		form, err := url.ParseQuery(text)
		if err != nil {
			d.logger.Debug("form body rejected, classifying raw", "url", req.URL, "error", err)
			return []Target{{Key: RawBodyKey, Value: model.NewScalar(text)}}
		}
		return []Target{{Value: valuesToMapping(form)}}
	case strings.Contains(contentType, "multipart"):
		m, err := d.decodeMultipart(req.ContentType, []byte(text))
		if err != nil {
			d.logger.Debug("multipart body rejected, classifying raw", "url", req.URL, "error", err)
			return []Target{{Key: RawBodyKey, Value: model.NewScalar(text)}}
		}
		return []Target{{Value: m}}
	default:
		return []Target{{Key: RawBodyKey, Value: model.NewScalar(text)}}
	}
}

// valuesToMapping converts url.Values into an ordered mapping. Keys are
// sorted so the produced tree (and therefore classification output) is
// deterministic; single values become scalars, repeated keys a sequence.
func valuesToMapping(values url.Values) model.Value {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	m := model.NewMapping()
	for _, key := range keys {
		vs := values[key]
		if len(vs) == 1 {
			m.Set(key, model.NewScalar(vs[0]))
			continue
		}
		seq := model.NewSequence()
		for _, v := range vs {
			seq.Append(model.NewScalar(v))
		}
		m.Set(key, seq)
	}
	return m
}

// truncate returns at most n bytes of s.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
