package httpx

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Method is the HTTP verb of a request prototype.
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
	MethodPut  Method = http.MethodPut
)

// Param is one ordered name/value pair. Names may repeat.
type Param struct {
	Name  string
	Value string
}

// Request is an immutable HTTP request prototype.
// All With* methods return a modified copy; the receiver is never changed
// and copies never share parameter storage.
type Request struct {
	json     map[string]any
	parser   Parser
	method   Method
	baseURL  string
	fragment string
	query    []Param
	header   []Param
	form     []Param
}

// Get returns a GET prototype for the given URL with the JSON parser.
func Get(rawURL string) Request {
	return newRequest(MethodGet, rawURL)
}

// Post returns a POST prototype for the given URL with the JSON parser.
func Post(rawURL string) Request {
	return newRequest(MethodPost, rawURL)
}

// Put returns a PUT prototype for the given URL with the JSON parser.
func Put(rawURL string) Request {
	return newRequest(MethodPut, rawURL)
}

func newRequest(m Method, rawURL string) Request {
	return Request{method: m, baseURL: rawURL, parser: ParseJSON}
}

// Clone returns a deep copy of the request.
func (r Request) Clone() Request {
	c := r
	c.query = slices.Clone(r.query)
	c.header = slices.Clone(r.header)
	c.form = slices.Clone(r.form)
	if r.json != nil {
		c.json = deepCopyMap(r.json)
	}
	return c
}

// WithQuery appends a query parameter. A nil value is skipped.
func (r Request) WithQuery(name string, value any) Request {
	s, ok := formatValue(value)
	if !ok {
		return r
	}
	c := r.Clone()
	c.query = append(c.query, Param{Name: name, Value: s})
	return c
}

// WithForm appends a form body parameter. A nil value is skipped.
// For GET requests form parameters are sent in the query string.
func (r Request) WithForm(name string, value any) Request {
	s, ok := formatValue(value)
	if !ok {
		return r
	}
	c := r.Clone()
	c.form = append(c.form, Param{Name: name, Value: s})
	return c
}

// WithHeader appends a header. A nil value is skipped.
func (r Request) WithHeader(name string, value any) Request {
	s, ok := formatValue(value)
	if !ok {
		return r
	}
	c := r.Clone()
	c.header = append(c.header, Param{Name: name, Value: s})
	return c
}

// WithBearer sets an "Authorization: Bearer <token>" header.
func (r Request) WithBearer(token string) Request {
	return r.WithHeader("Authorization", "Bearer "+token)
}

// WithBasicAuth sets an HTTP basic Authorization header.
func (r Request) WithBasicAuth(user, password string) Request {
	cred := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
	return r.WithHeader("Authorization", "Basic "+cred)
}

// WithJSON sets (or extends) a JSON request body. When a JSON body is set
// it is sent instead of the form parameters.
func (r Request) WithJSON(body map[string]any) Request {
	c := r.Clone()
	if c.json == nil {
		c.json = make(map[string]any, len(body))
	}
	for k, v := range deepCopyMap(body) {
		c.json[k] = v
	}
	return c
}

// WithFragment sets the URL fragment (e.g. "wechat_redirect").
func (r Request) WithFragment(fragment string) Request {
	c := r.Clone()
	c.fragment = fragment
	return c
}

// WithParser replaces the response parser.
func (r Request) WithParser(p Parser) Request {
	c := r.Clone()
	if p == nil {
		p = ParseJSON
	}
	c.parser = p
	return c
}

// Method returns the HTTP method.
func (r Request) Method() Method { return r.method }

// BaseURL returns the URL the prototype was created with.
func (r Request) BaseURL() string { return r.baseURL }

// Fragment returns the URL fragment.
func (r Request) Fragment() string { return r.fragment }

// Query returns a copy of the query parameters.
func (r Request) Query() []Param { return slices.Clone(r.query) }

// Header returns a copy of the headers.
func (r Request) Header() []Param { return slices.Clone(r.header) }

// Form returns a copy of the form parameters.
func (r Request) Form() []Param { return slices.Clone(r.form) }

// JSONBody returns a copy of the JSON body, or nil when none is set.
func (r Request) JSONBody() map[string]any {
	if r.json == nil {
		return nil
	}
	return deepCopyMap(r.json)
}

// Parser returns the response parser.
func (r Request) Parser() Parser {
	if r.parser == nil {
		return ParseJSON
	}
	return r.parser
}

// QueryValue returns the first query value with the given name.
func (r Request) QueryValue(name string) string { return firstValue(r.query, name) }

// FormValue returns the first form value with the given name.
func (r Request) FormValue(name string) string { return firstValue(r.form, name) }

// HeaderValue returns the first header value with the given name (case-insensitive).
func (r Request) HeaderValue(name string) string {
	for _, p := range r.header {
		if strings.EqualFold(p.Name, name) {
			return p.Value
		}
	}
	return ""
}

// URL returns the full request URL: base URL, query parameters in insertion
// order (appended to any query already present in the base URL) and fragment.
func (r Request) URL() (string, error) {
	params := r.query
	if r.method == MethodGet && r.json == nil {
		params = append(slices.Clone(r.query), r.form...)
	}
	return r.buildURL(params)
}

func (r Request) buildURL(params []Param) (string, error) {
	u, err := url.Parse(r.baseURL)
	if err != nil {
		return "", errors.Join(ErrInvalidRequest, fmt.Errorf("parse url %q: %w", r.baseURL, err))
	}
	if len(params) > 0 {
		enc := encodeParams(params)
		if u.RawQuery == "" {
			u.RawQuery = enc
		} else {
			u.RawQuery += "&" + enc
		}
	}
	if r.fragment != "" {
		u.Fragment = r.fragment
	}
	return u.String(), nil
}

// HTTPRequest converts the prototype into a *http.Request.
func (r Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	target, err := r.URL()
	if err != nil {
		return nil, err
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case r.json != nil:
		data, err := json.Marshal(r.json)
		if err != nil {
			return nil, errors.Join(ErrInvalidRequest, fmt.Errorf("encode json body: %w", err))
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case r.method != MethodGet:
		body = strings.NewReader(encodeParams(r.form))
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, string(r.method), target, body)
	if err != nil {
		return nil, errors.Join(ErrInvalidRequest, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	for i, p := range r.header {
		// First explicit occurrence replaces defaults, later ones add.
		if firstIndex(r.header, p.Name) == i {
			req.Header.Set(p.Name, p.Value)
			continue
		}
		req.Header.Add(p.Name, p.Value)
	}
	return req, nil
}

func encodeParams(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

func firstValue(params []Param, name string) string {
	for _, p := range params {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

func firstIndex(params []Param, name string) int {
	for i, p := range params {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

// formatValue renders a parameter value. It reports false for nil values.
func formatValue(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	c := maps.Clone(m)
	for k, v := range c {
		c[k] = deepCopyValue(v)
	}
	return c
}

func deepCopyValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return deepCopyMap(v)
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = deepCopyValue(v[i])
		}
		return out
	default:
		return v
	}
}
