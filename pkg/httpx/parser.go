package httpx

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
)

// Parser converts a raw response body into a Data tree.
type Parser func(body []byte) (Data, error)

// ParseJSON parses a JSON object body. An empty body yields empty Data.
func ParseJSON(body []byte) (Data, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Data{}, nil
	}
	d, err := decodeJSONObject(body)
	if err != nil {
		return Data{}, errors.Join(ErrDecode, err)
	}
	return d, nil
}

// ListKey holds the elements of a top-level JSON array parsed by ParseJSONList.
const ListKey = "items"

// ParseJSONList parses a body that may be a top-level JSON array, such as
// the GitHub email list. The array is exposed under ListKey; object bodies,
// usually errors, parse as with ParseJSON.
func ParseJSONList(body []byte) (Data, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return ParseJSON(body)
	}
	return ParseJSON(append(append([]byte(`{"`+ListKey+`":`), body...), '}'))
}

// ParseForm parses a k=v&k=v body. Repeated keys become string lists.
//
// Bodies that are actually JSON, or JSONP of the form
// "callback( {...} );", are handed to ParseJSON.
func ParseForm(body []byte) (Data, error) {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return Data{}, nil
	}
	if inner, ok := unwrapJSONP(s); ok {
		return ParseJSON([]byte(inner))
	}
	if strings.HasPrefix(s, "{") {
		return ParseJSON([]byte(s))
	}

	values, err := url.ParseQuery(s)
	if err != nil {
		return Data{}, errors.Join(ErrDecode, err)
	}
	m := make(map[string]any, len(values))
	for k, vs := range values {
		switch len(vs) {
		case 0:
			m[k] = ""
		case 1:
			m[k] = vs[0]
		default:
			m[k] = vs
		}
	}
	return NewData(m), nil
}

func unwrapJSONP(s string) (string, bool) {
	if !strings.HasPrefix(s, "callback") {
		return "", false
	}
	open := strings.IndexByte(s, '(')
	closing := strings.LastIndexByte(s, ')')
	if open < 0 || closing <= open {
		return "", false
	}
	return strings.TrimSpace(s[open+1 : closing]), true
}
