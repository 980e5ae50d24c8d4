package httpx

import (
	"errors"
	"fmt"
	"net/http"
)

// Response is a fully read and parsed HTTP response.
type Response struct {
	Header     http.Header
	Body       []byte
	Data       Data
	StatusCode int
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NewResponse parses body with p and returns the response.
//
// A parse failure on a 2xx response is reported as ErrDecode; on any other
// status as ErrUnexpectedStatus. The response is returned in both cases so
// callers can inspect the raw body.
func NewResponse(status int, header http.Header, body []byte, p Parser) (*Response, error) {
	if p == nil {
		p = ParseJSON
	}
	if header == nil {
		header = http.Header{}
	}
	resp := &Response{StatusCode: status, Header: header, Body: body}

	data, err := p(body)
	if err != nil {
		if resp.OK() {
			return resp, err
		}
		return resp, errors.Join(ErrUnexpectedStatus, fmt.Errorf("status=%d", status), err)
	}
	resp.Data = data
	return resp, nil
}

// JSONResponse builds a response from a JSON string. Intended for mock executors.
func JSONResponse(status int, body string) (*Response, error) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return NewResponse(status, h, []byte(body), ParseJSON)
}
