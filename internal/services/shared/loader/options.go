package loader

import (
	"io"
	"net/http"
	"strings"
)

// Credentials controls whether the loader's cookie jar is attached to a
// request.
type Credentials string

const (
	// CredentialsInclude always sends and stores cookies. It is the default.
	CredentialsInclude Credentials = "include"
	// CredentialsSameOrigin sends cookies only when the request targets the
	// configured origin.
	CredentialsSameOrigin Credentials = "same-origin"
	// CredentialsOmit never sends or stores cookies.
	CredentialsOmit Credentials = "omit"
)

// Options describes one request. The zero value is a GET with cookies.
type Options struct {
	Method      string
	Header      http.Header
	Body        io.Reader
	JSON        any // marshaled as the body when set; wins over Body
	Credentials Credentials
}

func (o Options) method() string {
	method := strings.ToUpper(strings.TrimSpace(o.Method))
	if method == "" {
		return http.MethodGet
	}
	return method
}

func (o Options) credentials() Credentials {
	if o.Credentials == "" {
		return CredentialsInclude
	}
	return o.Credentials
}
