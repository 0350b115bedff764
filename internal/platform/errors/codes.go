// Package errors provides structured error handling for the loader and the
// content preload pipeline.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request loader errors
	CodeLoaderTransport   Code = "LOADER_TRANSPORT"
	CodeLoaderApplication Code = "LOADER_APPLICATION"
	CodeLoaderDecode      Code = "LOADER_DECODE"
	CodeLoaderRequest     Code = "LOADER_REQUEST"

	// Preload errors
	CodePreloadScan         Code = "PRELOAD_SCAN"
	CodePreloadDecode       Code = "PRELOAD_DECODE"
	CodePreloadWorkerExited Code = "PRELOAD_WORKER_EXITED"

	// Read-side errors
	CodeNotFound Code = "NOT_FOUND"
	CodeNotReady Code = "NOT_READY"
)

// Metadata keys attached to loader errors.
const (
	MetadataStatus   = "status"
	MetadataEndpoint = "endpoint"
	MetadataPath     = "path"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNotReady:
		return http.StatusServiceUnavailable
	case CodeLoaderRequest:
		return http.StatusBadRequest
	case CodeLoaderTransport, CodeLoaderApplication, CodeLoaderDecode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
