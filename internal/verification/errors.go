package verification

import "errors"

// Error kinds returned by the pipeline. Callers compare with errors.Is.
var (
	ErrUserAborted          = errors.New("verification aborted")
	ErrContractNotFound     = errors.New("contract not found")
	ErrWorkspacePath        = errors.New("workspace path error")
	ErrRequestSerialization = errors.New("request serialization error")
	ErrTransportSend        = errors.New("failed to send request to verifier API")
	ErrResponseRead         = errors.New("failed to read verifier API response")
	ErrServiceRejected      = errors.New("verifier rejected request")
	ErrUnmappedNetwork      = errors.New("unsupported network")
	ErrUnknownVerifier      = errors.New("unknown verifier")
)

// ServiceRejectedError is returned when the verifier answers with anything
// other than 200. Error() is the service's body so provider diagnostics reach
// the user verbatim.
type ServiceRejectedError struct {
	StatusCode int
	Body       string
}

func (e *ServiceRejectedError) Error() string {
	return e.Body
}

func (e *ServiceRejectedError) Unwrap() error {
	return ErrServiceRejected
}
