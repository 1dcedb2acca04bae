package verification

import "fmt"

// Payload is the request body sent to every verifier. Both identity fields are
// always serialized; the one not in use is null.
type Payload struct {
	ClassName       string            `json:"class_name"`
	ContractAddress *string           `json:"contract_address"`
	ClassHash       *string           `json:"class_hash"`
	SourceCode      map[string]string `json:"source_code"`
}

// NewPayload builds a payload for one verification attempt. The source map is
// copied so later changes to it do not leak into the request.
func NewPayload(className string, id Identity, sources map[string]string) (Payload, error) {
	p := Payload{
		ClassName:  className,
		SourceCode: make(map[string]string, len(sources)),
	}
	for k, v := range sources {
		p.SourceCode[k] = v
	}

	switch v := id.(type) {
	case ContractAddress:
		s := string(v)
		p.ContractAddress = &s
	case ClassHash:
		s := string(v)
		p.ClassHash = &s
	default:
		return Payload{}, fmt.Errorf("%w: missing contract address or class hash", ErrRequestSerialization)
	}

	return p, nil
}
