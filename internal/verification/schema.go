package verification

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed payload.schema.json
var payloadSchemaJSON []byte

var payloadSchema = mustCompileSchema(payloadSchemaJSON)

func mustCompileSchema(raw []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compiling payload schema: %v", err))
	}
	return schema
}

// ValidatePayloadJSON checks an encoded request body against the wire
// contract shared by all verifiers.
func ValidatePayloadJSON(data []byte) error {
	result, err := payloadSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestSerialization, err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrRequestSerialization, strings.Join(errs, "; "))
}
