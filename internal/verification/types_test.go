package verification

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNetwork(t *testing.T) {
	tests := []struct {
		input   string
		want    Network
		wantErr bool
	}{
		{"mainnet", Mainnet, false},
		{"sepolia", Sepolia, false},
		{"Sepolia", Sepolia, false},
		{"goerli", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNetwork(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnmappedNetwork))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVerifier(t *testing.T) {
	v, err := ParseVerifier("voyager")
	require.NoError(t, err)
	assert.Equal(t, Voyager, v)
	assert.Equal(t, "voyager", v.String())

	_, err = ParseVerifier("etherscan")
	assert.True(t, errors.Is(err, ErrUnknownVerifier))
}

func TestNewPayload_ContractAddress(t *testing.T) {
	sources := map[string]string{"src/lib.cairo": "mod token;"}
	p, err := NewPayload("MyToken", ContractAddress("0x123"), sources)
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "MyToken", raw["class_name"])
	assert.Equal(t, "0x123", raw["contract_address"])
	// The unused identity field is present and null.
	v, ok := raw["class_hash"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, map[string]any{"src/lib.cairo": "mod token;"}, raw["source_code"])
}

func TestNewPayload_ClassHash(t *testing.T) {
	p, err := NewPayload("MyToken", ClassHash("0xabc"), nil)
	require.NoError(t, err)
	assert.Nil(t, p.ContractAddress)
	require.NotNil(t, p.ClassHash)
	assert.Equal(t, "0xabc", *p.ClassHash)
	assert.NotNil(t, p.SourceCode)
}

func TestNewPayload_CopiesSources(t *testing.T) {
	sources := map[string]string{"a.cairo": "a"}
	p, err := NewPayload("A", ClassHash("0x1"), sources)
	require.NoError(t, err)

	sources["b.cairo"] = "b"
	assert.Len(t, p.SourceCode, 1)
}

func TestNewPayload_MissingIdentity(t *testing.T) {
	_, err := NewPayload("A", nil, nil)
	assert.True(t, errors.Is(err, ErrRequestSerialization))
}

func TestServiceRejectedError(t *testing.T) {
	var err error = &ServiceRejectedError{StatusCode: 400, Body: "bad request"}
	assert.Equal(t, "bad request", err.Error())
	assert.True(t, errors.Is(err, ErrServiceRejected))
	assert.False(t, errors.Is(err, ErrTransportSend))
}
