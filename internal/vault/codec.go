package vault

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Data is the plaintext vault content. It exists only in memory.
type Data struct {
	Mnemonic    string            `json:"mnemonic,omitempty"`
	PrivateKeys map[string]string `json:"privateKeys" validate:"required,dive,keys,required,endkeys,required,hexadecimal"`
}

// EncodeData serializes d as canonical JSON. Map keys are sorted.
func EncodeData(d *Data) ([]byte, error) {
	if d == nil {
		return nil, ErrMalformedVault
	}
	if d.PrivateKeys == nil {
		d = &Data{Mnemonic: d.Mnemonic, PrivateKeys: map[string]string{}}
	}
	if err := validate.Struct(d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVault, err)
	}
	return json.Marshal(d)
}

// DecodeData parses vault plaintext, rejecting unknown fields and invalid keys.
func DecodeData(b []byte) (*Data, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	var d Data
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVault, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformedVault)
	}
	if err := validate.Struct(&d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVault, err)
	}
	return &d, nil
}
