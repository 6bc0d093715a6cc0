package protocol

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/OswaldHeaney/reviewnet/crypto"
)

// Signed provides authentication for ledger requests.
// The signature covers the serialized object plus the signer's public key so
// that neither can be swapped out independently.
type Signed[T any] struct {
	Principal crypto.Principal `json:"principal"`
	Signature crypto.Signature `json:"signature"`
	Object    *T               `json:"object"`
}

// NewSigned signs a request object with the caller's private key.
func NewSigned[T any](privkey crypto.PrivateKey, obj *T) (*Signed[T], error) {
	principal, err := privkey.Principal()
	if err != nil {
		return nil, err
	}

	serialized, err := SerializeMessage(obj)
	if err != nil {
		return nil, err
	}

	signature, err := crypto.Sign(privkey, append(serialized, principal...))
	if err != nil {
		return nil, err
	}

	return &Signed[T]{
		Principal: principal,
		Signature: signature,
		Object:    obj,
	}, nil
}

// UnsafeObject returns the object without signature verification.
func (s *Signed[T]) UnsafeObject() *T {
	return s.Object
}

// Recover verifies the signature and returns the object together with the
// authenticated principal that signed it.
func (s *Signed[T]) Recover() (*T, crypto.Principal, error) {
	serialized, err := SerializeMessage(s.Object)
	if err != nil {
		return nil, nil, err
	}

	if !s.Signature.Verify(s.Principal, append(serialized, s.Principal...)) {
		return nil, nil, errors.New("signature not valid")
	}

	return s.Object, s.Principal, nil
}

// UnmarshalMessage deserializes a message of type T from JSON bytes.
func UnmarshalMessage[T any](data []byte) (*T, error) {
	var msg T
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeMessage deserializes a message of type T from a reader.
func DecodeMessage[T any](reader io.Reader) (*T, error) {
	var msg T
	if err := json.NewDecoder(reader).Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SerializeMessage serializes a message to JSON bytes.
func SerializeMessage[T any](msg *T) ([]byte, error) {
	return json.Marshal(msg)
}
