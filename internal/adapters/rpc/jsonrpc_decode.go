package rpc

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"xrpl-crypto/go-core/pkg/keys"
	"xrpl-crypto/go-core/pkg/signing"
	"xrpl-crypto/go-core/pkg/zkp"
)

var errInvalidParams = errors.New("invalid params")

type keyIDParams struct {
	KeyID string `json:"key_id"`
}

type signParams struct {
	KeyID string `json:"key_id"`
	Tx    string `json:"tx"`
	Multi bool   `json:"multi"`
}

type verifyParams struct {
	PublicKey string `json:"public_key"`
	Tx        string `json:"tx"`
	Signature string `json:"signature"`
	Multi     bool   `json:"multi"`
}

type signerParams struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

type verifyMultiParams struct {
	Tx      string         `json:"tx"`
	Signers []signerParams `json:"signers"`
	Quorum  int            `json:"quorum"`
}

type proveParams struct {
	KeyID   string `json:"key_id"`
	Context string `json:"context"`
}

type verifyProofParams struct {
	Proof     string `json:"proof"`
	PublicKey string `json:"public_key"`
	Context   string `json:"context"`
}

// decodeParams accepts a single named-parameter object and rejects unknown
// fields so a misspelt key_id cannot fall back to an empty one.
func decodeParams[T any](raw json.RawMessage) (T, error) {
	var p T
	if len(bytes.TrimSpace(raw)) == 0 {
		return p, errInvalidParams
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, errInvalidParams
	}
	return p, nil
}

func decodeHexParam(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errInvalidParams
	}
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, errInvalidParams
	}
	return b, nil
}

// decodeContextParam treats an empty context as "no context".
func decodeContextParam(value string) ([]byte, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	h, err := zkp.ParseContextHash(value)
	if err != nil {
		return nil, errInvalidParams
	}
	return h.Bytes(), nil
}

func decodeSignerParams(in []signerParams) ([]signing.SignerSignature, error) {
	if len(in) == 0 {
		return nil, errInvalidParams
	}
	out := make([]signing.SignerSignature, 0, len(in))
	for _, p := range in {
		pub, err := keys.ParsePublicKeyHex(p.PublicKey)
		if err != nil {
			return nil, errInvalidParams
		}
		sig, err := signing.ParseSignatureHex(p.Signature)
		if err != nil {
			return nil, errInvalidParams
		}
		out = append(out, signing.SignerSignature{PublicKey: pub, Signature: sig})
	}
	return out, nil
}
