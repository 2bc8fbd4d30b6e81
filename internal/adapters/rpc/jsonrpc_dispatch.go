package rpc

import (
	"encoding/json"

	"xrpl-crypto/go-core/pkg/keys"
	"xrpl-crypto/go-core/pkg/signing"
)

const (
	methodHealthCheck = "health_check"
	methodAddress     = "keys.address"
	methodSign        = "keys.sign"
	methodVerify      = "keys.verify"
	methodVerifyMulti = "keys.verify_multi"
	methodProve       = "keys.prove"
	methodVerifyProof = "keys.verify_proof"
)

var knownMethods = map[string]struct{}{
	methodHealthCheck: {},
	methodAddress:     {},
	methodSign:        {},
	methodVerify:      {},
	methodVerifyMulti: {},
	methodProve:       {},
	methodVerifyProof: {},
}

func metricMethod(method string) string {
	if _, ok := knownMethods[method]; ok {
		return method
	}
	return "unknown"
}

func (s *Server) dispatchRPC(method string, rawParams json.RawMessage) (any, *rpcError) {
	switch method {
	case methodHealthCheck:
		return map[string]string{"status": "ok"}, nil
	case methodAddress:
		return callWithParams(rawParams, s.address)
	case methodSign:
		return callWithParams(rawParams, s.sign)
	case methodVerify:
		return callWithParams(rawParams, s.verify)
	case methodVerifyMulti:
		return callWithParams(rawParams, s.verifyMulti)
	case methodProve:
		return callWithParams(rawParams, s.prove)
	case methodVerifyProof:
		return callWithParams(rawParams, s.verifyProof)
	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: "method not found"}
	}
}

func callWithParams[T any](rawParams json.RawMessage, call func(T) (any, *rpcError)) (any, *rpcError) {
	params, err := decodeParams[T](rawParams)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	return call(params)
}

func (s *Server) address(p keyIDParams) (any, *rpcError) {
	pub, err := s.service.PublicKey(p.KeyID)
	if err != nil {
		return nil, rpcServiceError(err)
	}
	return map[string]string{
		"algorithm":  s.service.Algorithm().String(),
		"public_key": pub.Hex(),
		"address":    pub.Address(),
	}, nil
}

func (s *Server) sign(p signParams) (any, *rpcError) {
	tx, err := decodeHexParam(p.Tx)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	var (
		sig signing.Signature
		pub keys.PublicKey
	)
	if p.Multi {
		sig, pub, err = s.service.MultiSign(p.KeyID, tx)
	} else {
		sig, pub, err = s.service.Sign(p.KeyID, tx)
	}
	if err != nil {
		return nil, rpcServiceError(err)
	}
	return map[string]string{
		"public_key": pub.Hex(),
		"address":    pub.Address(),
		"signature":  sig.Hex(),
	}, nil
}

func (s *Server) verify(p verifyParams) (any, *rpcError) {
	pub, err := keys.ParsePublicKeyHex(p.PublicKey)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	tx, err := decodeHexParam(p.Tx)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	sig, err := signing.ParseSignatureHex(p.Signature)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	var ok bool
	if p.Multi {
		ok = s.service.VerifyMultiSigned([]signing.SignerSignature{{PublicKey: pub, Signature: sig}}, tx, 1)
	} else {
		ok = s.service.Verify(pub, tx, sig)
	}
	return map[string]bool{"valid": ok}, nil
}

func (s *Server) verifyMulti(p verifyMultiParams) (any, *rpcError) {
	tx, err := decodeHexParam(p.Tx)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	signers, err := decodeSignerParams(p.Signers)
	if err != nil || p.Quorum <= 0 {
		return nil, rpcInvalidParams()
	}
	return map[string]bool{"valid": s.service.VerifyMultiSigned(signers, tx, p.Quorum)}, nil
}

func (s *Server) prove(p proveParams) (any, *rpcError) {
	contextID, err := decodeContextParam(p.Context)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	proof, pub, err := s.service.ProveSecretKey(p.KeyID, contextID)
	if err != nil {
		return nil, rpcServiceError(err)
	}
	return map[string]string{
		"public_key": pub.Hex(),
		"proof":      proof.Hex(),
	}, nil
}

func (s *Server) verifyProof(p verifyProofParams) (any, *rpcError) {
	proof, err := decodeHexParam(p.Proof)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	pub, err := keys.ParsePublicKeyHex(p.PublicKey)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	contextID, err := decodeContextParam(p.Context)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	return map[string]bool{"valid": s.service.VerifySecretKeyProof(proof, pub, contextID)}, nil
}
