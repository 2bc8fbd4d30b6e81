package zkp

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"xrpl-crypto/go-core/pkg/addresscodec"
	"xrpl-crypto/go-core/pkg/hashing"
)

const (
	ContextHashLength = 32
	IssuanceIDLength  = 24

	commonContextLength = 2 + addresscodec.AccountIDLength + 4 + IssuanceIDLength
)

// TransactionType is the 2-byte code that opens every context layout.
type TransactionType uint16

const (
	ConfidentialConvert     TransactionType = 85
	ConfidentialConvertBack TransactionType = 86
	ConfidentialSend        TransactionType = 87
	ConfidentialClawback    TransactionType = 88
)

// IssuanceID identifies a token issuance: issuer sequence (4) ‖ issuer account (20).
type IssuanceID [IssuanceIDLength]byte

func ParseIssuanceID(s string) (IssuanceID, error) {
	var id IssuanceID
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return id, fmt.Errorf("%w: issuance id: %v", ErrInvalidLength, err)
	}
	if len(b) != IssuanceIDLength {
		return id, fmt.Errorf("%w: issuance id must be %d bytes, got %d", ErrInvalidLength, IssuanceIDLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// NewIssuanceID builds the identifier from its issuer sequence and account.
func NewIssuanceID(sequence uint32, issuer addresscodec.AccountID) IssuanceID {
	var id IssuanceID
	binary.BigEndian.PutUint32(id[:4], sequence)
	copy(id[4:], issuer[:])
	return id
}

func (id IssuanceID) Hex() string {
	return strings.ToUpper(hex.EncodeToString(id[:]))
}

// ContextHash is SHA512-half over one transaction's context layout.
type ContextHash [ContextHashLength]byte

func (h ContextHash) Bytes() []byte {
	return append([]byte(nil), h[:]...)
}

func (h ContextHash) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

func ParseContextHash(s string) (ContextHash, error) {
	var h ContextHash
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return h, fmt.Errorf("%w: context hash: %v", ErrInvalidLength, err)
	}
	if len(b) != ContextHashLength {
		return h, fmt.Errorf("%w: context hash must be %d bytes, got %d", ErrInvalidLength, ContextHashLength, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Common holds the fields every confidential transaction binds.
type Common struct {
	Account    addresscodec.AccountID
	Sequence   uint32
	IssuanceID IssuanceID
}

func (c Common) appendTo(buf []byte, txType TransactionType) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(txType))
	buf = append(buf, c.Account[:]...)
	buf = binary.BigEndian.AppendUint32(buf, c.Sequence)
	return append(buf, c.IssuanceID[:]...)
}

// ConvertContext: common ‖ amount(8).
type ConvertContext struct {
	Common
	Amount uint64
}

func (c ConvertContext) Bytes() []byte {
	buf := c.appendTo(make([]byte, 0, commonContextLength+8), ConfidentialConvert)
	return binary.BigEndian.AppendUint64(buf, c.Amount)
}

func (c ConvertContext) Hash() ContextHash {
	return ContextHash(hashing.Sha512Half(c.Bytes()))
}

// ConvertBackContext: common ‖ amount(8) ‖ version(4).
type ConvertBackContext struct {
	Common
	Amount  uint64
	Version uint32
}

func (c ConvertBackContext) Bytes() []byte {
	buf := c.appendTo(make([]byte, 0, commonContextLength+12), ConfidentialConvertBack)
	buf = binary.BigEndian.AppendUint64(buf, c.Amount)
	return binary.BigEndian.AppendUint32(buf, c.Version)
}

func (c ConvertBackContext) Hash() ContextHash {
	return ContextHash(hashing.Sha512Half(c.Bytes()))
}

// SendContext: common ‖ destination(20) ‖ version(4).
type SendContext struct {
	Common
	Destination addresscodec.AccountID
	Version     uint32
}

func (c SendContext) Bytes() []byte {
	buf := c.appendTo(make([]byte, 0, commonContextLength+24), ConfidentialSend)
	buf = append(buf, c.Destination[:]...)
	return binary.BigEndian.AppendUint32(buf, c.Version)
}

func (c SendContext) Hash() ContextHash {
	return ContextHash(hashing.Sha512Half(c.Bytes()))
}

// ClawbackContext: common ‖ amount(8) ‖ holder(20).
type ClawbackContext struct {
	Common
	Amount uint64
	Holder addresscodec.AccountID
}

func (c ClawbackContext) Bytes() []byte {
	buf := c.appendTo(make([]byte, 0, commonContextLength+28), ConfidentialClawback)
	buf = binary.BigEndian.AppendUint64(buf, c.Amount)
	return append(buf, c.Holder[:]...)
}

func (c ClawbackContext) Hash() ContextHash {
	return ContextHash(hashing.Sha512Half(c.Bytes()))
}
