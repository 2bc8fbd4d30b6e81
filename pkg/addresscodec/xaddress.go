package addresscodec

import (
	"encoding/binary"
	"fmt"
)

const (
	xAddressMainnetPrefix Version = "\x05\x44"
	xAddressTestnetPrefix Version = "\x04\x93"

	// account id, tag flag, 64-bit little-endian tag
	xAddressPayloadLength = AccountIDLength + 1 + 8
)

// XAddress packs an account ID with an optional destination tag and the
// network it is meant for.
type XAddress struct {
	AccountID AccountID
	Tag       *uint32
	Test      bool
}

func EncodeXAddress(accountID AccountID, tag *uint32, test bool) string {
	payload := make([]byte, xAddressPayloadLength)
	copy(payload, accountID[:])
	if tag != nil {
		payload[AccountIDLength] = 1
		binary.LittleEndian.PutUint64(payload[AccountIDLength+1:], uint64(*tag))
	}
	prefix := xAddressMainnetPrefix
	if test {
		prefix = xAddressTestnetPrefix
	}
	return EncodeChecked(payload, prefix)
}

func DecodeXAddress(s string) (XAddress, error) {
	payload, version, err := DecodeChecked(s, []Version{xAddressMainnetPrefix, xAddressTestnetPrefix}, xAddressPayloadLength)
	if err != nil {
		return XAddress{}, err
	}
	var out XAddress
	copy(out.AccountID[:], payload[:AccountIDLength])
	out.Test = version == xAddressTestnetPrefix

	flag := payload[AccountIDLength]
	tag := binary.LittleEndian.Uint64(payload[AccountIDLength+1:])
	switch flag {
	case 0:
		if tag != 0 {
			return XAddress{}, fmt.Errorf("%w: tag bytes set without tag flag", ErrDecode)
		}
	case 1:
		if tag > 0xFFFFFFFF {
			return XAddress{}, fmt.Errorf("%w: tag exceeds 32 bits", ErrDecode)
		}
		t := uint32(tag)
		out.Tag = &t
	default:
		return XAddress{}, fmt.Errorf("%w: unsupported tag flag %d", ErrDecode, flag)
	}
	return out, nil
}

func ClassicAddressToXAddress(classic string, tag *uint32, test bool) (string, error) {
	id, err := DecodeClassicAddress(classic)
	if err != nil {
		return "", err
	}
	return EncodeXAddress(id, tag, test), nil
}

// XAddressToClassicAddress returns the classic address, the tag (nil when
// absent) and whether the X-Address targets a test network.
func XAddressToClassicAddress(xAddress string) (string, *uint32, bool, error) {
	x, err := DecodeXAddress(xAddress)
	if err != nil {
		return "", nil, false, err
	}
	return x.AccountID.String(), x.Tag, x.Test, nil
}

func IsValidXAddress(s string) bool {
	_, err := DecodeXAddress(s)
	return err == nil
}
