package addresscodec

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("decode hex failed: %v", err)
	}
	return b
}

func TestAlphabetIsLedgerOrdering(t *testing.T) {
	if len(AlphabetString) != 58 {
		t.Fatalf("unexpected alphabet length: %d", len(AlphabetString))
	}
	if got := EncodeBase58([]byte{0, 0, 1}); !strings.HasPrefix(got, "rr") {
		t.Fatalf("leading zero bytes must encode as 'r', got %q", got)
	}
	decoded, err := DecodeBase58(EncodeBase58([]byte{0, 0, 1, 2, 3}))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(decoded, []byte{0, 0, 1, 2, 3}) {
		t.Fatalf("leading zeros not preserved: %x", decoded)
	}
}

func TestClassicAddressFromPublicKey(t *testing.T) {
	pub := mustHex(t, "030D58EB48B4420B1F7B9DF55087E0E29FEF0E8468F9A6825B01CA2C361042D435")
	addr, err := EncodeClassicAddressFromPublicKey(pub)
	if err != nil {
		t.Fatalf("encode address failed: %v", err)
	}
	if addr != "rU6K7V3Po4snVhBBaU29sesqs2qTQJWDw1" {
		t.Fatalf("unexpected address: %s", addr)
	}
	id, err := DecodeClassicAddress(addr)
	if err != nil {
		t.Fatalf("decode address failed: %v", err)
	}
	if id != AccountIDFromPublicKey(pub) {
		t.Fatal("decoded account id does not match hash of public key")
	}
}

func TestWellKnownAccounts(t *testing.T) {
	var zero AccountID
	if got := zero.String(); got != "rrrrrrrrrrrrrrrrrrrrrhoLvTp" {
		t.Fatalf("unexpected account zero: %s", got)
	}
	one := AccountID{19: 1}
	if got := one.String(); got != "rrrrrrrrrrrrrrrrrrrrBZbvji" {
		t.Fatalf("unexpected account one: %s", got)
	}
}

func TestDecodeSeedVersions(t *testing.T) {
	entropy, version, err := DecodeSeed("snoPBrXtMeMyMHUVTgbuqAfg1SUTb")
	if err != nil {
		t.Fatalf("decode family seed failed: %v", err)
	}
	if version != FamilySeedVersion {
		t.Fatalf("expected family seed version, got %x", []byte(version))
	}
	if got := strings.ToUpper(hex.EncodeToString(entropy)); got != "DEDCE9CE67B451D852FD4E846FCDE31C" {
		t.Fatalf("unexpected entropy: %s", got)
	}

	_, version, err = DecodeSeed("sEdSKaCy2JT7JaM7v95H9SxkhP9wS2r")
	if err != nil {
		t.Fatalf("decode ed25519 seed failed: %v", err)
	}
	if version != Ed25519SeedVersion {
		t.Fatalf("expected ed25519 seed version, got %x", []byte(version))
	}
}

func TestSeedRoundTripBothVersions(t *testing.T) {
	entropy := mustHex(t, "00112233445566778899AABBCCDDEEFF")
	for _, v := range []Version{Ed25519SeedVersion, FamilySeedVersion} {
		encoded, err := EncodeSeed(entropy, v)
		if err != nil {
			t.Fatalf("encode seed failed: %v", err)
		}
		if v == Ed25519SeedVersion && !strings.HasPrefix(encoded, "sEd") {
			t.Fatalf("ed25519 seed should start with sEd, got %s", encoded)
		}
		got, gotVersion, err := DecodeSeed(encoded)
		if err != nil {
			t.Fatalf("decode seed failed: %v", err)
		}
		if gotVersion != v || !bytes.Equal(got, entropy) {
			t.Fatalf("round trip mismatch: %x %x", []byte(gotVersion), got)
		}
	}
}

func TestEncodeSeedRejectsWrongLength(t *testing.T) {
	if _, err := EncodeSeed(make([]byte, 15), FamilySeedVersion); !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
	if _, err := EncodeSeed(make([]byte, 16), AccountIDVersion); !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode for non-seed version, got %v", err)
	}
}

func TestDecodeCheckedRejectsVersionAndLengthMismatch(t *testing.T) {
	addr := "rU6K7V3Po4snVhBBaU29sesqs2qTQJWDw1"
	if _, _, err := DecodeChecked(addr, []Version{FamilySeedVersion}, 0); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
	if _, _, err := DecodeChecked(addr, []Version{AccountIDVersion}, 16); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected length mismatch, got %v", err)
	}
	if _, _, err := DecodeChecked(addr, []Version{AccountIDVersion}, 0); err != nil {
		t.Fatalf("expected decode without length constraint, got %v", err)
	}
}

func TestSingleCharacterMutationFailsChecksum(t *testing.T) {
	valid := []string{
		"rU6K7V3Po4snVhBBaU29sesqs2qTQJWDw1",
		"snoPBrXtMeMyMHUVTgbuqAfg1SUTb",
		"sEdSKaCy2JT7JaM7v95H9SxkhP9wS2r",
	}
	for _, s := range valid {
		for i := 0; i < len(s); i++ {
			idx := strings.IndexByte(AlphabetString, s[i])
			replacement := AlphabetString[(idx+1)%len(AlphabetString)]
			mutated := s[:i] + string(replacement) + s[i+1:]
			if _, _, err := DecodeChecked(mutated, []Version{AccountIDVersion, FamilySeedVersion, Ed25519SeedVersion}, 0); !errors.Is(err, ErrDecode) {
				t.Fatalf("mutation %q of %q decoded without error", mutated, s)
			}
		}
	}
}

func TestDecodeRejectsForeignCharacters(t *testing.T) {
	if _, err := DecodeClassicAddress("0OIl"); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if _, err := DecodeClassicAddress(""); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for empty input, got %v", err)
	}
}

func TestPublicKeyCodecs(t *testing.T) {
	pub := mustHex(t, "030D58EB48B4420B1F7B9DF55087E0E29FEF0E8468F9A6825B01CA2C361042D435")
	node, err := EncodeNodePublicKey(pub)
	if err != nil {
		t.Fatalf("encode node key failed: %v", err)
	}
	if !strings.HasPrefix(node, "n") {
		t.Fatalf("node public key should start with n, got %s", node)
	}
	back, err := DecodeNodePublicKey(node)
	if err != nil || !bytes.Equal(back, pub) {
		t.Fatalf("node key round trip failed: %v", err)
	}

	acct, err := EncodeAccountPublicKey(pub)
	if err != nil {
		t.Fatalf("encode account key failed: %v", err)
	}
	if !strings.HasPrefix(acct, "a") {
		t.Fatalf("account public key should start with a, got %s", acct)
	}
	if _, err := DecodeNodePublicKey(acct); !errors.Is(err, ErrDecode) {
		t.Fatalf("account key must not decode as node key, got %v", err)
	}
	if _, err := EncodeAccountPublicKey(pub[:32]); !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode for short key, got %v", err)
	}
}
