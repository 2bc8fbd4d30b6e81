package keys

import (
	"bytes"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"xrpl-crypto/go-core/pkg/addresscodec"
	"xrpl-crypto/go-core/pkg/secret"
)

type vector struct {
	seed       string
	alg        Algorithm
	publicKey  string
	privateKey string
	address    string
}

var knownVectors = []vector{
	{
		seed:       "sp5fghtJtpUorTwvof1NpDXAzNwf5",
		alg:        Secp256k1,
		publicKey:  "030D58EB48B4420B1F7B9DF55087E0E29FEF0E8468F9A6825B01CA2C361042D435",
		privateKey: "00D78B9735C3F26501C7337B8A5727FD53A6EFDBC6AA55984F098488561F985E23",
		address:    "rU6K7V3Po4snVhBBaU29sesqs2qTQJWDw1",
	},
	{
		seed:       "sEdSKaCy2JT7JaM7v95H9SxkhP9wS2r",
		alg:        Ed25519,
		publicKey:  "ED01FA53FA5A7E77798F882ECE20B1ABC00BB358A9E55A202D0D0676BD0CE37A63",
		privateKey: "EDB4C4E046826BD26190D09715FC31F4E6A728204EADD112905B08B14B7F15C4F3",
		address:    "rLUEXYuLiQptky37CqLcm9USQpPiz5rkpD",
	},
}

func upperHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

func TestDeriveKeyPairKnownVectors(t *testing.T) {
	for _, v := range knownVectors {
		seed, err := DecodeSeed(v.seed)
		if err != nil {
			t.Fatalf("decode seed %s failed: %v", v.seed, err)
		}
		if seed.Algorithm() != v.alg {
			t.Fatalf("unexpected algorithm for %s: %s", v.seed, seed.Algorithm())
		}
		kp, err := seed.DeriveKeyPair()
		if err != nil {
			t.Fatalf("derive failed for %s: %v", v.seed, err)
		}
		if got := kp.PublicKey.Hex(); got != v.publicKey {
			t.Fatalf("unexpected public key for %s: %s", v.seed, got)
		}
		if got := upperHex(kp.PrivateKey.Prefixed()); got != v.privateKey {
			t.Fatalf("unexpected private key for %s: %s", v.seed, got)
		}
		if got := kp.Address(); got != v.address {
			t.Fatalf("unexpected address for %s: %s", v.seed, got)
		}
		encoded, err := seed.Encode()
		if err != nil || encoded != v.seed {
			t.Fatalf("seed re-encode mismatch: %s %v", encoded, err)
		}
	}
}

func TestSeedFromPassphraseMasterVector(t *testing.T) {
	seed, err := SeedFromPassphrase("masterpassphrase", Secp256k1)
	if err != nil {
		t.Fatalf("passphrase seed failed: %v", err)
	}
	if got := upperHex(seed.Entropy()); got != "DEDCE9CE67B451D852FD4E846FCDE31C" {
		t.Fatalf("unexpected entropy: %s", got)
	}
	encoded, err := seed.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if encoded != "snoPBrXtMeMyMHUVTgbuqAfg1SUTb" {
		t.Fatalf("unexpected seed: %s", encoded)
	}
	kp, err := seed.DeriveKeyPair()
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	if kp.PublicKey.Hex() != "0330E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD020" {
		t.Fatalf("unexpected public key: %s", kp.PublicKey.Hex())
	}
	if kp.Address() != "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh" {
		t.Fatalf("unexpected address: %s", kp.Address())
	}

	ed, err := SeedFromPassphrase("masterpassphrase", Ed25519)
	if err != nil {
		t.Fatalf("ed25519 passphrase seed failed: %v", err)
	}
	if !bytes.Equal(ed.Entropy(), seed.Entropy()) {
		t.Fatal("passphrase entropy must not depend on algorithm")
	}
	encoded, _ = ed.Encode()
	if !strings.HasPrefix(encoded, "sEd") {
		t.Fatalf("ed25519 seed should start with sEd, got %s", encoded)
	}
}

func TestSeedFromEntropyRoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{Ed25519, Secp256k1} {
		e, err := GenerateEntropy()
		if err != nil {
			t.Fatalf("generate entropy failed: %v", err)
		}
		seed, err := SeedFromEntropy(e, alg)
		if err != nil {
			t.Fatalf("seed from entropy failed: %v", err)
		}
		if !bytes.Equal(seed.Entropy(), e.Bytes()) {
			t.Fatal("seed entropy mismatch")
		}
		encoded, err := seed.Encode()
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		back, err := DecodeSeedAs(encoded, alg)
		if err != nil {
			t.Fatalf("decode as %s failed: %v", alg, err)
		}
		a, _ := seed.DeriveKeyPair()
		b, _ := back.DeriveKeyPair()
		if !a.PublicKey.Equal(b.PublicKey) {
			t.Fatal("re-decoded seed derived a different key")
		}
	}
}

func TestDecodeSeedAsRejectsOtherAlgorithm(t *testing.T) {
	if _, err := DecodeSeedAs("sp5fghtJtpUorTwvof1NpDXAzNwf5", Ed25519); !errors.Is(err, addresscodec.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if _, err := DecodeSeedAs("sEdSKaCy2JT7JaM7v95H9SxkhP9wS2r", Secp256k1); !errors.Is(err, addresscodec.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if _, err := DecodeSeed("sp5fghtJtpUorTwvof1NpDXAzNwf6"); !errors.Is(err, addresscodec.ErrDecode) {
		t.Fatalf("expected ErrDecode for bad checksum, got %v", err)
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	e, _ := NewEntropy(make([]byte, EntropyLength))
	if _, err := SeedFromEntropy(e, Algorithm(9)); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
	if _, err := ParseAlgorithm("rsa"); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
	if alg, err := ParseAlgorithm(" ED25519 "); err != nil || alg != Ed25519 {
		t.Fatalf("unexpected parse result: %v %v", alg, err)
	}
}

func TestNewEntropyRejectsWrongLength(t *testing.T) {
	for _, n := range []int{0, 15, 17, 32} {
		if _, err := NewEntropy(make([]byte, n)); !errors.Is(err, addresscodec.ErrEncode) {
			t.Fatalf("expected ErrEncode for %d bytes, got %v", n, err)
		}
	}
}

func TestMnemonicRoundTrip(t *testing.T) {
	zero, err := NewEntropy(make([]byte, EntropyLength))
	if err != nil {
		t.Fatalf("new entropy failed: %v", err)
	}
	words, err := zero.Mnemonic()
	if err != nil {
		t.Fatalf("mnemonic failed: %v", err)
	}
	want := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	if words != want {
		t.Fatalf("unexpected mnemonic: %s", words)
	}

	e, _ := GenerateEntropy()
	words, err = e.Mnemonic()
	if err != nil {
		t.Fatalf("mnemonic failed: %v", err)
	}
	if n := len(strings.Fields(words)); n != 12 {
		t.Fatalf("expected 12 words, got %d", n)
	}
	back, err := EntropyFromMnemonic("  " + strings.ReplaceAll(words, " ", "   ") + "\n")
	if err != nil {
		t.Fatalf("entropy from mnemonic failed: %v", err)
	}
	if !bytes.Equal(back.Bytes(), e.Bytes()) {
		t.Fatal("mnemonic round trip mismatch")
	}
	if _, err := EntropyFromMnemonic("abandon abandon abandon"); !errors.Is(err, addresscodec.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestSecp256k1PrivateKeyPaddingForms(t *testing.T) {
	natural := bytes.Repeat([]byte{0x01}, 31)
	forms := [][]byte{
		natural,
		append([]byte{0}, natural...),
		append([]byte{0, 0}, natural...),
	}
	var first []byte
	for _, f := range forms {
		k, err := NewSecp256k1PrivateKey(f)
		if err != nil {
			t.Fatalf("%d-byte form failed: %v", len(f), err)
		}
		if got := k.Prefixed(); len(got) != PrivateKeyLength || got[0] != 0x00 {
			t.Fatalf("unexpected prefixed form: %x", got)
		}
		if len(k.Natural()) != 32 {
			t.Fatalf("natural form should be 32 bytes, got %d", len(k.Natural()))
		}
		if first == nil {
			first = k.Prefixed()
		} else if !bytes.Equal(first, k.Prefixed()) {
			t.Fatalf("%d-byte form normalized differently", len(f))
		}
	}
	if _, err := NewSecp256k1PrivateKey(make([]byte, 32)); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for zero scalar, got %v", err)
	}
	if _, err := NewSecp256k1PrivateKey(nil); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for empty input, got %v", err)
	}
}

func TestPrivateKeyReDerivesPublicKey(t *testing.T) {
	for _, v := range knownVectors {
		k, err := ParsePrivateKeyHex(v.privateKey)
		if err != nil {
			t.Fatalf("parse private key failed: %v", err)
		}
		if k.Algorithm() != v.alg {
			t.Fatalf("unexpected algorithm: %s", k.Algorithm())
		}
		pub, err := k.PublicKey()
		if err != nil {
			t.Fatalf("public key failed: %v", err)
		}
		if pub.Hex() != v.publicKey {
			t.Fatalf("unexpected public key: %s", pub.Hex())
		}
	}
	if _, err := PrivateKeyFromBytes(append([]byte{0x05}, make([]byte, 32)...)); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for unknown prefix, got %v", err)
	}
}

func TestDestroyZeroesPrivateMaterial(t *testing.T) {
	seed, _ := DecodeSeed(knownVectors[0].seed)
	kp, err := seed.DeriveKeyPair()
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	clone := kp.Clone()
	kp.Destroy()
	if !kp.PrivateKey.Destroyed() || len(kp.PrivateKey.Prefixed()) != 0 || len(kp.PrivateKey.Natural()) != 0 {
		t.Fatal("destroyed key should read as empty")
	}
	if _, err := kp.PrivateKey.PublicKey(); !errors.Is(err, secret.ErrDestroyed) {
		t.Fatalf("expected ErrDestroyed, got %v", err)
	}
	if upperHex(clone.PrivateKey.Prefixed()) != knownVectors[0].privateKey {
		t.Fatal("clone must survive destruction of the original")
	}

	seed.Destroy()
	if !seed.Destroyed() || len(seed.Entropy()) != 0 {
		t.Fatal("destroyed seed should read as empty")
	}
	if _, err := seed.DeriveKeyPair(); !errors.Is(err, secret.ErrDestroyed) {
		t.Fatalf("expected ErrDestroyed, got %v", err)
	}
	if _, err := seed.Encode(); !errors.Is(err, secret.ErrDestroyed) {
		t.Fatalf("expected ErrDestroyed, got %v", err)
	}
}

func TestValidatorKeyPair(t *testing.T) {
	seed, _ := DecodeSeed("snoPBrXtMeMyMHUVTgbuqAfg1SUTb")
	root, err := seed.DeriveValidatorKeyPair()
	if err != nil {
		t.Fatalf("validator derive failed: %v", err)
	}
	account, _ := seed.DeriveKeyPair()
	if root.PublicKey.Equal(account.PublicKey) {
		t.Fatal("secp256k1 validator key must be the root generator, not the account key")
	}
	node, err := root.PublicKey.NodePublicBase58()
	if err != nil || !strings.HasPrefix(node, "n") {
		t.Fatalf("unexpected node key: %s %v", node, err)
	}

	ed, _ := DecodeSeed(knownVectors[1].seed)
	edRoot, _ := ed.DeriveValidatorKeyPair()
	edAccount, _ := ed.DeriveKeyPair()
	if !edRoot.PublicKey.Equal(edAccount.PublicKey) {
		t.Fatal("ed25519 seeds have a single key pair")
	}
}

func TestDeriveScalarExhaustion(t *testing.T) {
	saved := maxDerivationAttempts
	maxDerivationAttempts = 0
	defer func() { maxDerivationAttempts = saved }()
	if _, err := deriveScalar([]byte{1}, nil); !errors.Is(err, ErrDerivationExhausted) {
		t.Fatalf("expected ErrDerivationExhausted, got %v", err)
	}
}

func TestPublicKeyParsing(t *testing.T) {
	pub, err := ParsePublicKeyHex(knownVectors[0].publicKey)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if alg, _ := pub.Algorithm(); alg != Secp256k1 {
		t.Fatalf("unexpected algorithm: %s", alg)
	}
	empty, err := PublicKeyFromBytes(nil)
	if err != nil || !empty.IsEmpty() {
		t.Fatalf("empty placeholder should parse: %v", err)
	}
	if _, err := empty.Algorithm(); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	bad := append([]byte{0x04}, make([]byte, 32)...)
	if _, err := PublicKeyFromBytes(bad); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for bad prefix, got %v", err)
	}
}

func TestLogValueRedactsSecrets(t *testing.T) {
	seed, _ := DecodeSeed(knownVectors[0].seed)
	kp, _ := seed.DeriveKeyPair()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("derived", "seed", seed, "key", kp.PrivateKey)
	out := buf.String()
	if strings.Contains(out, knownVectors[0].seed) || strings.Contains(strings.ToUpper(out), knownVectors[0].privateKey[2:]) {
		t.Fatalf("log leaked secret material: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("expected redaction marker: %s", out)
	}
}
