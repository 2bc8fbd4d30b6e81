package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xrpl-crypto/go-core/internal/config"
	"xrpl-crypto/go-core/internal/testutil/fsperm"
)

const (
	secpSeed    = "sp5fghtJtpUorTwvof1NpDXAzNwf5"
	secpAddress = "rU6K7V3Po4snVhBBaU29sesqs2qTQJWDw1"
	edSeed      = "sEdSKaCy2JT7JaM7v95H9SxkhP9wS2r"
	edAddress   = "rLUEXYuLiQptky37CqLcm9USQpPiz5rkpD"
)

func runCLI(t *testing.T, vars map[string]string, args ...string) (int, map[string]any, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	env := &cliEnv{stdout: &stdout, stderr: &stderr, getenv: func(k string) string { return vars[k] }}
	code := run(env, args)
	out := map[string]any{}
	if stdout.Len() > 0 {
		if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
			t.Fatalf("stdout is not json: %v\n%s", err, stdout.String())
		}
	}
	return code, out, stderr.String()
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := runCLI(t, nil, "frobnicate")
	if code != exitInvalidInput || !strings.Contains(stderr, "usage") {
		t.Fatalf("unexpected result: %d %s", code, stderr)
	}
	if code, _, _ := runCLI(t, nil); code != exitInvalidInput {
		t.Fatalf("expected usage exit code, got %d", code)
	}
}

func TestDeriveKnownSeeds(t *testing.T) {
	code, out, _ := runCLI(t, nil, "derive", "-seed", secpSeed)
	if code != exitOK || out["address"] != secpAddress || out["algorithm"] != "secp256k1" {
		t.Fatalf("unexpected derive output: %d %v", code, out)
	}
	if _, ok := out["private_key"]; ok {
		t.Fatal("private key must be hidden by default")
	}

	code, out, _ = runCLI(t, map[string]string{envSeed: edSeed}, "derive", "-show-private")
	if code != exitOK || out["address"] != edAddress {
		t.Fatalf("unexpected derive output: %d %v", code, out)
	}
	if pk, _ := out["private_key"].(string); !strings.HasPrefix(pk, "ED") || len(pk) != 66 {
		t.Fatalf("unexpected private key: %v", out["private_key"])
	}

	if code, _, _ := runCLI(t, nil, "derive"); code != exitInvalidInput {
		t.Fatalf("missing seed must be invalid input, got %d", code)
	}
}

func TestGenerateThenMnemonicRoundTrip(t *testing.T) {
	code, out, _ := runCLI(t, nil, "generate", "-algorithm", "secp256k1", "-mnemonic")
	if code != exitOK {
		t.Fatalf("generate failed: %d", code)
	}
	phrase, _ := out["mnemonic"].(string)
	if len(strings.Fields(phrase)) != 12 {
		t.Fatalf("unexpected mnemonic: %q", phrase)
	}
	code, back, _ := runCLI(t, nil, "mnemonic", "-words", phrase, "-algorithm", "secp256k1")
	if code != exitOK || back["seed"] != out["seed"] || back["address"] != out["address"] {
		t.Fatalf("mnemonic round trip mismatch: %v vs %v", back, out)
	}
}

func TestSignThenVerify(t *testing.T) {
	tx := hex.EncodeToString([]byte("serialized payment"))
	for _, seed := range []string{secpSeed, edSeed} {
		for _, multi := range []bool{false, true} {
			args := []string{"sign", "-seed", seed, "-tx", tx}
			if multi {
				args = append(args, "-multi")
			}
			code, out, stderr := runCLI(t, nil, args...)
			if code != exitOK {
				t.Fatalf("sign failed: %d %s", code, stderr)
			}
			verify := []string{"verify", "-public-key", out["public_key"].(string), "-tx", tx, "-signature", out["signature"].(string)}
			if multi {
				verify = append(verify, "-multi")
			}
			code, res, _ := runCLI(t, nil, verify...)
			if code != exitOK || res["valid"] != true {
				t.Fatalf("verify failed for %s multi=%v: %d %v", seed, multi, code, res)
			}

			other := hex.EncodeToString([]byte("another payment"))
			verify[4] = other
			if code, res, _ := runCLI(t, nil, verify...); code != exitVerifyFailed || res["valid"] != false {
				t.Fatalf("verify of another tx must fail: %d %v", code, res)
			}
		}
	}
}

func TestXAddressRoundTrip(t *testing.T) {
	code, out, _ := runCLI(t, nil, "xaddress", "-address", secpAddress, "-tag", "12345", "-test")
	if code != exitOK {
		t.Fatalf("encode failed: %d", code)
	}
	x, _ := out["x_address"].(string)
	if !strings.HasPrefix(x, "T") {
		t.Fatalf("expected test network x-address, got %q", x)
	}
	code, back, _ := runCLI(t, nil, "xaddress", "-decode", x)
	if code != exitOK || back["address"] != secpAddress || back["test"] != true || back["tag"] != float64(12345) {
		t.Fatalf("decode mismatch: %d %v", code, back)
	}
}

func TestProofRoundTrip(t *testing.T) {
	ctx := strings.Repeat("AB", 32)
	code, out, stderr := runCLI(t, nil, "pok", "-seed", secpSeed, "-context", ctx)
	if code != exitOK {
		t.Fatalf("prove failed: %d %s", code, stderr)
	}
	proof, pub := out["proof"].(string), out["public_key"].(string)
	if len(proof) != 130 {
		t.Fatalf("unexpected proof length: %d", len(proof))
	}
	code, res, _ := runCLI(t, nil, "pok", "-verify", "-proof", proof, "-public-key", pub, "-context", ctx)
	if code != exitOK || res["valid"] != true {
		t.Fatalf("proof should verify: %d %v", code, res)
	}
	if code, _, _ := runCLI(t, nil, "pok", "-verify", "-proof", proof, "-public-key", pub); code != exitVerifyFailed {
		t.Fatalf("proof without its context must fail, got %d", code)
	}
	if code, _, _ := runCLI(t, nil, "pok", "-seed", edSeed); code != exitCryptoFailed {
		t.Fatalf("ed25519 seeds cannot prove, got %d", code)
	}
}

func TestContextHash(t *testing.T) {
	issuance := strings.Repeat("01", 24)
	code, out, _ := runCLI(t, nil, "context-hash", "-type", "convert", "-account", secpAddress, "-sequence", "7", "-issuance", issuance, "-amount", "100", "-bytes")
	if code != exitOK {
		t.Fatalf("context hash failed: %d", code)
	}
	if h, _ := out["context_hash"].(string); len(h) != 64 {
		t.Fatalf("unexpected hash: %v", out["context_hash"])
	}
	if raw, _ := out["context"].(string); len(raw) != 2*58 || !strings.HasPrefix(raw, "0055") {
		t.Fatalf("unexpected context bytes: %v", out["context"])
	}
	if code, _, _ := runCLI(t, nil, "context-hash", "-type", "send", "-account", secpAddress, "-issuance", issuance); code != exitInvalidInput {
		t.Fatalf("send without destination must fail, got %d", code)
	}
	if code, _, _ := runCLI(t, nil, "context-hash", "-type", "mint", "-account", secpAddress, "-issuance", issuance); code != exitInvalidInput {
		t.Fatalf("unknown type must fail, got %d", code)
	}
}

func TestKeystoreSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys", "alice.keystore")
	vars := map[string]string{envKeystorePassphrase: "correct horse battery staple", envSeed: secpSeed}

	code, out, stderr := runCLI(t, vars, "keystore-save", "-path", path, "-label", "alice")
	if code != exitOK || out["address"] != secpAddress {
		t.Fatalf("save failed: %d %v %s", code, out, stderr)
	}
	if seed, _ := out["seed"].(string); seed != "" {
		t.Fatal("save output must not echo the seed")
	}
	fsperm.AssertPrivateFilePerm(t, path)

	code, out, _ = runCLI(t, vars, "keystore-load", "-path", path, "-show-seed")
	if code != exitOK || out["seed"] != secpSeed || out["label"] != "alice" {
		t.Fatalf("load mismatch: %d %v", code, out)
	}

	vars[envKeystorePassphrase] = "wrong"
	if code, _, _ := runCLI(t, vars, "keystore-load", "-path", path); code != exitStoreFailed {
		t.Fatalf("wrong passphrase must fail with store exit code, got %d", code)
	}
	if code, _, _ := runCLI(t, map[string]string{envSeed: secpSeed}, "keystore-save", "-path", path); code != exitInvalidInput {
		t.Fatalf("missing passphrase must be invalid input, got %d", code)
	}
}

func TestServiceCommandsUseConfig(t *testing.T) {
	t.Setenv(config.EnvServerSecret, strings.Repeat("s", 32))
	t.Setenv(config.EnvAlgorithm, "secp256k1")
	t.Setenv(config.EnvLogLevel, "error")

	code, out, stderr := runCLI(t, nil, "address", "-key-id", "customer-1")
	if code != exitOK || out["algorithm"] != "secp256k1" {
		t.Fatalf("address failed: %d %v %s", code, out, stderr)
	}
	tx := hex.EncodeToString([]byte("tx"))
	code, signed, _ := runCLI(t, nil, "sign", "-key-id", "customer-1", "-tx", tx)
	if code != exitOK || signed["address"] != out["address"] {
		t.Fatalf("service sign mismatch: %d %v", code, signed)
	}
	code, res, _ := runCLI(t, nil, "verify", "-public-key", signed["public_key"].(string), "-tx", tx, "-signature", signed["signature"].(string))
	if code != exitOK || res["valid"] != true {
		t.Fatalf("service signature should verify: %d %v", code, res)
	}

	t.Setenv(config.EnvServerSecret, "short")
	if code, _, _ := runCLI(t, nil, "address", "-key-id", "customer-1"); code != exitInvalidInput {
		t.Fatalf("short server secret must be rejected, got %d", code)
	}
}

func TestServiceSignWithBurstOfOne(t *testing.T) {
	t.Setenv(config.EnvServerSecret, strings.Repeat("s", 32))
	t.Setenv(config.EnvAlgorithm, "")
	t.Setenv(config.EnvLogLevel, "error")
	path := filepath.Join(t.TempDir(), "keytool.yaml")
	doc := "keyService:\n  rateLimitRPS: 1\n  rateLimitBurst: 1\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	tx := hex.EncodeToString([]byte("tx"))
	for _, extra := range [][]string{nil, {"-multi"}} {
		args := append([]string{"sign", "-config", path, "-key-id", "k", "-tx", tx}, extra...)
		code, out, stderr := runCLI(t, nil, args...)
		if code != exitOK {
			t.Fatalf("sign %v with burst 1 failed: %d %s", extra, code, stderr)
		}
		if out["public_key"] == "" || out["signature"] == "" {
			t.Fatalf("incomplete sign output: %v", out)
		}
	}
}
