package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"xrpl-crypto/go-core/internal/composition"
	"xrpl-crypto/go-core/internal/config"
	"xrpl-crypto/go-core/internal/keyservice"
	"xrpl-crypto/go-core/internal/securestore"
	"xrpl-crypto/go-core/pkg/addresscodec"
	"xrpl-crypto/go-core/pkg/curve"
	"xrpl-crypto/go-core/pkg/keys"
	"xrpl-crypto/go-core/pkg/signing"
	"xrpl-crypto/go-core/pkg/zkp"
)

type accountOutput struct {
	Algorithm     string `json:"algorithm"`
	Seed          string `json:"seed,omitempty"`
	Mnemonic      string `json:"mnemonic,omitempty"`
	PublicKey     string `json:"public_key"`
	PrivateKey    string `json:"private_key,omitempty"`
	Address       string `json:"address"`
	NodePublicKey string `json:"node_public_key,omitempty"`
}

var txSigner = signing.NewTransactionSigner[[]byte](signing.PrefixEncoder{}, nil)

func runGenerate(env *cliEnv, args []string) error {
	fs := newFlagSet(env, "generate")
	algName := fs.String("algorithm", keys.Ed25519.String(), "ed25519 or secp256k1")
	withMnemonic := fs.Bool("mnemonic", false, "also print the 12-word mnemonic of the entropy")
	if err := fs.Parse(args); err != nil {
		return err
	}
	alg, err := keys.ParseAlgorithm(*algName)
	if err != nil {
		return err
	}
	seed, err := keys.GenerateSeed(alg)
	if err != nil {
		return withCode(exitCryptoFailed, err)
	}
	defer seed.Destroy()

	out, err := describeSeed(seed, false, false)
	if err != nil {
		return err
	}
	if *withMnemonic {
		if out.Mnemonic, err = seedMnemonic(seed); err != nil {
			return withCode(exitCryptoFailed, err)
		}
	}
	return printJSON(env, out)
}

func runDerive(env *cliEnv, args []string) error {
	fs := newFlagSet(env, "derive")
	seedText := fs.String("seed", "", "base58 seed (default $"+envSeed+")")
	validator := fs.Bool("validator", false, "derive the validator (node) key pair")
	showPrivate := fs.Bool("show-private", false, "include the private key in the output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	seed, err := loadSeed(env, *seedText)
	if err != nil {
		return err
	}
	defer seed.Destroy()
	out, err := describeSeed(seed, *validator, *showPrivate)
	if err != nil {
		return err
	}
	out.Seed = ""
	return printJSON(env, out)
}

func runPassphrase(env *cliEnv, args []string) error {
	fs := newFlagSet(env, "passphrase")
	passphrase := fs.String("passphrase", "", "passphrase to hash into a seed")
	algName := fs.String("algorithm", keys.Secp256k1.String(), "ed25519 or secp256k1")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *passphrase == "" {
		return errors.New("passphrase is required")
	}
	alg, err := keys.ParseAlgorithm(*algName)
	if err != nil {
		return err
	}
	writeStderrln(env, "warning: passphrase seeds are only as strong as the passphrase")
	seed, err := keys.SeedFromPassphrase(*passphrase, alg)
	if err != nil {
		return withCode(exitCryptoFailed, err)
	}
	defer seed.Destroy()
	out, err := describeSeed(seed, false, false)
	if err != nil {
		return err
	}
	return printJSON(env, out)
}

func runMnemonic(env *cliEnv, args []string) error {
	fs := newFlagSet(env, "mnemonic")
	words := fs.String("words", "", "12-word mnemonic to turn into a seed")
	seedText := fs.String("seed", "", "base58 seed to turn into a mnemonic (default $"+envSeed+")")
	algName := fs.String("algorithm", keys.Ed25519.String(), "algorithm of the seed built from -words")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*words) == "" {
		seed, err := loadSeed(env, *seedText)
		if err != nil {
			return err
		}
		defer seed.Destroy()
		phrase, err := seedMnemonic(seed)
		if err != nil {
			return withCode(exitCryptoFailed, err)
		}
		return printJSON(env, map[string]string{"mnemonic": phrase})
	}

	alg, err := keys.ParseAlgorithm(*algName)
	if err != nil {
		return err
	}
	entropy, err := keys.EntropyFromMnemonic(*words)
	if err != nil {
		return err
	}
	defer entropy.Destroy()
	seed, err := keys.SeedFromEntropy(entropy, alg)
	if err != nil {
		return withCode(exitCryptoFailed, err)
	}
	defer seed.Destroy()
	out, err := describeSeed(seed, false, false)
	if err != nil {
		return err
	}
	return printJSON(env, out)
}

func runSign(env *cliEnv, args []string) error {
	fs := newFlagSet(env, "sign")
	seedText := fs.String("seed", "", "base58 seed (default $"+envSeed+")")
	keyID := fs.String("key-id", "", "sign with the key service key for this id instead of a seed")
	configPath := fs.String("config", "", "config file for -key-id")
	txHex := fs.String("tx", "", "hex transaction bytes")
	multi := fs.Bool("multi", false, "produce a multi-sign contribution")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tx, err := decodeHexFlag("tx", *txHex)
	if err != nil {
		return err
	}

	var (
		sig signing.Signature
		pub keys.PublicKey
	)
	if strings.TrimSpace(*keyID) != "" {
		svc, err := openService(env, *configPath)
		if err != nil {
			return err
		}
		defer svc.Close()
		if *multi {
			sig, pub, err = svc.MultiSign(*keyID, tx)
		} else {
			sig, pub, err = svc.Sign(*keyID, tx)
		}
		if err != nil {
			return withCode(exitCryptoFailed, err)
		}
	} else {
		seed, err := loadSeed(env, *seedText)
		if err != nil {
			return err
		}
		defer seed.Destroy()
		kp, err := seed.DeriveKeyPair()
		if err != nil {
			return withCode(exitCryptoFailed, err)
		}
		defer kp.Destroy()
		if *multi {
			sig, err = txSigner.MultiSign(kp.PrivateKey, tx)
		} else {
			sig, err = txSigner.Sign(kp.PrivateKey, tx)
		}
		if err != nil {
			return withCode(exitCryptoFailed, err)
		}
		pub = kp.PublicKey
	}

	return printJSON(env, map[string]string{
		"public_key": pub.Hex(),
		"address":    pub.Address(),
		"signature":  sig.Hex(),
	})
}

func runVerify(env *cliEnv, args []string) error {
	fs := newFlagSet(env, "verify")
	pubHex := fs.String("public-key", "", "hex public key")
	txHex := fs.String("tx", "", "hex transaction bytes")
	sigHex := fs.String("signature", "", "hex signature")
	multi := fs.Bool("multi", false, "verify a multi-sign contribution")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pub, err := keys.ParsePublicKeyHex(*pubHex)
	if err != nil {
		return err
	}
	tx, err := decodeHexFlag("tx", *txHex)
	if err != nil {
		return err
	}
	sig, err := signing.ParseSignatureHex(*sigHex)
	if err != nil {
		return err
	}

	var ok bool
	if *multi {
		ok = txSigner.VerifyMultiSigned([]signing.SignerSignature{{PublicKey: pub, Signature: sig}}, tx, 1)
	} else {
		ok = txSigner.Verify(pub, tx, sig)
	}
	if err := printJSON(env, map[string]bool{"valid": ok}); err != nil {
		return err
	}
	if !ok {
		return withCode(exitVerifyFailed, errors.New("signature does not verify"))
	}
	return nil
}

func runAddress(env *cliEnv, args []string) error {
	fs := newFlagSet(env, "address")
	keyID := fs.String("key-id", "", "key service id")
	configPath := fs.String("config", "", "config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	svc, err := openService(env, *configPath)
	if err != nil {
		return err
	}
	defer svc.Close()
	pub, err := svc.PublicKey(*keyID)
	if err != nil {
		return err
	}
	return printJSON(env, map[string]string{
		"algorithm":  svc.Algorithm().String(),
		"public_key": pub.Hex(),
		"address":    pub.Address(),
	})
}

func runXAddress(env *cliEnv, args []string) error {
	fs := newFlagSet(env, "xaddress")
	classic := fs.String("address", "", "classic address to encode")
	decode := fs.String("decode", "", "X-address to decode")
	tag := fs.Int64("tag", -1, "destination tag (omit for none)")
	test := fs.Bool("test", false, "encode for a test network")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*decode) != "" {
		addr, tagOut, isTest, err := addresscodec.XAddressToClassicAddress(strings.TrimSpace(*decode))
		if err != nil {
			return err
		}
		out := map[string]any{"address": addr, "test": isTest}
		if tagOut != nil {
			out["tag"] = *tagOut
		}
		return printJSON(env, out)
	}

	var tagPtr *uint32
	if *tag >= 0 {
		if *tag > int64(^uint32(0)) {
			return fmt.Errorf("tag %d does not fit in 32 bits", *tag)
		}
		v := uint32(*tag)
		tagPtr = &v
	}
	x, err := addresscodec.ClassicAddressToXAddress(strings.TrimSpace(*classic), tagPtr, *test)
	if err != nil {
		return err
	}
	return printJSON(env, map[string]string{"x_address": x})
}

func runProof(env *cliEnv, args []string) error {
	fs := newFlagSet(env, "pok")
	seedText := fs.String("seed", "", "secp256k1 base58 seed (default $"+envSeed+")")
	keyID := fs.String("key-id", "", "prove for the key service key of this id instead of a seed")
	configPath := fs.String("config", "", "config file for -key-id")
	contextHex := fs.String("context", "", "32-byte hex context hash (optional)")
	verify := fs.Bool("verify", false, "verify -proof against -public-key")
	proofHex := fs.String("proof", "", "hex proof to verify")
	pubHex := fs.String("public-key", "", "hex public key for -verify")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var contextID []byte
	if strings.TrimSpace(*contextHex) != "" {
		h, err := zkp.ParseContextHash(*contextHex)
		if err != nil {
			return err
		}
		contextID = h.Bytes()
	}

	if *verify {
		proof, err := decodeHexFlag("proof", *proofHex)
		if err != nil {
			return err
		}
		pub, err := keys.ParsePublicKeyHex(*pubHex)
		if err != nil {
			return err
		}
		pk, err := curve.ParsePoint(pub.Bytes())
		ok := err == nil && zkp.VerifySecretKeyProof(proof, pk, contextID)
		if err := printJSON(env, map[string]bool{"valid": ok}); err != nil {
			return err
		}
		if !ok {
			return withCode(exitVerifyFailed, errors.New("proof does not verify"))
		}
		return nil
	}

	var (
		proof zkp.SecretKeyProof
		pub   keys.PublicKey
	)
	if strings.TrimSpace(*keyID) != "" {
		svc, err := openService(env, *configPath)
		if err != nil {
			return err
		}
		defer svc.Close()
		if proof, pub, err = svc.ProveSecretKey(*keyID, contextID); err != nil {
			return withCode(exitCryptoFailed, err)
		}
	} else {
		seed, err := loadSeed(env, *seedText)
		if err != nil {
			return err
		}
		defer seed.Destroy()
		if proof, pub, err = proveWithSeed(seed, contextID); err != nil {
			return withCode(exitCryptoFailed, err)
		}
	}
	return printJSON(env, map[string]string{
		"public_key": pub.Hex(),
		"proof":      proof.Hex(),
	})
}

func proveWithSeed(seed *keys.Seed, contextID []byte) (zkp.SecretKeyProof, keys.PublicKey, error) {
	kp, err := seed.DeriveKeyPair()
	if err != nil {
		return zkp.SecretKeyProof{}, keys.PublicKey{}, err
	}
	defer kp.Destroy()
	sk, err := kp.PrivateKey.Scalar()
	if err != nil {
		return zkp.SecretKeyProof{}, keys.PublicKey{}, err
	}
	defer sk.Zero()
	pk, err := curve.ParsePoint(kp.PublicKey.Bytes())
	if err != nil {
		return zkp.SecretKeyProof{}, keys.PublicKey{}, err
	}
	proof, err := zkp.GenerateSecretKeyProof(rand.Reader, sk, pk, contextID)
	return proof, kp.PublicKey, err
}

func runContextHash(env *cliEnv, args []string) error {
	fs := newFlagSet(env, "context-hash")
	txType := fs.String("type", "", "convert, convert-back, send or clawback")
	account := fs.String("account", "", "classic address of the submitting account")
	sequence := fs.Uint("sequence", 0, "transaction sequence")
	issuance := fs.String("issuance", "", "24-byte hex issuance id")
	amount := fs.Uint64("amount", 0, "amount (convert, convert-back, clawback)")
	version := fs.Uint("version", 0, "balance version (convert-back, send)")
	destination := fs.String("destination", "", "classic destination address (send)")
	holder := fs.String("holder", "", "classic holder address (clawback)")
	showBytes := fs.Bool("bytes", false, "also print the serialized context")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *sequence > uint(^uint32(0)) || *version > uint(^uint32(0)) {
		return errors.New("sequence and version must fit in 32 bits")
	}
	acct, err := addresscodec.DecodeClassicAddress(strings.TrimSpace(*account))
	if err != nil {
		return fmt.Errorf("account: %w", err)
	}
	id, err := zkp.ParseIssuanceID(*issuance)
	if err != nil {
		return err
	}
	common := zkp.Common{Account: acct, Sequence: uint32(*sequence), IssuanceID: id}

	var (
		hash zkp.ContextHash
		raw  []byte
	)
	switch strings.ToLower(strings.TrimSpace(*txType)) {
	case "convert":
		c := zkp.ConvertContext{Common: common, Amount: *amount}
		hash, raw = c.Hash(), c.Bytes()
	case "convert-back":
		c := zkp.ConvertBackContext{Common: common, Amount: *amount, Version: uint32(*version)}
		hash, raw = c.Hash(), c.Bytes()
	case "send":
		dest, err := addresscodec.DecodeClassicAddress(strings.TrimSpace(*destination))
		if err != nil {
			return fmt.Errorf("destination: %w", err)
		}
		c := zkp.SendContext{Common: common, Destination: dest, Version: uint32(*version)}
		hash, raw = c.Hash(), c.Bytes()
	case "clawback":
		h, err := addresscodec.DecodeClassicAddress(strings.TrimSpace(*holder))
		if err != nil {
			return fmt.Errorf("holder: %w", err)
		}
		c := zkp.ClawbackContext{Common: common, Amount: *amount, Holder: h}
		hash, raw = c.Hash(), c.Bytes()
	default:
		return fmt.Errorf("unknown context type %q", *txType)
	}

	out := map[string]string{"context_hash": hash.String()}
	if *showBytes {
		out["context"] = strings.ToUpper(hex.EncodeToString(raw))
	}
	return printJSON(env, out)
}

func runKeystoreSave(env *cliEnv, args []string) error {
	fs := newFlagSet(env, "keystore-save")
	path := fs.String("path", "", "keystore file to write")
	seedText := fs.String("seed", "", "base58 seed (default $"+envSeed+")")
	label := fs.String("label", "", "free-form label stored with the seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*path) == "" {
		return errors.New("path is required")
	}
	passphrase := env.getenv(envKeystorePassphrase)
	if passphrase == "" {
		return fmt.Errorf("%w (set %s)", securestore.ErrPassphraseRequired, envKeystorePassphrase)
	}
	seed, err := loadSeed(env, *seedText)
	if err != nil {
		return err
	}
	defer seed.Destroy()
	rec, err := securestore.SaveSeed(*path, passphrase, *label, seed, time.Now())
	if err != nil {
		return withCode(exitStoreFailed, err)
	}
	return printJSON(env, rec)
}

func runKeystoreLoad(env *cliEnv, args []string) error {
	fs := newFlagSet(env, "keystore-load")
	path := fs.String("path", "", "keystore file to read")
	showSeed := fs.Bool("show-seed", false, "include the decrypted seed in the output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	passphrase := env.getenv(envKeystorePassphrase)
	if passphrase == "" {
		return fmt.Errorf("%w (set %s)", securestore.ErrPassphraseRequired, envKeystorePassphrase)
	}
	seed, rec, err := securestore.LoadSeed(*path, passphrase)
	if err != nil {
		return withCode(exitStoreFailed, err)
	}
	defer seed.Destroy()
	if *showSeed {
		if rec.Seed, err = seed.Encode(); err != nil {
			return withCode(exitCryptoFailed, err)
		}
	}
	return printJSON(env, rec)
}

func loadSeed(env *cliEnv, flagValue string) (*keys.Seed, error) {
	text := strings.TrimSpace(flagValue)
	if text == "" {
		text = strings.TrimSpace(env.getenv(envSeed))
	}
	if text == "" {
		return nil, fmt.Errorf("seed is required (flag -seed or $%s)", envSeed)
	}
	return keys.DecodeSeed(text)
}

func describeSeed(seed *keys.Seed, validator, showPrivate bool) (accountOutput, error) {
	encoded, err := seed.Encode()
	if err != nil {
		return accountOutput{}, withCode(exitCryptoFailed, err)
	}
	var kp *keys.KeyPair
	if validator {
		kp, err = seed.DeriveValidatorKeyPair()
	} else {
		kp, err = seed.DeriveKeyPair()
	}
	if err != nil {
		return accountOutput{}, withCode(exitCryptoFailed, err)
	}
	defer kp.Destroy()

	out := accountOutput{
		Algorithm: seed.Algorithm().String(),
		Seed:      encoded,
		PublicKey: kp.PublicKey.Hex(),
		Address:   kp.Address(),
	}
	if validator {
		if out.NodePublicKey, err = kp.PublicKey.NodePublicBase58(); err != nil {
			return accountOutput{}, withCode(exitCryptoFailed, err)
		}
	}
	if showPrivate {
		out.PrivateKey = strings.ToUpper(hex.EncodeToString(kp.PrivateKey.Prefixed()))
	}
	return out, nil
}

func seedMnemonic(seed *keys.Seed) (string, error) {
	entropy, err := keys.NewEntropy(seed.Entropy())
	if err != nil {
		return "", err
	}
	defer entropy.Destroy()
	return entropy.Mnemonic()
}

// openService builds a key service from the config file plus environment.
func openService(env *cliEnv, configPath string) (*keyservice.Service, error) {
	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := composition.NewLogger(cfg, env.stderr)
	if err != nil {
		return nil, err
	}
	// A one-shot process has nothing to scrape; xrpl-keyd exports metrics.
	return composition.BuildKeyService(cfg, logger, nil)
}

func decodeHexFlag(name, value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}
