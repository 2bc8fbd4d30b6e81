package securestore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"xrpl-crypto/go-core/pkg/keys"
)

const seedRecordVersion = 1

// SeedRecord is the plaintext sealed inside a keystore file. Address lets
// LoadSeed detect a record whose seed no longer matches what was saved.
type SeedRecord struct {
	Version   int       `json:"version"`
	Algorithm string    `json:"algorithm"`
	Seed      string    `json:"seed"`
	Address   string    `json:"address"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func SaveSeed(path, passphrase, label string, seed *keys.Seed, now time.Time) (SeedRecord, error) {
	encoded, err := seed.Encode()
	if err != nil {
		return SeedRecord{}, err
	}
	kp, err := seed.DeriveKeyPair()
	if err != nil {
		return SeedRecord{}, err
	}
	defer kp.Destroy()

	rec := SeedRecord{
		Version:   seedRecordVersion,
		Algorithm: seed.Algorithm().String(),
		Seed:      encoded,
		Address:   kp.Address(),
		Label:     strings.TrimSpace(label),
		CreatedAt: now.UTC(),
	}
	if err := WriteEncryptedJSON(path, passphrase, rec); err != nil {
		return SeedRecord{}, err
	}
	rec.Seed = ""
	return rec, nil
}

// LoadSeed decrypts a keystore file and returns the seed plus the record
// metadata. The returned record has its Seed field cleared.
func LoadSeed(path, passphrase string) (*keys.Seed, SeedRecord, error) {
	plain, err := ReadDecryptedFile(path, passphrase)
	if err != nil {
		return nil, SeedRecord{}, err
	}
	defer zeroBytes(plain)

	var rec SeedRecord
	if err := json.Unmarshal(plain, &rec); err != nil {
		return nil, SeedRecord{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if rec.Version != seedRecordVersion {
		return nil, SeedRecord{}, fmt.Errorf("%w: record version %d", ErrInvalid, rec.Version)
	}
	alg, err := keys.ParseAlgorithm(rec.Algorithm)
	if err != nil {
		return nil, SeedRecord{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	seed, err := keys.DecodeSeedAs(rec.Seed, alg)
	rec.Seed = ""
	if err != nil {
		return nil, SeedRecord{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	kp, err := seed.DeriveKeyPair()
	if err != nil {
		seed.Destroy()
		return nil, SeedRecord{}, err
	}
	defer kp.Destroy()
	if kp.Address() != rec.Address {
		seed.Destroy()
		return nil, SeedRecord{}, fmt.Errorf("%w: address mismatch", ErrInvalid)
	}
	return seed, rec, nil
}
