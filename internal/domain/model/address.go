package model

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Address is a hex-encoded 32-byte account address.
type Address string

func (a Address) String() string {
	return string(a)
}

const (
	vaultSeed = "vault"
	batchSeed = "batch"
)

// deriveAddress hashes the seed parts into a deterministic storage address.
// The same seeds always yield the same address, so creation at an occupied
// address is rejected by the storage layer's primary key.
func deriveAddress(seeds ...[]byte) Address {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	return Address(hex.EncodeToString(h.Sum(nil)))
}

// DeriveVaultAddress returns the vault address owned by authority.
// One vault per authority.
func DeriveVaultAddress(authority Address) Address {
	return deriveAddress([]byte(vaultSeed), []byte(authority))
}

// DeriveBatchAddress returns the batch address for (vault, batchID).
// batchID is encoded little-endian, matching the on-ledger seed layout.
func DeriveBatchAddress(vault Address, batchID uint64) Address {
	var id [8]byte
	binary.LittleEndian.PutUint64(id[:], batchID)
	return deriveAddress([]byte(batchSeed), []byte(vault), id[:])
}
