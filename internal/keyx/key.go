// Package keyx implements client-side handling of access keys: generating a
// new opaque secret key and deriving the keyHash that identifies its account
// on the server. The raw key never leaves the client; every request carries
// only the derived hash.
package keyx

import (
	"encoding/hex"

	"github.com/filmood/keygate/internal/common"
	"golang.org/x/crypto/argon2"
)

// KeySize is the number of random bytes in a freshly generated access key.
const KeySize = 32

// keyHashContext is the fixed argon2 salt. The derivation must be
// deterministic, otherwise the server could not look the hash up, so the
// salt is a versioned application constant rather than per-key data.
const keyHashContext = "keygate:key-hash:v1"

// GenerateAccessKey returns a new random access key as a hex string.
func GenerateAccessKey() (string, error) {
	return common.MakeRandHexString(KeySize)
}

// DeriveKeyHash derives the fixed-length account lookup hash from a raw
// access key using argon2id. The result is hex-encoded.
func DeriveKeyHash(accessKey []byte) string {
	h := argon2.IDKey(accessKey, []byte(keyHashContext), 1, 64*1024, 4, 32)
	return hex.EncodeToString(h)
}
