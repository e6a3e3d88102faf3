// Package cryptotest builds DRACOON key material for tests: encrypted private
// key containers, public key containers and random file keys.
package cryptotest

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/dmitrijs2005/cryptonaut/internal/models"
	"github.com/youmark/pkcs8"
)

// LowIterations keeps PBKDF2 cheap in tests.
const LowIterations = 1000

// EncryptPrivateKey wraps key into a PEM encoded PKCS#8 PBES2 container
// (PBKDF2, AES-256-CBC). Version A keys use HMAC-SHA1 as PRF, RSA-4096 keys
// HMAC-SHA256.
func EncryptPrivateKey(key *rsa.PrivateKey, secret []byte, version string, iterations int) (models.PrivateKeyContainer, error) {
	var prf crypto.Hash
	switch version {
	case models.KeyVersionRSA2048:
		prf = crypto.SHA1
	case models.KeyVersionRSA4096:
		prf = crypto.SHA256
	default:
		return models.PrivateKeyContainer{}, fmt.Errorf("unknown key pair version %q", version)
	}

	der, err := pkcs8.MarshalPrivateKey(key, secret, &pkcs8.Opts{
		Cipher: pkcs8.AES256CBC,
		KDFOpts: pkcs8.PBKDF2Opts{
			SaltSize:       16,
			IterationCount: iterations,
			HMACHash:       prf,
		},
	})
	if err != nil {
		return models.PrivateKeyContainer{}, err
	}

	out := pem.EncodeToMemory(&pem.Block{Type: "ENCRYPTED PRIVATE KEY", Bytes: der})
	return models.PrivateKeyContainer{Version: version, PrivateKey: string(out)}, nil
}

// EncodePublicKey wraps pub into a PEM "PUBLIC KEY" container.
func EncodePublicKey(pub *rsa.PublicKey, version string) (models.PublicKeyContainer, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return models.PublicKeyContainer{}, err
	}
	out := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return models.PublicKeyContainer{Version: version, PublicKey: string(out)}, nil
}

// RandomKey returns n random bytes, e.g. a plain AES-256 file key.
func RandomKey(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}
