// Package cryptox implements the DRACOON client-side key handling needed to
// hand out missing file keys: decrypting the rescue private key, decrypting
// file keys encrypted for it and re-encrypting them for user public keys.
package cryptox

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cryptonaut/internal/models"
)

var (
	ErrDecryption         = errors.New("decryption failed")
	ErrUnsupportedVersion = errors.New("unsupported key version")
)

const publicKeyPEMType = "PUBLIC KEY"

// PlainFileKey is a decrypted AES file key. IV and Tag stay base64 encoded
// because they are copied verbatim into every re-encrypted container.
type PlainFileKey struct {
	Key []byte
	IV  string
	Tag *string
}

// ParsePublicKey decodes a PEM encoded RSA public key container.
func ParsePublicKey(c models.PublicKeyContainer) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(c.PublicKey))
	if block == nil || block.Type != publicKeyPEMType {
		return nil, fmt.Errorf("public key container holds no %q PEM block", publicKeyPEMType)
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is %T, want RSA", ErrUnsupportedVersion, pub)
	}
	return rsaPub, nil
}

// DecryptFileKey decrypts a file key container with the private key it was
// encrypted for.
func DecryptFileKey(fk models.FileKey, priv *rsa.PrivateKey) (*PlainFileKey, error) {
	var opts *rsa.OAEPOptions
	switch fk.Version {
	case models.FileKeyVersionRSA2048AES256GCM:
		opts = &rsa.OAEPOptions{Hash: crypto.SHA256, MGFHash: crypto.SHA1}
	case models.FileKeyVersionRSA4096AES256GCM:
		opts = &rsa.OAEPOptions{Hash: crypto.SHA256}
	default:
		return nil, fmt.Errorf("%w: file key %q", ErrUnsupportedVersion, fk.Version)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(fk.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: file key encoding: %v", ErrDecryption, err)
	}

	key, err := priv.Decrypt(rand.Reader, ciphertext, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	return &PlainFileKey{Key: key, IV: fk.IV, Tag: fk.Tag}, nil
}

// EncryptFileKey encrypts a plain file key for the given user public key.
// The container version follows the public key version.
func EncryptFileKey(plain *PlainFileKey, pkc models.PublicKeyContainer) (models.FileKey, error) {
	pub, err := ParsePublicKey(pkc)
	if err != nil {
		return models.FileKey{}, err
	}

	var (
		ciphertext []byte
		version    string
	)
	switch pkc.Version {
	case models.KeyVersionRSA2048:
		ciphertext, err = encryptOAEP(rand.Reader, pub, plain.Key, crypto.SHA256, crypto.SHA1)
		version = models.FileKeyVersionRSA2048AES256GCM
	case models.KeyVersionRSA4096:
		ciphertext, err = rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, plain.Key, nil)
		version = models.FileKeyVersionRSA4096AES256GCM
	default:
		return models.FileKey{}, fmt.Errorf("%w: public key %q", ErrUnsupportedVersion, pkc.Version)
	}
	if err != nil {
		return models.FileKey{}, err
	}

	return models.FileKey{
		Key:     base64.StdEncoding.EncodeToString(ciphertext),
		IV:      plain.IV,
		Tag:     plain.Tag,
		Version: version,
	}, nil
}
