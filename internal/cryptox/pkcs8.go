package cryptox

import (
	"crypto/rsa"
	"encoding/pem"
	"fmt"

	"github.com/dmitrijs2005/cryptonaut/internal/models"
	"github.com/youmark/pkcs8"
)

const encryptedPrivateKeyPEMType = "ENCRYPTED PRIVATE KEY"

// DecryptPrivateKey decrypts a PEM encoded PKCS#8 PBES2 private key with the
// given secret. Only RSA keys are accepted.
//
// A wrong secret surfaces as ErrDecryption.
func DecryptPrivateKey(c models.PrivateKeyContainer, secret []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(c.PrivateKey))
	if block == nil || block.Type != encryptedPrivateKeyPEMType {
		return nil, fmt.Errorf("%w: private key container holds no encrypted PEM block", ErrDecryption)
	}

	if err := checkIterations(block.Bytes); err != nil {
		return nil, err
	}

	key, err := pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return key, nil
}
