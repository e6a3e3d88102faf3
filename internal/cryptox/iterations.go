package cryptox

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
)

// MaxKDFIterations bounds the PBKDF2 work a key container may demand.
const MaxKDFIterations = 10_000_000

type encryptedPrivateKeyInfo struct {
	Algorithm     pkix.AlgorithmIdentifier
	EncryptedData []byte
}

type pbes2Params struct {
	KeyDerivationFunc pkix.AlgorithmIdentifier
	EncryptionScheme  pkix.AlgorithmIdentifier
}

type pbkdf2Params struct {
	Salt           []byte
	IterationCount int
}

// checkIterations rejects containers whose PBKDF2 iteration count exceeds
// MaxKDFIterations. Anything it cannot read is left to the PKCS#8 parser.
func checkIterations(der []byte) error {
	var info encryptedPrivateKeyInfo
	if _, err := asn1.Unmarshal(der, &info); err != nil {
		return nil
	}
	var params pbes2Params
	if _, err := asn1.Unmarshal(info.Algorithm.Parameters.FullBytes, &params); err != nil {
		return nil
	}
	var kdf pbkdf2Params
	if _, err := asn1.Unmarshal(params.KeyDerivationFunc.Parameters.FullBytes, &kdf); err != nil {
		return nil
	}
	if kdf.IterationCount > MaxKDFIterations {
		return fmt.Errorf("%w: %d pbkdf2 iterations, at most %d allowed",
			ErrUnsupportedVersion, kdf.IterationCount, MaxKDFIterations)
	}
	return nil
}
