package cryptox

import (
	"crypto"
	"crypto/rsa"
	"errors"
	"io"
	"math/big"
)

var errMessageTooLong = errors.New("message too long for RSA key size")

// encryptOAEP is RSAES-OAEP (RFC 8017, 7.1.1) with independent label and MGF1
// hashes. rsa.EncryptOAEP ties both to one hash, but version A keys pair
// SHA-256 with MGF1-SHA-1. The label is always empty.
func encryptOAEP(random io.Reader, pub *rsa.PublicKey, msg []byte, h, mgfHash crypto.Hash) ([]byte, error) {
	k := pub.Size()
	hLen := h.Size()
	if len(msg) > k-2*hLen-2 {
		return nil, errMessageTooLong
	}

	lHash := h.New().Sum(nil)

	em := make([]byte, k)
	seed := em[1 : 1+hLen]
	db := em[1+hLen:]

	copy(db[:hLen], lHash)
	db[len(db)-len(msg)-1] = 1
	copy(db[len(db)-len(msg):], msg)

	if _, err := io.ReadFull(random, seed); err != nil {
		return nil, err
	}

	mgf1XOR(db, mgfHash, seed)
	mgf1XOR(seed, mgfHash, db)

	m := new(big.Int).SetBytes(em)
	c := new(big.Int).Exp(m, big.NewInt(int64(pub.E)), pub.N)

	return c.FillBytes(make([]byte, k)), nil
}

// mgf1XOR XORs out with the MGF1 mask generated from seed.
func mgf1XOR(out []byte, h crypto.Hash, seed []byte) {
	var counter [4]byte
	done := 0
	for done < len(out) {
		d := h.New()
		d.Write(seed)
		d.Write(counter[:])
		digest := d.Sum(nil)

		for i := 0; i < len(digest) && done < len(out); i++ {
			out[done] ^= digest[i]
			done++
		}

		for i := len(counter) - 1; i >= 0; i-- {
			counter[i]++
			if counter[i] != 0 {
				break
			}
		}
	}
}
