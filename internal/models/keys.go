package models

// Key pair versions.
const (
	KeyVersionRSA2048 = "A"
	KeyVersionRSA4096 = "RSA-4096"
)

// File key versions.
const (
	FileKeyVersionRSA2048AES256GCM = "A"
	FileKeyVersionRSA4096AES256GCM = "RSA-4096/AES-256-GCM"
)

// UseKeySystemRescue asks the missing keys endpoint for file keys encrypted
// with the system rescue key.
const UseKeySystemRescue = "system_rescue_key"

type PublicKeyContainer struct {
	Version   string `json:"version"`
	PublicKey string `json:"publicKey"`
}

type PrivateKeyContainer struct {
	Version    string `json:"version"`
	PrivateKey string `json:"privateKey"`
}

type UserKeyPairContainer struct {
	PrivateKeyContainer PrivateKeyContainer `json:"privateKeyContainer"`
	PublicKeyContainer  PublicKeyContainer  `json:"publicKeyContainer"`
}

// FileKey is an AES file key encrypted for one key pair. Key, IV and Tag are
// base64 encoded.
type FileKey struct {
	Key     string  `json:"key"`
	IV      string  `json:"iv"`
	Tag     *string `json:"tag,omitempty"`
	Version string  `json:"version"`
}

type MissingKeyItem struct {
	UserID uint64 `json:"userId"`
	FileID uint64 `json:"fileId"`
}

type UserIDPublicKey struct {
	ID                 uint64             `json:"id"`
	PublicKeyContainer PublicKeyContainer `json:"publicKeyContainer"`
}

type FileIDFileKey struct {
	ID               uint64  `json:"id"`
	FileKeyContainer FileKey `json:"fileKeyContainer"`
}

// MissingKeys is one page of the missing file keys endpoint. Range.Total is
// the number of keys still missing when the page was produced.
type MissingKeys struct {
	Range Range             `json:"range"`
	Items []MissingKeyItem  `json:"items"`
	Users []UserIDPublicKey `json:"users"`
	Files []FileIDFileKey   `json:"files"`
}

type UserFileKeySetRequest struct {
	FileID  uint64  `json:"fileId"`
	UserID  uint64  `json:"userId"`
	FileKey FileKey `json:"fileKey"`
}

type UserFileKeySetBatchRequest struct {
	Items []UserFileKeySetRequest `json:"items"`
}
