package client

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/cryptonaut/internal/common"
	"github.com/dmitrijs2005/cryptonaut/internal/cryptox"
	"github.com/dmitrijs2005/cryptonaut/internal/models"
)

const (
	rescueKeyPairPath = "/api/v4/settings/keypair"
	missingKeysPath   = "/api/v4/nodes/missingFileKeys"
	setFileKeysPath   = "/api/v4/nodes/files/keys"
)

// DistributeMissingKeys fetches one page of missing file keys encrypted for
// the system rescue key, re-encrypts each for its user and uploads them.
// The returned count is the total the server reported for that page.
func (c *HTTPClient) DistributeMissingKeys(ctx context.Context, secret []byte, roomID, fileID *uint64) (uint64, error) {
	key, err := c.systemRescueKey(ctx, secret)
	if err != nil {
		return 0, err
	}

	q := url.Values{}
	q.Set("use_key", models.UseKeySystemRescue)
	q.Set("limit", strconv.FormatUint(models.MissingKeysBatchSize, 10))
	q.Set("offset", "0")
	if roomID != nil {
		q.Set("room_id", strconv.FormatUint(*roomID, 10))
	}
	if fileID != nil {
		q.Set("file_id", strconv.FormatUint(*fileID, 10))
	}

	var missing models.MissingKeys
	if err := c.do(ctx, "GET", missingKeysPath, q, nil, &missing); err != nil {
		return 0, err
	}

	batch, err := c.buildKeyBatch(ctx, &missing, key)
	if err != nil {
		return 0, err
	}

	if len(batch.Items) > 0 {
		if err := c.do(ctx, "POST", setFileKeysPath, nil, batch, nil); err != nil {
			return 0, err
		}
	}

	c.log.Debug(ctx, "missing keys batch processed",
		"items", len(missing.Items), "uploaded", len(batch.Items), "total", missing.Range.Total)

	return missing.Range.Total, nil
}

// systemRescueKey downloads and unlocks the rescue key pair once per client.
func (c *HTTPClient) systemRescueKey(ctx context.Context, secret []byte) (*rsa.PrivateKey, error) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()

	if c.rescueKey != nil {
		return c.rescueKey, nil
	}

	var pair models.UserKeyPairContainer
	if err := c.do(ctx, "GET", rescueKeyPairPath, nil, nil, &pair); err != nil {
		return nil, err
	}

	key, err := cryptox.DecryptPrivateKey(pair.PrivateKeyContainer, secret)
	if err != nil {
		return nil, fmt.Errorf("unlock system rescue key: %w", err)
	}

	c.rescueKey = key
	return key, nil
}

func (c *HTTPClient) buildKeyBatch(ctx context.Context, missing *models.MissingKeys, key *rsa.PrivateKey) (*models.UserFileKeySetBatchRequest, error) {
	users := make(map[uint64]models.PublicKeyContainer, len(missing.Users))
	for _, u := range missing.Users {
		users[u.ID] = u.PublicKeyContainer
	}
	files := make(map[uint64]models.FileKey, len(missing.Files))
	for _, f := range missing.Files {
		files[f.ID] = f.FileKeyContainer
	}

	plain := make(map[uint64]*cryptox.PlainFileKey)
	defer func() {
		for _, p := range plain {
			common.WipeByteArray(p.Key)
		}
	}()

	batch := &models.UserFileKeySetBatchRequest{Items: make([]models.UserFileKeySetRequest, 0, len(missing.Items))}

	for _, item := range missing.Items {
		pub, ok := users[item.UserID]
		if !ok {
			c.log.Warn(ctx, "no public key for user, skipping", "user_id", item.UserID, "file_id", item.FileID)
			continue
		}
		enc, ok := files[item.FileID]
		if !ok {
			c.log.Warn(ctx, "no file key for file, skipping", "user_id", item.UserID, "file_id", item.FileID)
			continue
		}

		pk, ok := plain[item.FileID]
		if !ok {
			var err error
			if pk, err = cryptox.DecryptFileKey(enc, key); err != nil {
				return nil, fmt.Errorf("decrypt file key %d: %w", item.FileID, err)
			}
			plain[item.FileID] = pk
		}

		fk, err := cryptox.EncryptFileKey(pk, pub)
		if err != nil {
			return nil, fmt.Errorf("encrypt file key %d for user %d: %w", item.FileID, item.UserID, err)
		}

		batch.Items = append(batch.Items, models.UserFileKeySetRequest{
			FileID:  item.FileID,
			UserID:  item.UserID,
			FileKey: fk,
		})
	}

	return batch, nil
}
