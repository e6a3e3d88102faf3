package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/cryptonaut/internal/cryptox"
	"github.com/dmitrijs2005/cryptonaut/internal/cryptox/cryptotest"
	"github.com/dmitrijs2005/cryptonaut/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rescueSecret = "Rescue-Secret-1"

type keyFixture struct {
	f        *fakeDracoon
	plainKey []byte
	fileKey  models.FileKey
	userPub  models.PublicKeyContainer
}

// newKeyFixture serves a rescue key pair and one file key encrypted for it.
func newKeyFixture(t *testing.T) *keyFixture {
	t.Helper()
	rescue, user := testKeys(t)

	priv, err := cryptotest.EncryptPrivateKey(rescue, []byte(rescueSecret), models.KeyVersionRSA2048, cryptotest.LowIterations)
	require.NoError(t, err)
	rescuePub, err := cryptotest.EncodePublicKey(&rescue.PublicKey, models.KeyVersionRSA2048)
	require.NoError(t, err)
	userPub, err := cryptotest.EncodePublicKey(&user.PublicKey, models.KeyVersionRSA2048)
	require.NoError(t, err)

	plain := cryptotest.RandomKey(32)
	tag := "dGFnLXZhbHVl"
	fk, err := cryptox.EncryptFileKey(&cryptox.PlainFileKey{Key: append([]byte(nil), plain...), IV: "aXYtdmFsdWU=", Tag: &tag}, rescuePub)
	require.NoError(t, err)

	f := newFakeDracoon(t)
	f.locked(func() {
		f.keyPair = models.UserKeyPairContainer{PrivateKeyContainer: priv, PublicKeyContainer: rescuePub}
	})

	return &keyFixture{f: f, plainKey: plain, fileKey: fk, userPub: userPub}
}

func (k *keyFixture) page(total uint64, items ...models.MissingKeyItem) models.MissingKeys {
	page := models.MissingKeys{Range: models.Range{Limit: 100, Total: total}, Items: items}
	seenUsers := map[uint64]bool{}
	seenFiles := map[uint64]bool{}
	for _, it := range items {
		if !seenUsers[it.UserID] {
			page.Users = append(page.Users, models.UserIDPublicKey{ID: it.UserID, PublicKeyContainer: k.userPub})
			seenUsers[it.UserID] = true
		}
		if !seenFiles[it.FileID] {
			page.Files = append(page.Files, models.FileIDFileKey{ID: it.FileID, FileKeyContainer: k.fileKey})
			seenFiles[it.FileID] = true
		}
	}
	return page
}

func TestDistributeMissingKeys_ReEncryptsForUsers(t *testing.T) {
	k := newKeyFixture(t)
	_, user := testKeys(t)

	k.f.locked(func() {
		k.f.pages = []models.MissingKeys{k.page(250,
			models.MissingKeyItem{UserID: 1, FileID: 10},
			models.MissingKeyItem{UserID: 2, FileID: 10},
		)}
	})
	c := k.f.connect(t)

	remaining, err := c.DistributeMissingKeys(context.Background(), []byte(rescueSecret), ptr(uint64(5)), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), remaining)

	k.f.locked(func() {
		require.Len(t, k.f.missingQueries, 1)
		q := k.f.missingQueries[0]
		assert.Equal(t, "system_rescue_key", q.Get("use_key"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.Equal(t, "0", q.Get("offset"))
		assert.Equal(t, "5", q.Get("room_id"))
		assert.False(t, q.Has("file_id"))

		require.Len(t, k.f.uploads, 1)
		items := k.f.uploads[0].Items
		require.Len(t, items, 2)

		for i, wantUser := range []uint64{1, 2} {
			assert.Equal(t, wantUser, items[i].UserID)
			assert.Equal(t, uint64(10), items[i].FileID)
			assert.Equal(t, models.FileKeyVersionRSA2048AES256GCM, items[i].FileKey.Version)
			assert.Equal(t, "aXYtdmFsdWU=", items[i].FileKey.IV)

			got, err := cryptox.DecryptFileKey(items[i].FileKey, user)
			require.NoError(t, err)
			assert.Equal(t, k.plainKey, got.Key)
		}
	})
}

func TestDistributeMissingKeys_FileFilterAndKeyPairCached(t *testing.T) {
	k := newKeyFixture(t)
	k.f.locked(func() {
		k.f.pages = []models.MissingKeys{
			k.page(120, models.MissingKeyItem{UserID: 1, FileID: 3}),
			k.page(20, models.MissingKeyItem{UserID: 1, FileID: 3}),
		}
	})
	c := k.f.connect(t)

	for _, want := range []uint64{120, 20} {
		remaining, err := c.DistributeMissingKeys(context.Background(), []byte(rescueSecret), nil, ptr(uint64(3)))
		require.NoError(t, err)
		assert.Equal(t, want, remaining)
	}

	k.f.locked(func() {
		assert.Equal(t, 1, k.f.keyPairCalls)
		require.Len(t, k.f.missingQueries, 2)
		assert.Equal(t, "3", k.f.missingQueries[1].Get("file_id"))
		assert.False(t, k.f.missingQueries[1].Has("room_id"))
		assert.Len(t, k.f.uploads, 2)
	})
}

func TestDistributeMissingKeys_EmptyPageSkipsUpload(t *testing.T) {
	k := newKeyFixture(t)
	c := k.f.connect(t)

	remaining, err := c.DistributeMissingKeys(context.Background(), []byte(rescueSecret), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	k.f.locked(func() {
		assert.Empty(t, k.f.uploads)
		q := k.f.missingQueries[0]
		assert.False(t, q.Has("room_id"))
		assert.False(t, q.Has("file_id"))
	})
}

func TestDistributeMissingKeys_SkipsIncompleteItems(t *testing.T) {
	k := newKeyFixture(t)
	page := k.page(3, models.MissingKeyItem{UserID: 1, FileID: 10})
	page.Items = append(page.Items,
		models.MissingKeyItem{UserID: 99, FileID: 10},
		models.MissingKeyItem{UserID: 1, FileID: 99},
	)
	k.f.locked(func() { k.f.pages = []models.MissingKeys{page} })
	c := k.f.connect(t)

	remaining, err := c.DistributeMissingKeys(context.Background(), []byte(rescueSecret), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), remaining)

	k.f.locked(func() {
		require.Len(t, k.f.uploads, 1)
		assert.Len(t, k.f.uploads[0].Items, 1)
	})
}

func TestDistributeMissingKeys_WrongSecret(t *testing.T) {
	k := newKeyFixture(t)
	c := k.f.connect(t)

	_, err := c.DistributeMissingKeys(context.Background(), []byte("wrong"), nil, nil)
	require.ErrorIs(t, err, cryptox.ErrDecryption)

	k.f.locked(func() { assert.Empty(t, k.f.missingQueries) })
}

func TestDistributeMissingKeys_UploadFailure(t *testing.T) {
	k := newKeyFixture(t)
	k.f.locked(func() {
		k.f.pages = []models.MissingKeys{k.page(1, models.MissingKeyItem{UserID: 1, FileID: 10})}
		k.f.failStatus[setFileKeysPath] = http.StatusServiceUnavailable
	})
	c := k.f.connect(t)

	_, err := c.DistributeMissingKeys(context.Background(), []byte(rescueSecret), nil, nil)
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, ErrRemoteAPI)
}
