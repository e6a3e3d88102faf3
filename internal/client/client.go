package client

import (
	"context"

	"github.com/dmitrijs2005/cryptonaut/internal/models"
)

type Client interface {
	Close() error
	// NodeFromPath returns nil and no error when nothing lives at path.
	NodeFromPath(ctx context.Context, path string) (*models.Node, error)
	// DistributeMissingKeys hands out one batch of missing file keys using
	// the system rescue key unlocked by secret, restricted to roomID or fileID
	// when set, and returns the number of keys still missing.
	DistributeMissingKeys(ctx context.Context, secret []byte, roomID, fileID *uint64) (uint64, error)
}
