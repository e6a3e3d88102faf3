// Package services contains the application logic of cryptonaut: turning a
// target path into a distribution scope and driving the remote key
// distribution until nothing is left to hand out.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cryptonaut/internal/client"
	"github.com/dmitrijs2005/cryptonaut/internal/logging"
	"github.com/dmitrijs2005/cryptonaut/internal/models"
)

// ErrBatchLimitExceeded is returned when the server still reports missing
// keys after the configured number of batches.
var ErrBatchLimitExceeded = errors.New("batch limit exceeded")

// RootPath addresses every node of the instance.
const RootPath = "/"

// KeyService defines the key distribution operations for the CLI.
//
// Contract:
//   - ResolveNode: map a path to the node id and type the distribution works on.
//   - Resolve: ResolveNode followed by ClassifyScope.
//   - Distribute: run batches until the server reports at most one batch left.
//
// Remote errors are returned unchanged.
type KeyService interface {
	ResolveNode(ctx context.Context, path string) (uint64, models.NodeType, error)
	Resolve(ctx context.Context, path string) (models.Scope, error)
	Distribute(ctx context.Context, scope models.Scope, secret []byte) (*Report, error)
}

type Options struct {
	// MaxBatches bounds the number of remote calls per run. Zero disables
	// the bound.
	MaxBatches int
}

// Report summarizes a distribution run. Distributed is the sum of the
// per-batch estimates min(remaining, batch size).
type Report struct {
	Scope       models.Scope
	Batches     int
	Distributed uint64
	Remaining   uint64
}

type keyService struct {
	client     client.Client
	log        logging.Logger
	maxBatches int
}

// NewKeyService constructs a KeyService bound to the given API client.
func NewKeyService(client client.Client, log logging.Logger, opts Options) KeyService {
	if log == nil {
		log = logging.NewNop()
	}
	return &keyService{client: client, log: log, maxBatches: opts.MaxBatches}
}

// ResolveNode returns (0, room) for the root path and for paths that do not
// exist. Folders resolve to their authorization parent, because key
// distribution works on rooms.
func (s *keyService) ResolveNode(ctx context.Context, path string) (uint64, models.NodeType, error) {
	if path == RootPath {
		return 0, models.NodeTypeRoom, nil
	}

	node, err := s.client.NodeFromPath(ctx, path)
	if err != nil {
		return 0, "", err
	}

	if node == nil {
		s.log.Warn(ctx, "node not found, falling back to all nodes", "path", path)
		return 0, models.NodeTypeRoom, nil
	}

	switch node.Type {
	case models.NodeTypeFolder:
		if node.AuthParentID == nil {
			s.log.Warn(ctx, "folder has no authorization parent, falling back to all nodes",
				"path", path, "node_id", node.ID)
			return 0, models.NodeTypeFolder, nil
		}
		s.log.Debug(ctx, "folder resolved to its room", "path", path,
			"node_id", node.ID, "auth_parent_id", *node.AuthParentID)
		return *node.AuthParentID, models.NodeTypeFolder, nil
	default:
		return node.ID, node.Type, nil
	}
}

func (s *keyService) Resolve(ctx context.Context, path string) (models.Scope, error) {
	id, kind, err := s.ResolveNode(ctx, path)
	if err != nil {
		return models.Scope{}, err
	}

	scope := ClassifyScope(id, kind)
	s.log.Info(ctx, "scope resolved", "path", path, "scope", scope.Kind.String(), "node_id", scope.NodeID)
	return scope, nil
}

// Distribute calls the remote distribution once and repeats while the server
// reports more than one batch of missing keys. The returned report reflects
// the batches completed so far, also on error.
func (s *keyService) Distribute(ctx context.Context, scope models.Scope, secret []byte) (*Report, error) {
	roomID, fileID := scope.Filters()
	report := &Report{Scope: scope}

	s.log.Info(ctx, "distributing missing keys", "scope", scope.Kind.String(), "node_id", scope.NodeID)

	for {
		if s.maxBatches > 0 && report.Batches >= s.maxBatches {
			return report, fmt.Errorf("%w: %d batches done, %d keys still missing",
				ErrBatchLimitExceeded, report.Batches, report.Remaining)
		}

		remaining, err := s.client.DistributeMissingKeys(ctx, secret, roomID, fileID)
		if err != nil {
			s.log.Error(ctx, "distribution failed", "batch", report.Batches+1, "error", err)
			return report, err
		}

		batch := min(remaining, models.MissingKeysBatchSize)
		report.Batches++
		report.Distributed += batch
		report.Remaining = remaining

		s.log.Info(ctx, "missing keys distributed", "batch", report.Batches, "distributed", batch, "remaining", remaining)

		if remaining <= models.MissingKeysBatchSize {
			s.log.Info(ctx, "all missing keys distributed", "batches", report.Batches)
			return report, nil
		}

		if err := ctx.Err(); err != nil {
			return report, err
		}
		s.log.Debug(ctx, "more keys found, fetching again")
	}
}
