package services

import "github.com/dmitrijs2005/cryptonaut/internal/models"

// ClassifyScope maps a resolved node to the scope of a distribution run.
// A zero id always means every node.
func ClassifyScope(id uint64, kind models.NodeType) models.Scope {
	if id == 0 {
		return models.Scope{Kind: models.ScopeAllNodes}
	}

	switch kind {
	case models.NodeTypeFile:
		return models.Scope{Kind: models.ScopeSingleFile, NodeID: id}
	default:
		return models.Scope{Kind: models.ScopeRoomOrFolder, NodeID: id}
	}
}
