// Package models defines the node, scope and key container types exchanged
// with the DRACOON API.
package models

// NodeType is the category of a node as reported by the remote service.
type NodeType string

const (
	NodeTypeRoom   NodeType = "room"
	NodeTypeFolder NodeType = "folder"
	NodeTypeFile   NodeType = "file"
)

// Node is the subset of a remote node the tool consumes.
//
// AuthParentID is the nearest ancestor holding key material; the service
// only fills it for folders.
type Node struct {
	ID           uint64   `json:"id"`
	Type         NodeType `json:"type"`
	Name         string   `json:"name"`
	ParentPath   string   `json:"parentPath,omitempty"`
	ParentID     *uint64  `json:"parentId,omitempty"`
	AuthParentID *uint64  `json:"authParentId,omitempty"`
	IsEncrypted  *bool    `json:"isEncrypted,omitempty"`
}

// Range is the pagination block returned by list endpoints.
type Range struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
	Total  uint64 `json:"total"`
}

// NodeList is the response of the node search endpoint.
type NodeList struct {
	Range Range  `json:"range"`
	Items []Node `json:"items"`
}
