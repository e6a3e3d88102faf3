package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/cryptonaut/internal/models"
)

const searchPath = "/api/v4/nodes/search"

// splitNodePath turns "/room/folder/file" into the parent path "/room/folder/",
// the name "file" and the depth of the parent below the root.
func splitNodePath(p string) (parent, name string, depth int) {
	p = "/" + strings.Trim(p, "/")
	i := strings.LastIndex(p, "/")
	parent, name = p[:i+1], p[i+1:]
	return parent, name, strings.Count(parent, "/") - 1
}

// NodeFromPath searches for the node named by the last path segment below its
// parent path and returns the exact match, if any.
func (c *HTTPClient) NodeFromPath(ctx context.Context, path string) (*models.Node, error) {
	parent, name, depth := splitNodePath(path)

	q := url.Values{}
	q.Set("search_string", name)
	q.Set("depth_level", strconv.Itoa(depth))
	q.Set("filter", "parentPath:eq:"+parent)

	var list models.NodeList
	if err := c.do(ctx, "GET", searchPath, q, nil, &list); err != nil {
		return nil, err
	}

	for i := range list.Items {
		if list.Items[i].Name == name {
			node := list.Items[i]
			c.log.Debug(ctx, "node found", "path", path, "node_id", node.ID, "node_type", node.Type)
			return &node, nil
		}
	}
	return nil, nil
}
