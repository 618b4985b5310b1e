package domain

import (
	"strings"
	"time"
)

// NodeKind distinguishes folders from files in the display tree.
type NodeKind string

const (
	NodeKindFile   NodeKind = "file"
	NodeKindFolder NodeKind = "folder"
)

// TreeNode is one node of the folder/file forest built for display.
// Children is ordered and only populated on folders.
type TreeNode struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Kind     NodeKind    `json:"kind"`
	Path     string      `json:"path"`
	Children []*TreeNode `json:"children,omitempty"`
	Meta     NodeMeta    `json:"meta"`
}

// NodeMeta carries per-node file metadata.
type NodeMeta struct {
	Size       int64     `json:"size,omitempty"`
	ModifiedAt time.Time `json:"modified_at,omitzero"`
}

// BuildTree converts a flat descriptor list into an ordered forest.
// Missing ancestor folders are created lazily and reused by path, so the
// result is deterministic: the same input always yields a structurally
// identical forest. Descriptors without a path separator attach directly
// to the forest root.
func BuildTree(descriptors []FileDescriptor) []*TreeNode {
	var roots []*TreeNode
	folders := make(map[string]*TreeNode)

	// attach appends child under the folder at parentPath, creating the
	// folder chain on demand. Empty parentPath means the forest root.
	var folderAt func(path string) *TreeNode
	folderAt = func(path string) *TreeNode {
		if node, ok := folders[path]; ok {
			return node
		}
		node := &TreeNode{
			ID:   GenerateID(),
			Name: path[strings.LastIndex(path, "/")+1:],
			Kind: NodeKindFolder,
			Path: path,
		}
		folders[path] = node
		if parent := parentPath(path); parent == "" {
			roots = append(roots, node)
		} else {
			p := folderAt(parent)
			p.Children = append(p.Children, node)
		}
		return node
	}

	for _, d := range descriptors {
		leaf := &TreeNode{
			ID:   GenerateID(),
			Name: d.Name,
			Kind: NodeKindFile,
			Path: d.Path,
			Meta: NodeMeta{Size: d.Size, ModifiedAt: d.ModifiedAt},
		}
		if leaf.Name == "" {
			leaf.Name = d.Path[strings.LastIndex(d.Path, "/")+1:]
		}

		if parent := parentPath(d.Path); parent == "" {
			roots = append(roots, leaf)
		} else {
			p := folderAt(parent)
			p.Children = append(p.Children, leaf)
		}
	}

	return roots
}

func parentPath(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return ""
	}
	return path[:idx]
}
