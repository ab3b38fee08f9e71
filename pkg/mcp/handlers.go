package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/liquidoc/liquidoc/pkg/checker"
	"github.com/liquidoc/liquidoc/pkg/docs"
	"github.com/liquidoc/liquidoc/pkg/registry"
)

// templateDoc is the get_template_doc payload: the first documentation
// block, which is the template's header.
type templateDoc struct {
	Path        string            `json:"path"`
	Description string            `json:"description"`
	Params      []docs.Param      `json:"params"`
	Examples    []string          `json:"examples"`
	BlockCount  int               `json:"block_count"`
	Diagnostics []docs.Diagnostic `json:"diagnostics"`
}

// vendorTypes is the list_vendor_types payload.
type vendorTypes struct {
	Dataset       string   `json:"dataset"`
	SchemaVersion string   `json:"schema_version"`
	Count         int      `json:"count"`
	Types         []string `json:"types"`
}

// registryInfo is the registry_info payload.
type registryInfo struct {
	registry.Meta
	TypeCount int `json:"type_count"`
}

func (s *Server) handleParseTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	content := req.GetString("content", "")
	if path == "" && content == "" {
		return mcp.NewToolResultError("either path or content is required"), nil
	}

	if content == "" {
		data, err := os.ReadFile(s.resolvePath(path))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read template: %v", err)), nil
		}
		content = string(data)
	}

	blocks, diags := s.parser.Parse(content)
	return jsonResult(docs.FileResult{Path: path, Blocks: blocks, Diagnostics: diags})
}

func (s *Server) handleGetTemplateDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := os.ReadFile(s.resolvePath(path))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read template: %v", err)), nil
	}

	blocks, diags := s.parser.Parse(string(data))
	if len(blocks) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no documentation block in %s", path)), nil
	}

	return jsonResult(templateDoc{
		Path:        path,
		Description: blocks[0].Description,
		Params:      blocks[0].Params,
		Examples:    blocks[0].Examples,
		BlockCount:  len(blocks),
		Diagnostics: diags,
	})
}

func (s *Server) handleCheckTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := req.GetString("root", "")
	if root == "" {
		root = s.root
	} else {
		root = s.resolvePath(root)
	}

	chk := checker.New(checker.Config{
		Root:     root,
		Warn:     req.GetBool("warn", false),
		Eparse:   req.GetBool("eparse", false),
		Registry: s.reg,
	})
	defer chk.Close()

	sum, err := chk.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}
	return jsonResult(sum)
}

func (s *Server) handleListVendorTypes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix := strings.ToLower(req.GetString("prefix", ""))

	names := s.reg.Names()
	if prefix != "" {
		filtered := names[:0]
		for _, name := range names {
			if strings.HasPrefix(strings.ToLower(name), prefix) {
				filtered = append(filtered, name)
			}
		}
		names = filtered
	}

	meta := s.reg.Meta()
	return jsonResult(vendorTypes{
		Dataset:       meta.Name,
		SchemaVersion: meta.SchemaVersion,
		Count:         len(names),
		Types:         names,
	})
}

func (s *Server) handleRegistryInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(registryInfo{Meta: s.reg.Meta(), TypeCount: s.reg.Len()})
}

// resolvePath makes relative tool arguments relative to the server root.
func (s *Server) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.root, path)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
