// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Perthro tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/perthro/internal/index"
	"github.com/starford/perthro/internal/opener"
	"github.com/starford/perthro/internal/storage"
)

// Server wraps the MCP server with Perthro tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *opener.Service
	store storage.Provider
	db    index.FileIndex
}

// New creates a new MCP server with all Perthro tools registered.
func New(svc *opener.Service, store storage.Provider, db index.FileIndex) *Server {
	s := &Server{svc: svc, store: store, db: db}

	s.mcp = server.NewMCPServer(
		"Perthro",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("open_image",
		mcp.WithDescription("Resolve an image reference against the vault and open the file "+
			"in the OS default viewer. Accepts relative paths, absolute paths, file:// URLs, "+
			"and [[wikilinks]]. Read the reference contract first via the "+
			"get_reference_contract tool or the perthro://reference-format resource."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Image reference (e.g. images/photo.png or [[photo]])")),
	), s.openImage)

	s.mcp.AddTool(mcp.NewTool("resolve_image",
		mcp.WithDescription("Resolve an image reference to an absolute path without opening it. "+
			"Useful for checking what a reference points to."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Image reference to resolve")),
	), s.resolveImage)

	s.mcp.AddTool(mcp.NewTool("list_images",
		mcp.WithDescription("List indexed image files in the vault, optionally scoped to a folder."),
		mcp.WithString("folder", mcp.Description("Optional vault folder to list (empty for all)")),
	), s.listImages)

	s.mcp.AddTool(mcp.NewTool("export_embedded",
		mcp.WithDescription("Export an embedded (data: URI) image to the vault's attachments/ "+
			"directory so it has a real file that can be opened. Optionally opens it afterwards."),
		mcp.WithString("data_uri", mcp.Required(), mcp.Description("data:<mime>;base64,<payload> URI")),
		mcp.WithString("filename", mcp.Description("Optional target filename (extension must match the MIME type)")),
		mcp.WithBoolean("open", mcp.Description("Open the exported file in the default viewer")),
	), s.exportEmbedded)

	s.mcp.AddTool(mcp.NewTool("get_reference_contract",
		mcp.WithDescription("Returns the canonical image reference contract: which reference "+
			"forms are accepted, which are rejected, and why."),
	), s.getReferenceContract)

	// Resource: reference format contract.
	s.mcp.AddResource(
		mcp.NewResource("perthro://reference-format", "Image Reference Contract",
			mcp.WithResourceDescription("Canonical image reference forms accepted by the open pipeline."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readReferenceFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) openImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := s.svc.OpenReference(ctx, ref)
	raw, _ := json.MarshalIndent(out, "", "  ")
	if out.Status != "ok" {
		return mcp.NewToolResultError(string(raw)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) resolveImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := s.svc.ResolveReference(ref)
	raw, _ := json.MarshalIndent(out, "", "  ")
	if out.Status != "ok" {
		return mcp.NewToolResultError(string(raw)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) listImages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	rows, err := s.db.ListImages(folder, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, fr := range rows {
		paths = append(paths, fr.Path)
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no images found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getReferenceContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ReferenceFormatContract), nil
}

func (s *Server) readReferenceFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "perthro://reference-format",
			MIMEType: "text/markdown",
			Text:     ReferenceFormatContract,
		},
	}, nil
}
