// Package mcp implements the MCP (Model Context Protocol) server for kpcli.
// Agents can browse the vault tree and inspect entry shapes, but plaintext
// secret values are never returned: passwords only leave as masked strings.
package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kpbrowse/kpcli/pkg/keepass"
)

// PasswordEnvVar carries the master password into the server process. It is
// read once at startup and immediately cleared from the environment.
const PasswordEnvVar = "KPCLI_PASSWORD"

// Server represents the MCP server over one open vault. Tool calls address
// groups and entries by full path, so no navigation state is kept between
// calls.
type Server struct {
	server  *mcp.Server
	session *keepass.Session
}

// ServerOptions configures the MCP server.
type ServerOptions struct {
	// VaultPath is the KeePass database file to open.
	VaultPath string

	// Program overrides the vault tool binary.
	Program string

	// Password is the master password. Empty means read PasswordEnvVar.
	Password string
}

// NewServer creates an MCP server for the vault at opts.VaultPath.
func NewServer(opts *ServerOptions) (*Server, error) {
	if opts == nil || opts.VaultPath == "" {
		return nil, fmt.Errorf("mcp: vault path is required")
	}
	if !keepass.IsVaultFile(opts.VaultPath) {
		return nil, fmt.Errorf("mcp: %s is not a KeePass database file", opts.VaultPath)
	}

	password := opts.Password
	if password == "" {
		password = os.Getenv(PasswordEnvVar)
		// Clear the environment variable after reading for security.
		os.Unsetenv(PasswordEnvVar)
	}
	if password == "" {
		return nil, fmt.Errorf("mcp: no password provided: set %s", PasswordEnvVar)
	}

	session := keepass.NewSession(opts.VaultPath, password, &keepass.ExecRunner{Program: opts.Program})
	// There is no terminal to re-prompt on; a wrong password must surface
	// as a tool error instead of hanging the server.
	session.EnforcePassword = false

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "kpcli",
			Version: "0.3.0",
		},
		nil,
	)

	s := &Server{
		server:  mcpServer,
		session: session,
	}
	s.registerTools()
	return s, nil
}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "entry_list",
		Description: "List entries and groups under a vault group. Returns paths only, no secret values.",
	}, s.handleEntryList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "entry_fields",
		Description: "List the field names of an entry (Title, UserName, URL, ...). Does NOT return field values.",
	}, s.handleEntryFields)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "entry_get_masked",
		Description: "Get a masked version of an entry field value (e.g. '****WXYZ'). Useful for verifying format without exposing the value.",
	}, s.handleEntryGetMasked)
}

// Run starts the MCP server using stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
