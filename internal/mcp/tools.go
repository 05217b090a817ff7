package mcp

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kpbrowse/kpcli/pkg/keepass"
)

// EntryListInput represents input for the entry_list tool.
type EntryListInput struct {
	Group     string `json:"group,omitempty"`
	Recursive bool   `json:"recursive,omitempty"`
}

// EntryListOutput represents output for the entry_list tool.
type EntryListOutput struct {
	Entries []EntryInfo `json:"entries"`
}

// EntryInfo describes one listing row.
type EntryInfo struct {
	Path    string `json:"path"`
	IsGroup bool   `json:"is_group"`
}

// EntryFieldsInput represents input for the entry_fields tool.
type EntryFieldsInput struct {
	Entry string `json:"entry"`
}

// EntryFieldsOutput represents output for the entry_fields tool.
type EntryFieldsOutput struct {
	Entry  string   `json:"entry"`
	Fields []string `json:"fields"`
}

// EntryGetMaskedInput represents input for the entry_get_masked tool.
type EntryGetMaskedInput struct {
	Entry string `json:"entry"`
	Field string `json:"field"`
}

// EntryGetMaskedOutput represents output for the entry_get_masked tool.
type EntryGetMaskedOutput struct {
	Entry       string `json:"entry"`
	Field       string `json:"field"`
	MaskedValue string `json:"masked_value"`
	ValueLength int    `json:"value_length"`
}

// handleEntryList handles the entry_list tool call.
func (s *Server) handleEntryList(ctx context.Context, _ *mcp.CallToolRequest, input EntryListInput) (*mcp.CallToolResult, EntryListOutput, error) {
	var flags []string
	if input.Recursive {
		flags = []string{"-R", "-f"}
	}

	out, err := s.session.Execute(ctx, "ls", flags, input.Group)
	if err != nil {
		return nil, EntryListOutput{}, err
	}

	lines := keepass.ParseEntryList(out)
	output := EntryListOutput{Entries: make([]EntryInfo, 0, len(lines))}
	for _, line := range lines {
		output.Entries = append(output.Entries, EntryInfo{
			Path:    line,
			IsGroup: keepass.IsGroup(line),
		})
	}
	return nil, output, nil
}

// handleEntryFields handles the entry_fields tool call. Field names are
// safe to expose; values stay inside the session.
func (s *Server) handleEntryFields(ctx context.Context, _ *mcp.CallToolRequest, input EntryFieldsInput) (*mcp.CallToolResult, EntryFieldsOutput, error) {
	if input.Entry == "" {
		return nil, EntryFieldsOutput{}, errors.New("entry is required")
	}

	out, err := s.session.Execute(ctx, "show", nil, input.Entry)
	if err != nil {
		return nil, EntryFieldsOutput{}, err
	}

	fields := keepass.ParseFieldSet(out)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return nil, EntryFieldsOutput{Entry: input.Entry, Fields: names}, nil
}

// handleEntryGetMasked handles the entry_get_masked tool call.
func (s *Server) handleEntryGetMasked(ctx context.Context, _ *mcp.CallToolRequest, input EntryGetMaskedInput) (*mcp.CallToolResult, EntryGetMaskedOutput, error) {
	if input.Entry == "" {
		return nil, EntryGetMaskedOutput{}, errors.New("entry is required")
	}
	if input.Field == "" {
		return nil, EntryGetMaskedOutput{}, errors.New("field is required")
	}

	out, err := s.session.Execute(ctx, "show", []string{"-s"}, input.Entry)
	if err != nil {
		return nil, EntryGetMaskedOutput{}, err
	}

	value := keepass.ParseFieldSet(out).Get(input.Field)
	return nil, EntryGetMaskedOutput{
		Entry:       input.Entry,
		Field:       input.Field,
		MaskedValue: maskValue(value),
		ValueLength: len(value),
	}, nil
}

// maskValue masks a field value, keeping a short suffix on longer values so
// an agent can verify the format:
//
//	1-4 characters   all masked
//	5-8 characters   last 2 visible
//	9+  characters   last 4 visible
func maskValue(value string) string {
	length := len(value)
	switch {
	case length == 0:
		return ""
	case length <= 4:
		return strings.Repeat("*", length)
	case length <= 8:
		return strings.Repeat("*", length-2) + value[length-2:]
	default:
		return strings.Repeat("*", length-4) + value[length-4:]
	}
}
