package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	rerrors "github.com/phobologic/refscope/internal/errors"
	"github.com/phobologic/refscope/internal/ranking"
	"github.com/phobologic/refscope/internal/toon"
	"github.com/phobologic/refscope/internal/usage"
)

// ServiceProvider hands out the usage service for one request.
type ServiceProvider interface {
	Service(ctx context.Context) (*usage.Service, error)
}

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func targetOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("symbol_name",
			mcp.Description("Name to look up, optionally qualified (Type.member or package.Type). Omit when giving a file position.")),
		mcp.WithString("file_path",
			mcp.Description("Repository-relative file for a position lookup")),
		mcp.WithNumber("position",
			mcp.Description("0-based byte offset in file_path")),
		mcp.WithNumber("line",
			mcp.Description("1-based line in file_path, used when position is absent")),
		mcp.WithNumber("column",
			mcp.Description("1-based column on line (default 1)")),
		mcp.WithString("kind",
			mcp.Description("Expected kind hint for name lookups: class, method, field, ...")),
		mcp.WithString("format",
			mcp.Description("Output format: toon (default) or json")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of items to return (0 for all)")),
	}
}

// AddDefinitionTool registers find_symbol_definition.
func AddDefinitionTool(s *server.MCPServer, p ServiceProvider) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription(`Find where a symbol is declared, ranked by confidence.

Look up by name ("UserService", "UserService.save", "com.example.User") or by
position (file_path plus position, or file_path plus line and column). Each
candidate carries a confidence in [0,1], a disambiguation hint and test or
library flags.`),
	}, targetOptions()...)
	opts = append(opts,
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false))

	s.AddTool(mcp.NewTool("find_symbol_definition", opts...), createDefinitionHandler(p))
}

// AddReferencesTool registers find_symbol_references.
func AddReferencesTool(s *server.MCPServer, p ServiceProvider) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription(`Find every usage of a symbol, classified by how it is used.

Resolves the target like find_symbol_definition, then groups its usages
(method_call, field_write, constructor_call, method_override, import, ...)
and adds a summary and short insights about the usage pattern.`),
	}, targetOptions()...)
	opts = append(opts,
		mcp.WithBoolean("include_declaration",
			mcp.Description("Prepend the target's own declaration")),
		mcp.WithString("usage_types",
			mcp.Description("Comma-separated usage types to keep, e.g. method_call,field_write")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false))

	s.AddTool(mcp.NewTool("find_symbol_references", opts...), createReferencesHandler(p))
}

type toolArgs struct {
	req     usage.Request
	format  string
	limit   int
	filters []string
}

func parseArgs(request mcp.CallToolRequest) (*toolArgs, *mcp.CallToolResult) {
	argsMap, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, mcp.NewToolResultError("invalid arguments format")
	}

	a := &toolArgs{format: "toon"}
	a.req.SymbolName, _ = argsMap["symbol_name"].(string)
	a.req.FilePath, _ = argsMap["file_path"].(string)
	a.req.Kind, _ = argsMap["kind"].(string)
	a.req.IncludeDeclaration, _ = argsMap["include_declaration"].(bool)
	if pos, ok := argsMap["position"].(float64); ok {
		p := int(pos)
		a.req.Position = &p
	}
	if line, ok := argsMap["line"].(float64); ok {
		a.req.Line = int(line)
		a.req.Column = 1
	}
	if col, ok := argsMap["column"].(float64); ok {
		a.req.Column = int(col)
	}
	if limit, ok := argsMap["limit"].(float64); ok {
		a.limit = int(limit)
	}
	if types, ok := argsMap["usage_types"].(string); ok && types != "" {
		a.filters = strings.Split(types, ",")
		if err := ranking.ValidateUsageTypes(a.filters); err != nil {
			return nil, mcp.NewToolResultError(err.Error())
		}
	}
	if format, ok := argsMap["format"].(string); ok && format != "" {
		a.format = strings.ToLower(format)
	}
	if a.format != "toon" && a.format != "json" {
		return nil, mcp.NewToolResultError(fmt.Sprintf("unknown format %q: want toon or json", a.format))
	}
	return a, nil
}

func createDefinitionHandler(p ServiceProvider) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, errResult := parseArgs(request)
		if errResult != nil {
			return errResult, nil
		}
		svc, err := p.Service(ctx)
		if err != nil {
			return nil, err
		}

		cands, err := svc.FindDefinition(ctx, args.req)
		if err != nil {
			return requestError(err)
		}
		cands = ranking.SelectCandidates(cands, args.limit)

		if args.format == "json" {
			return marshalToolResponse(cands)
		}
		return mcp.NewToolResultText(toon.EncodeCandidates(cands)), nil
	}
}

func createReferencesHandler(p ServiceProvider) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, errResult := parseArgs(request)
		if errResult != nil {
			return errResult, nil
		}
		svc, err := p.Service(ctx)
		if err != nil {
			return nil, err
		}

		res, err := svc.FindReferences(ctx, args.req)
		if err != nil {
			return requestError(err)
		}
		res = ranking.SelectReferences(ranking.FilterByUsage(res, args.filters), args.limit)

		if args.format == "json" {
			return marshalToolResponse(res)
		}
		return mcp.NewToolResultText(toon.EncodeReferences(res)), nil
	}
}

// requestError reports a malformed request to the caller as a tool error.
// Anything else is a server failure.
func requestError(err error) (*mcp.CallToolResult, error) {
	if rerrors.Is(err, rerrors.InvalidInput) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

func marshalToolResponse(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
