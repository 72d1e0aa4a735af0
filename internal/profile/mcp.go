package profile

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// MCPOpType selects what the external MCP client should do with the
// resolved server.
type MCPOpType string

const (
	OpListResources MCPOpType = "list_resources"
	OpListTools     MCPOpType = "list_tools"
	OpCallTool      MCPOpType = "call_tool"
	OpReadResource  MCPOpType = "read_resource"
)

// MCPDescriptor is the protocol-specific output of MCP profile resolution.
// Server carries the merged, substituted container config (command, args,
// env); the operation fields say what to run once connected. For call_tool
// operations Request is a ready-to-send mcp-go request.
type MCPDescriptor struct {
	Server      map[string]any       `json:"server"`
	Type        MCPOpType            `json:"type"`
	Tool        string               `json:"tool,omitempty"`
	ResourceURI string               `json:"resource,omitempty"`
	Params      map[string]string    `json:"params,omitempty"`
	Request     *mcp.CallToolRequest `json:"-"`
}

// ResolveMCP resolves an @server[/tool] reference into an operation
// descriptor. Operation selection, by reference shape:
//
//	@server              → list_resources
//	@server/tool         → call_tool
//	@server?tool=x&k=v   → call_tool
//	@server?list=tools   → list_tools (or list=resources)
//	@server?resource=uri → read_resource
//
// A tool without an on-disk leaf definition is tolerated: MCP servers may
// expose tools dynamically.
func (r *Resolver) ResolveMCP(namespace, leaf string, params map[string]string) (*MCPDescriptor, error) {
	server, err := r.load(KindMCP, namespace, leaf, false)
	if err != nil {
		return nil, err
	}

	substituted, err := SubstituteEnv(server, r.env)
	if err != nil {
		return nil, err
	}
	server = substituted.(map[string]any)

	rest := make(map[string]string, len(params))
	for k, v := range params {
		rest[k] = v
	}

	desc := &MCPDescriptor{Server: server}

	switch {
	case hasKey(rest, "list"):
		listType := rest["list"]
		delete(rest, "list")
		switch listType {
		case "tools":
			desc.Type = OpListTools
		case "resources":
			desc.Type = OpListResources
		default:
			return nil, fmt.Errorf("invalid list type %q (want tools or resources)", listType)
		}
	case hasKey(rest, "resource"):
		desc.Type = OpReadResource
		desc.ResourceURI = rest["resource"]
		delete(rest, "resource")
	case hasKey(rest, "tool"):
		desc.Type = OpCallTool
		desc.Tool = rest["tool"]
		delete(rest, "tool")
	case leaf != "":
		desc.Type = OpCallTool
		desc.Tool = leaf
	default:
		desc.Type = OpListResources
	}

	if desc.Type == OpCallTool {
		rest = validateParams(refString(namespace, leaf), server, rest)
		args := make(map[string]any, len(rest))
		for k, v := range rest {
			args[k] = v
		}
		req := &mcp.CallToolRequest{}
		req.Params.Name = desc.Tool
		req.Params.Arguments = args
		desc.Request = req
	}

	desc.Params = rest
	return desc, nil
}

func hasKey(m map[string]string, key string) bool {
	_, ok := m[key]
	return ok
}
