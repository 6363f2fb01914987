package swarm

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ToolSchema is the JSON description of a tool sent to the completion service.
type ToolSchema struct {
	Type        string
	Name        string
	Description string
	Parameters  *jsonschema.Schema

	builtin map[string]any
}

func (s ToolSchema) MarshalJSON() ([]byte, error) {
	if s.builtin != nil {
		return json.Marshal(s.builtin)
	}
	out := map[string]any{
		"type":        s.Type,
		"name":        s.Name,
		"description": s.Description,
	}
	if s.Parameters != nil {
		out["parameters"] = s.Parameters
	}
	return json.Marshal(out)
}

// ToolSchemaFor describes t for the model. Function parameter schemas never
// include the context_variables key.
func ToolSchemaFor(t Tool) (ToolSchema, error) {
	switch v := t.(type) {
	case *Function:
		if v == nil || v.Name == "" {
			return ToolSchema{}, errors.New("swarm: function without a name")
		}
		return ToolSchema{Type: "function", Name: v.Name, Description: v.Description, Parameters: hideContextVariables(v.params)}, nil
	case *DescribedFunction:
		if v == nil || v.Target == nil || v.Target.Name == "" {
			return ToolSchema{}, errors.New("swarm: described function without a target")
		}
		params := v.Parameters
		if params == nil {
			params = v.Target.params
		}
		return ToolSchema{Type: "function", Name: v.Target.Name, Description: v.Description, Parameters: hideContextVariables(params)}, nil
	case BuiltinTool:
		if v.Type == "" {
			return ToolSchema{}, errors.New("swarm: builtin tool without a type")
		}
		decl := make(map[string]any, len(v.Options)+1)
		maps.Copy(decl, v.Options)
		decl["type"] = v.Type
		return ToolSchema{Type: v.Type, builtin: decl}, nil
	default:
		return ToolSchema{}, fmt.Errorf("swarm: unsupported tool %T", t)
	}
}

// hideContextVariables returns a copy of s without the context_variables
// property or requirement. s itself is left untouched.
func hideContextVariables(s *jsonschema.Schema) *jsonschema.Schema {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Properties != nil {
		props := orderedmap.New[string, *jsonschema.Schema](s.Properties.Len())
		for p := s.Properties.Oldest(); p != nil; p = p.Next() {
			if p.Key != ContextVariablesKey {
				props.Set(p.Key, p.Value)
			}
		}
		cp.Properties = props
	}
	if s.Required != nil {
		cp.Required = slices.DeleteFunc(slices.Clone(s.Required), func(k string) bool { return k == ContextVariablesKey })
	}
	return &cp
}
