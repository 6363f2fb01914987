package swarm

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/tidwall/sjson"
)

// Tool is one entry of Agent.Functions: a *Function, a *DescribedFunction or
// a BuiltinTool.
type Tool interface {
	isTool()
}

// Function is a locally executed tool.
type Function struct {
	Name        string
	Description string

	params       *jsonschema.Schema
	wantsContext bool
	call         func(ctx context.Context, args []byte, cv ContextVariables) (any, error)
}

func (*Function) isTool() {}

// Parameters returns the reflected or declared parameter schema.
func (f *Function) Parameters() *jsonschema.Schema { return f.params }

// AcceptsContextVariables reports whether the current context variables are
// injected into this function's arguments.
func (f *Function) AcceptsContextVariables() bool { return f.wantsContext }

var reflector = jsonschema.Reflector{
	DoNotReference: true,
	Anonymous:      true,
}

// NewFunction builds a tool whose JSON arguments decode into T, normally a
// struct. Its parameter schema is reflected from T using json and jsonschema
// struct tags. A field tagged `json:"context_variables"` of type
// ContextVariables receives the current context variables on each call.
//
// NewFunction panics if T is not a struct or a string-keyed map (or a pointer
// to one), since tool parameters must be a JSON object.
func NewFunction[T any](name, description string, fn func(ctx context.Context, args T) (any, error)) *Function {
	t := reflect.TypeFor[T]()
	if !isObjectType(t) {
		panic(fmt.Sprintf("swarm: NewFunction(%q): argument type %v is not a struct or map", name, t))
	}
	schema := reflector.ReflectFromType(t)
	schema.Version = ""
	ctxField := contextField(t)
	return &Function{
		Name:         name,
		Description:  description,
		params:       schema,
		wantsContext: ctxField != nil,
		call: func(ctx context.Context, raw []byte, cv ContextVariables) (any, error) {
			var args T
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformedArguments, name, err)
			}
			if ctxField != nil {
				f := reflect.ValueOf(&args).Elem().FieldByIndex(ctxField)
				f.Set(reflect.ValueOf(cv.Clone()).Convert(f.Type()))
			}
			return fn(ctx, args)
		},
	}
}

func isObjectType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct:
		return true
	case reflect.Map:
		return t.Key().Kind() == reflect.String
	}
	return false
}

// NewAction builds a tool that takes no parameters.
func NewAction(name, description string, fn func(ctx context.Context) (any, error)) *Function {
	return &Function{
		Name:        name,
		Description: description,
		params:      &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties(), Required: []string{}},
		call: func(ctx context.Context, _ []byte, _ ContextVariables) (any, error) {
			return fn(ctx)
		},
	}
}

// NewRawFunction builds a tool that receives its arguments as a JSON object.
// When params declares a context_variables property, the current context
// variables are set under that key before fn is called.
func NewRawFunction(name, description string, params *jsonschema.Schema, fn func(ctx context.Context, args json.RawMessage) (any, error)) *Function {
	wants := false
	if params != nil && params.Properties != nil {
		_, wants = params.Properties.Get(ContextVariablesKey)
	}
	return &Function{
		Name:         name,
		Description:  description,
		params:       params,
		wantsContext: wants,
		call: func(ctx context.Context, raw []byte, cv ContextVariables) (any, error) {
			if wants {
				var err error
				if raw, err = sjson.SetBytes(raw, ContextVariablesKey, map[string]any(cv.Clone())); err != nil {
					return nil, fmt.Errorf("%w: %s: %v", ErrMalformedArguments, name, err)
				}
			}
			return fn(ctx, raw)
		},
	}
}

// contextField returns the index path of the top-level field tagged
// context_variables, or nil.
func contextField(t reflect.Type) []int {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	cvType := reflect.TypeOf(ContextVariables(nil))
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == ContextVariablesKey && cvType.ConvertibleTo(f.Type) {
			return f.Index
		}
	}
	return nil
}

// DescribedFunction pairs a function with the description and parameter
// schema the model is shown, independent of how the function is implemented.
type DescribedFunction struct {
	Target      *Function
	Description string
	// Parameters replaces the target's schema when set. It is passed through
	// as-is apart from removal of the context_variables key.
	Parameters *jsonschema.Schema
}

func (*DescribedFunction) isTool() {}

// Describe wraps fn with an explicit description and parameter schema.
func Describe(fn *Function, description string, parameters *jsonschema.Schema) *DescribedFunction {
	return &DescribedFunction{Target: fn, Description: description, Parameters: parameters}
}

// BuiltinTool is a provider-executed tool declaration such as
// web_search_preview or file_search. It is sent as-is and never dispatched
// locally.
type BuiltinTool struct {
	Type    string
	Options map[string]any
}

func (BuiltinTool) isTool() {}

// invocable resolves t to the function that runs it, or nil for builtin tools.
func invocable(t Tool) *Function {
	switch v := t.(type) {
	case *Function:
		return v
	case *DescribedFunction:
		return v.Target
	default:
		return nil
	}
}
