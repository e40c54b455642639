package cel

import (
	"path/filepath"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/Sentinel-Gate/invoke-core/internal/domain/invoke"
)

// NewAffinityEnvironment creates a CEL environment for evaluating a
// weak-affinity routing expression (SPEC_FULL "Affinity" component). It
// exposes the invocation's identity and the caller-populated ContextData
// as CEL variables, plus two helpers for reaching into context_data
// without the caller pre-flattening it.
//
//   - namespace, identity: the Locator being invoked
//   - method_name: the MethodDescriptor's Name
//   - method_params: the MethodDescriptor's ParameterTypes
//   - attempt: the receiver attempt count (0 on the first try)
//   - context_data: the caller's ContextData, as a plain map
//
// Custom functions:
//   - glob(pattern, value): shell-style glob match
//   - context_arg(context_data, key): value lookup that tolerates a
//     CEL-native map or a plain Go map
//   - context_contains(context_data, substr): true if any string value in
//     context_data contains substr
func NewAffinityEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		ext.Strings(),
		ext.Sets(),

		cel.Variable("namespace", cel.StringType),
		cel.Variable("identity", cel.StringType),
		cel.Variable("method_name", cel.StringType),
		cel.Variable("method_params", cel.ListType(cel.StringType)),
		cel.Variable("attempt", cel.IntType),
		cel.Variable("context_data", cel.MapType(cel.StringType, cel.DynType)),

		cel.Function("glob",
			cel.Overload("glob_string_string",
				[]*cel.Type{cel.StringType, cel.StringType},
				cel.BoolType,
				cel.BinaryBinding(func(pattern, value ref.Val) ref.Val {
					p := pattern.Value().(string)
					v := value.Value().(string)
					matched, _ := filepath.Match(p, v)
					return types.Bool(matched)
				}),
			),
		),

		cel.Function("context_arg",
			cel.Overload("context_arg_map_string",
				[]*cel.Type{cel.MapType(cel.StringType, cel.DynType), cel.StringType},
				cel.DynType,
				cel.BinaryBinding(func(mapVal, keyVal ref.Val) ref.Val {
					key := keyVal.Value().(string)
					if m, ok := mapVal.Value().(map[ref.Val]ref.Val); ok {
						if v, found := m[types.String(key)]; found {
							return v
						}
						return types.NullValue
					}
					if goMap, ok := mapVal.Value().(map[string]any); ok {
						if v, found := goMap[key]; found {
							return types.DefaultTypeAdapter.NativeToValue(v)
						}
					}
					return types.NullValue
				}),
			),
		),

		cel.Function("context_contains",
			cel.Overload("context_contains_map_string",
				[]*cel.Type{cel.MapType(cel.StringType, cel.DynType), cel.StringType},
				cel.BoolType,
				cel.BinaryBinding(func(mapVal, substrVal ref.Val) ref.Val {
					substr := substrVal.Value().(string)
					switch m := mapVal.Value().(type) {
					case map[string]any:
						for _, v := range m {
							if s, ok := v.(string); ok && strings.Contains(s, substr) {
								return types.Bool(true)
							}
						}
					case map[ref.Val]ref.Val:
						for _, v := range m {
							if s, ok := v.Value().(string); ok && strings.Contains(s, substr) {
								return types.Bool(true)
							}
						}
					}
					return types.Bool(false)
				}),
			),
		),
	)
}

// AffinityActivation is the evaluation-time input built from an
// InvocationContext: the routing expression only ever sees values the
// caller itself placed in ContextData, plus the invocation's identity.
type AffinityActivation struct {
	Locator     invoke.Locator
	Method      invoke.MethodDescriptor
	Attempt     int
	ContextData *invoke.ContextData
}

// BuildAffinityActivation flattens an AffinityActivation into the map
// form cel.Program.ContextEval expects.
func BuildAffinityActivation(a AffinityActivation) map[string]any {
	data := map[string]any{}
	if a.ContextData != nil {
		for _, k := range a.ContextData.Keys() {
			if v, ok := a.ContextData.Get(k); ok {
				data[k] = v
			}
		}
	}
	params := a.Method.ParameterTypes
	if params == nil {
		params = []string{}
	}
	return map[string]any{
		"namespace":     a.Locator.Namespace,
		"identity":      a.Locator.Identity,
		"method_name":   a.Method.Name,
		"method_params": params,
		"attempt":       int64(a.Attempt),
		"context_data":  data,
	}
}
