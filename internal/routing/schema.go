package routing

import (
	"github.com/graphql-go/graphql"
	"github.com/pkg/errors"
)

// PingMessage is the fixed response of the ping query used for health checks.
const PingMessage = "This is a spinachlang API."

// Options are the values the schema is built from. They are resolved once at
// startup and never change for the lifetime of the schema.
type Options struct {
	// The version reported by the version query.
	Version string
	// The adapter used by the compile_codes mutation.
	Adapter Adapter
}

func newCompilationResultType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        "CompilationResult",
		Description: "The output of compiling a source into a single target.",
		Fields: graphql.Fields{
			"target": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return resolveResult(p, func(r CompilationResult) string { return r.Target })
				},
			},
			"output": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return resolveResult(p, func(r CompilationResult) string { return r.Output })
				},
			},
		},
	})
}

func newCodeCompilationType(resultType *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        "CodeCompilation",
		Description: "The results of compiling one source into each of its targets.",
		Fields: graphql.Fields{
			"source": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					compilation, ok := p.Source.(CodeCompilation)
					if !ok {
						return nil, errors.Errorf("unexpected source %T", p.Source)
					}

					return compilation.Source, nil
				},
			},
			"results": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(resultType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					compilation, ok := p.Source.(CodeCompilation)
					if !ok {
						return nil, errors.Errorf("unexpected source %T", p.Source)
					}

					return compilation.Results, nil
				},
			},
		},
	})
}

func newCompilationRequestInputType() *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        "CompilationRequestInput",
		Description: "A source and the targets it should be compiled into.",
		Fields: graphql.InputObjectConfigFieldMap{
			"source": &graphql.InputObjectFieldConfig{
				Type: graphql.NewNonNull(graphql.String),
			},
			"targets": &graphql.InputObjectFieldConfig{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
			},
		},
	})
}

func resolveResult(p graphql.ResolveParams, field func(CompilationResult) string) (interface{}, error) {
	result, ok := p.Source.(CompilationResult)
	if !ok {
		return nil, errors.Errorf("unexpected source %T", p.Source)
	}

	return field(result), nil
}

// NewSchema builds the GraphQL schema exposing the version and ping queries
// and the compile_codes mutation.
func NewSchema(opts Options) (graphql.Schema, error) {
	if opts.Adapter == nil {
		return graphql.Schema{}, errors.New("an adapter is required to build the schema")
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"version": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "The version of the running API.",
				Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
					return opts.Version, nil
				},
			},
			"ping": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
					return PingMessage, nil
				},
			},
		},
	})

	codeCompilationType := newCodeCompilationType(newCompilationResultType())
	compilationRequestInputType := newCompilationRequestInputType()

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"compile_codes": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(codeCompilationType))),
				Description: "Compile spinach code into other languages.",
				Args: graphql.FieldConfigArgument{
					"requests": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(compilationRequestInputType))),
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					requests, err := decodeRequests(p.Args["requests"])
					if err != nil {
						return nil, err
					}

					return CompileCodes(p.Context, opts.Adapter, requests)
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})

	return schema, errors.Wrap(err, "failed to build schema")
}

// decodeRequests converts the coerced requests argument into the request
// model. The shapes are guaranteed by the input type, anything else is a bug.
func decodeRequests(raw interface{}) ([]CompilationRequest, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, errors.Errorf("unexpected requests argument %T", raw)
	}

	requests := make([]CompilationRequest, 0, len(items))

	for _, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("unexpected request %T", item)
		}

		source, _ := fields["source"].(string)
		rawTargets, _ := fields["targets"].([]interface{})

		targets := make([]string, 0, len(rawTargets))

		for _, t := range rawTargets {
			target, ok := t.(string)
			if !ok {
				return nil, errors.Errorf("unexpected target %T", t)
			}

			targets = append(targets, target)
		}

		requests = append(requests, CompilationRequest{Source: source, Targets: targets})
	}

	return requests, nil
}
