package routing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spinachlang-api/internal/compiler"
)

func newTestSchema(t *testing.T, version string, c compiler.Compiler) graphql.Schema {
	t.Helper()

	schema, err := NewSchema(Options{
		Version: version,
		Adapter: compiler.NewAdapter(c, 0),
	})

	require.NoError(t, err)
	return schema
}

func execute(t *testing.T, schema graphql.Schema, query string, variables map[string]interface{}) *graphql.Result {
	t.Helper()

	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        context.Background(),
	})
}

func dataJSON(t *testing.T, result *graphql.Result) string {
	t.Helper()

	data, err := json.Marshal(result.Data)
	require.NoError(t, err)

	return string(data)
}

func TestNewSchemaRequiresAdapter(t *testing.T) {
	_, err := NewSchema(Options{Version: "1.0.0"})
	assert.Error(t, err)
}

func TestQueries(t *testing.T) {
	tests := []struct {
		name    string
		version string
		query   string
		want    string
	}{{
		name:  "should return the ping message",
		query: `{ ping }`,
		want:  `{"ping":"This is a spinachlang API."}`,
	}, {
		name:    "should return the configured version",
		version: "1.2.3",
		query:   `{ version }`,
		want:    `{"version":"1.2.3"}`,
	}, {
		name:    "should resolve both fields together",
		version: "unspecified",
		query:   `query { version ping }`,
		want:    `{"version":"unspecified","ping":"This is a spinachlang API."}`,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := execute(t, newTestSchema(t, tt.version, compiler.NoopCompiler{}), tt.query, nil)

			require.Empty(t, result.Errors)
			assert.JSONEq(t, tt.want, dataJSON(t, result))
		})
	}
}

const compileCodesMutation = `
mutation Compile($requests: [CompilationRequestInput!]!) {
	compile_codes(requests: $requests) {
		source
		results {
			target
			output
		}
	}
}`

func TestCompileCodesMutation(t *testing.T) {
	schema := newTestSchema(t, "", compiler.NoopCompiler{})

	t.Run("should compile the documented example", func(t *testing.T) {
		result := execute(t, schema, compileCodesMutation, map[string]interface{}{
			"requests": []interface{}{
				map[string]interface{}{"source": "let x = 1", "targets": []interface{}{"c", "go"}},
			},
		})

		require.Empty(t, result.Errors)
		assert.JSONEq(t, `{"compile_codes":[{"source":"let x = 1","results":[
			{"target":"c","output":"Compiled 'let x = 1' into 'c'"},
			{"target":"go","output":"Compiled 'let x = 1' into 'go'"}]}]}`, dataJSON(t, result))
	})

	t.Run("should accept inline arguments", func(t *testing.T) {
		result := execute(t, schema, `mutation {
			compile_codes(requests: [{source: "a", targets: []}, {source: "b", targets: ["c"]}]) {
				source
				results { target output }
			}
		}`, nil)

		require.Empty(t, result.Errors)
		assert.JSONEq(t, `{"compile_codes":[
			{"source":"a","results":[]},
			{"source":"b","results":[{"target":"c","output":"Compiled 'b' into 'c'"}]}]}`, dataJSON(t, result))
	})

	t.Run("should return an empty list for an empty batch", func(t *testing.T) {
		result := execute(t, schema, compileCodesMutation, map[string]interface{}{
			"requests": []interface{}{},
		})

		require.Empty(t, result.Errors)
		assert.JSONEq(t, `{"compile_codes":[]}`, dataJSON(t, result))
	})

	t.Run("should reject requests missing targets", func(t *testing.T) {
		result := execute(t, schema, compileCodesMutation, map[string]interface{}{
			"requests": []interface{}{map[string]interface{}{"source": "let x = 1"}},
		})

		assert.NotEmpty(t, result.Errors)
	})
}

func TestCompileCodesMutationFailure(t *testing.T) {
	failing := &failingCompiler{failOn: "rust"}
	schema := newTestSchema(t, "", failing)

	result := execute(t, schema, compileCodesMutation, map[string]interface{}{
		"requests": []interface{}{
			map[string]interface{}{"source": "ok", "targets": []interface{}{"c"}},
			map[string]interface{}{"source": "let x = 1", "targets": []interface{}{"rust", "go"}},
		},
	})

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "'rust'")

	// no partial results are returned for any request of the batch
	if data, ok := result.Data.(map[string]interface{}); ok {
		assert.Nil(t, data["compile_codes"])
	}

	assert.Equal(t, []string{"ok=>c", "let x = 1=>rust"}, failing.calls)
}
