package graphql

import (
	"context"
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// SchemaSDL is the whole public API: one query field that forwards a prompt
// to the chat-completion upstream.
const SchemaSDL = `type Query {
  askDeepSeek(prompt: String!): String!
}
`

// Field names served by the executor.
const (
	fieldAskDeepSeek = "askDeepSeek"
	fieldTypename    = "__typename"
	fieldSchema      = "__schema"
	fieldType        = "__type"
)

// Resolver produces the value of askDeepSeek.
type Resolver interface {
	AskDeepSeek(ctx context.Context, prompt string) (string, error)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(ctx context.Context, prompt string) (string, error)

func (f ResolverFunc) AskDeepSeek(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// LoadSchema parses SchemaSDL.
func LoadSchema() (*ast.Schema, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: SchemaSDL})
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return schema, nil
}
