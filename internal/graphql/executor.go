package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
)

// Request is a GraphQL-over-HTTP envelope.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Response is the execution result. Data is omitted when the request failed
// before execution (syntax, validation or variable errors).
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors gqlerror.List   `json:"errors,omitempty"`
}

// Executor runs queries against the fixed schema. It holds no per-request
// state and is safe for concurrent use.
type Executor struct {
	schema   *ast.Schema
	resolver Resolver
}

// NewExecutor loads the schema and binds it to resolver.
func NewExecutor(resolver Resolver) (*Executor, error) {
	if resolver == nil {
		return nil, errors.New("resolver is required")
	}
	schema, err := LoadSchema()
	if err != nil {
		return nil, err
	}
	return &Executor{schema: schema, resolver: resolver}, nil
}

// Execute parses, validates and executes req. Request-level failures are
// reported in Errors without Data; resolver failures null the field and add
// an error with its path.
func (e *Executor) Execute(ctx context.Context, req Request) *Response {
	doc, errs := gqlparser.LoadQuery(e.schema, req.Query)
	if len(errs) > 0 {
		return &Response{Errors: errs}
	}

	op, gerr := selectOperation(doc, req.OperationName)
	if gerr != nil {
		return &Response{Errors: gqlerror.List{gerr}}
	}
	if op.Operation != ast.Query {
		return &Response{Errors: gqlerror.List{gqlerror.Errorf("%s operations are not supported", op.Operation)}}
	}

	vars := req.Variables
	if vars == nil {
		vars = map[string]any{}
	}
	coerced, err := validator.VariableValues(e.schema, op, vars)
	if err != nil {
		return &Response{Errors: gqlerror.List{asGQLError(err)}}
	}

	fields := collectFields(doc, op.SelectionSet, coerced, nil, map[string]bool{})
	data, fieldErrs := e.executeFields(ctx, fields, coerced)
	return &Response{Data: data, Errors: fieldErrs}
}

func selectOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, *gqlerror.Error) {
	if name == "" {
		switch len(doc.Operations) {
		case 0:
			return nil, gqlerror.Errorf("no operation found in document")
		case 1:
			return doc.Operations[0], nil
		default:
			return nil, gqlerror.Errorf("operation name is required when the document contains multiple operations")
		}
	}
	for _, op := range doc.Operations {
		if op.Name == name {
			return op, nil
		}
	}
	return nil, gqlerror.Errorf("unknown operation named %q", name)
}

func asGQLError(err error) *gqlerror.Error {
	var gerr *gqlerror.Error
	if errors.As(err, &gerr) {
		return gerr
	}
	return gqlerror.Errorf("%s", err.Error())
}

// collectedField groups every field selected under one response key.
type collectedField struct {
	key    string
	fields []*ast.Field
}

func collectFields(doc *ast.QueryDocument, set ast.SelectionSet, vars map[string]any, out []*collectedField, visited map[string]bool) []*collectedField {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *ast.Field:
			if !shouldInclude(sel.Directives, vars) {
				continue
			}
			key := sel.Alias
			if key == "" {
				key = sel.Name
			}
			found := false
			for _, cf := range out {
				if cf.key == key {
					cf.fields = append(cf.fields, sel)
					found = true
					break
				}
			}
			if !found {
				out = append(out, &collectedField{key: key, fields: []*ast.Field{sel}})
			}
		case *ast.InlineFragment:
			if !shouldInclude(sel.Directives, vars) || !appliesToQuery(sel.TypeCondition) {
				continue
			}
			out = collectFields(doc, sel.SelectionSet, vars, out, visited)
		case *ast.FragmentSpread:
			if visited[sel.Name] || !shouldInclude(sel.Directives, vars) {
				continue
			}
			visited[sel.Name] = true
			def := sel.Definition
			if def == nil {
				def = doc.Fragments.ForName(sel.Name)
			}
			if def == nil || !appliesToQuery(def.TypeCondition) {
				continue
			}
			out = collectFields(doc, def.SelectionSet, vars, out, visited)
		}
	}
	return out
}

func appliesToQuery(typeCondition string) bool {
	return typeCondition == "" || typeCondition == "Query"
}

func shouldInclude(directives ast.DirectiveList, vars map[string]any) bool {
	if d := directives.ForName("skip"); d != nil {
		if skip, _ := d.ArgumentMap(vars)["if"].(bool); skip {
			return false
		}
	}
	if d := directives.ForName("include"); d != nil {
		if include, ok := d.ArgumentMap(vars)["if"].(bool); ok && !include {
			return false
		}
	}
	return true
}

func (e *Executor) executeFields(ctx context.Context, fields []*collectedField, vars map[string]any) (json.RawMessage, gqlerror.List) {
	var (
		buf  bytes.Buffer
		errs gqlerror.List
	)
	buf.WriteByte('{')
	for i, cf := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := marshal(cf.key)
		buf.Write(key)
		buf.WriteByte(':')

		value, err := e.resolveField(ctx, cf.fields[0], vars)
		if err != nil {
			errs = append(errs, fieldError(cf.key, cf.fields[0], err))
			buf.WriteString("null")
			continue
		}
		encoded, _ := marshal(value)
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), errs
}

// marshal encodes v without escaping <, > and &, which replies carrying code
// routinely contain.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func (e *Executor) resolveField(ctx context.Context, field *ast.Field, vars map[string]any) (string, error) {
	switch field.Name {
	case fieldAskDeepSeek:
		prompt, _ := field.ArgumentMap(vars)["prompt"].(string)
		return e.resolver.AskDeepSeek(ctx, prompt)
	case fieldTypename:
		return "Query", nil
	case fieldSchema, fieldType:
		return "", errors.New("introspection is not supported")
	default:
		return "", fmt.Errorf("cannot query field %q on type \"Query\"", field.Name)
	}
}

func fieldError(key string, field *ast.Field, err error) *gqlerror.Error {
	gerr := &gqlerror.Error{
		Message: err.Error(),
		Path:    ast.Path{ast.PathName(key)},
	}
	if field.Position != nil {
		gerr.Locations = []gqlerror.Location{{Line: field.Position.Line, Column: field.Position.Column}}
	}
	return gerr
}
