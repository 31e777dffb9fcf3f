/*
 Copyright 2023 NanaFS Authors.

 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package cel

import (
	"context"
	"time"

	goCEL "github.com/google/cel-go/cel"
	celTypes "github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/pkg/errors"

	"github.com/basenana/graphdump/pkg/types"
)

// Matcher is a compiled boolean expression over the attributes of one resource node.
// Variables: kind, id, name (strings), created_at, modified_at (unix seconds), now() (unix seconds).
type Matcher struct {
	pattern string
	prg     goCEL.Program
}

func newEnv() (*goCEL.Env, error) {
	envOpts := []goCEL.EnvOption{
		goCEL.Variable("kind", goCEL.StringType),
		goCEL.Variable("id", goCEL.StringType),
		goCEL.Variable("name", goCEL.StringType),
		goCEL.Variable("created_at", goCEL.IntType),
		goCEL.Variable("modified_at", goCEL.IntType),
	}

	envOpts = append(envOpts, goCEL.Function("now",
		goCEL.Overload("now", []*goCEL.Type{}, goCEL.IntType,
			goCEL.FunctionBinding(func(args ...ref.Val) ref.Val {
				return celTypes.Int(time.Now().Unix())
			}),
		),
	))
	return goCEL.NewEnv(envOpts...)
}

func Compile(pattern string) (*Matcher, error) {
	e, err := newEnv()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create CEL environment")
	}

	ast, issues := e.Compile(pattern)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Errorf("failed to compile filter %q: %v", pattern, issues.Err())
	}
	if !ast.OutputType().IsExactType(goCEL.BoolType) {
		return nil, errors.Errorf("filter %q must be a bool expression, got %s", pattern, ast.OutputType())
	}

	prg, err := e.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build program of %q", pattern)
	}
	return &Matcher{pattern: pattern, prg: prg}, nil
}

func (m *Matcher) Match(ctx context.Context, node types.NodeInfo) (bool, error) {
	vars := map[string]any{
		"kind":        string(node.Kind),
		"id":          node.ID,
		"name":        node.Name,
		"created_at":  node.CreatedAt.Unix(),
		"modified_at": node.ModifiedAt.Unix(),
	}

	out, _, err := m.prg.ContextEval(ctx, vars)
	if err != nil {
		return false, errors.Wrapf(err, "eval filter %q", m.pattern)
	}
	return out == celTypes.Bool(true), nil
}

func (m *Matcher) String() string {
	return m.pattern
}
