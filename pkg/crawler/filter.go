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

package crawler

import (
	"context"
	"path/filepath"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/pkg/cel"
	"github.com/basenana/graphdump/pkg/types"
)

// Filter decides whether the crawler descends into a branch.
type Filter interface {
	Match(ctx context.Context, node types.NodeInfo) (bool, error)
}

type FilterFunc func(ctx context.Context, node types.NodeInfo) (bool, error)

func (f FilterFunc) Match(ctx context.Context, node types.NodeInfo) (bool, error) {
	return f(ctx, node)
}

var AllowAll Filter = FilterFunc(func(ctx context.Context, node types.NodeInfo) (bool, error) {
	return true, nil
})

// NameFilter matches display names against include and exclude globs.
// Exclude wins, an empty include list keeps everything not excluded.
// Nodes whose kind is not in Kinds pass untouched, an empty Kinds applies to every kind.
type NameFilter struct {
	Include []string
	Exclude []string
	Kinds   map[types.NodeKind]struct{}
}

func NewNameFilter(include, exclude, kinds []string) *NameFilter {
	f := &NameFilter{Include: include, Exclude: exclude, Kinds: map[types.NodeKind]struct{}{}}
	for _, k := range kinds {
		f.Kinds[types.NodeKind(k)] = struct{}{}
	}
	return f
}

func (f *NameFilter) Match(ctx context.Context, node types.NodeInfo) (bool, error) {
	if len(f.Kinds) > 0 {
		if _, ok := f.Kinds[node.Kind]; !ok {
			return true, nil
		}
	}
	for _, pattern := range f.Exclude {
		matched, err := filepath.Match(pattern, node.Name)
		if err != nil {
			return false, err
		}
		if matched {
			return false, nil
		}
	}
	if len(f.Include) == 0 {
		return true, nil
	}
	for _, pattern := range f.Include {
		matched, err := filepath.Match(pattern, node.Name)
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

type CELFilter struct {
	matcher *cel.Matcher
}

func NewCELFilter(expr string) (*CELFilter, error) {
	m, err := cel.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &CELFilter{matcher: m}, nil
}

func (f *CELFilter) Match(ctx context.Context, node types.NodeInfo) (bool, error) {
	return f.matcher.Match(ctx, node)
}

// allOf keeps a node only when every filter keeps it.
type allOf []Filter

func (a allOf) Match(ctx context.Context, node types.NodeInfo) (bool, error) {
	for _, f := range a {
		matched, err := f.Match(ctx, node)
		if err != nil || !matched {
			return false, err
		}
	}
	return true, nil
}

// BuildFilter turns the filter config into one Filter, CEL expressions are compiled here once.
func BuildFilter(cfg config.Filter) (Filter, error) {
	var filters allOf
	if len(cfg.Include) > 0 || len(cfg.Exclude) > 0 {
		filters = append(filters, NewNameFilter(cfg.Include, cfg.Exclude, cfg.Kinds))
	}
	if cfg.CEL != "" {
		f, err := NewCELFilter(cfg.CEL)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	switch len(filters) {
	case 0:
		return AllowAll, nil
	case 1:
		return filters[0], nil
	default:
		return filters, nil
	}
}
