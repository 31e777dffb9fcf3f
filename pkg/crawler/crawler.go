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

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/basenana/graphdump/pkg/collection"
	"github.com/basenana/graphdump/pkg/graph"
	"github.com/basenana/graphdump/pkg/types"
	"github.com/basenana/graphdump/utils"
	"github.com/basenana/graphdump/utils/logger"
)

// Crawler walks the OneNote and To Do hierarchies depth first.
// Every listing is drained before the crawler descends into its children, one request at a time.
type Crawler struct {
	fetcher    collection.Fetcher
	endpoints  graph.Endpoints
	filter     Filter
	onProgress ProgressFunc
	logger     *zap.SugaredLogger
}

type Option func(c *Crawler)

func WithFilter(f Filter) Option {
	return func(c *Crawler) {
		if f != nil {
			c.filter = f
		}
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(c *Crawler) {
		c.onProgress = fn
	}
}

func New(fetcher collection.Fetcher, endpoints graph.Endpoints, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:   fetcher,
		endpoints: endpoints,
		filter:    AllowAll,
		logger:    logger.NewLogger("crawler"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CrawlNotebooks returns every retained notebook with its sections and pages.
// Only a failure listing the notebooks themselves is returned as an error.
func (c *Crawler) CrawlNotebooks(ctx context.Context) (*types.OneNoteResult, error) {
	defer utils.TraceRegion(ctx, "crawler.notebooks")()
	state := c.newState()

	rootURL := c.endpoints.Notebooks()
	notebooks, err := collection.List[types.Notebook](ctx, c.fetcher, rootURL)
	if err != nil {
		return nil, errors.Wrap(err, "list notebooks failed")
	}

	result := &types.OneNoteResult{Notebooks: make([]types.NotebookExport, 0, len(notebooks)), Sections: make([]types.SectionExport, 0)}
	for _, nb := range notebooks {
		if ctx.Err() != nil {
			break
		}
		if !c.keep(ctx, state, nb.Node()) {
			continue
		}
		result.Notebooks = append(result.Notebooks, c.crawlNotebook(ctx, state, rootURL, nb))
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	result.Failures = state.failures
	c.logger.Infow("notebooks crawled", "notebooks", state.progress.Notebooks, "sections", state.progress.Sections,
		"pages", state.progress.Pages, "skipped", state.progress.Skipped, "branchFailures", state.progress.BranchFailures)
	return result, nil
}

// CrawlSections lists every section of the user with its pages, without the notebook level.
func (c *Crawler) CrawlSections(ctx context.Context) (*types.OneNoteResult, error) {
	defer utils.TraceRegion(ctx, "crawler.sections")()
	state := c.newState()

	rootURL := c.endpoints.Sections()
	sections, err := collection.List[types.Section](ctx, c.fetcher, rootURL)
	if err != nil {
		return nil, errors.Wrap(err, "list sections failed")
	}

	result := &types.OneNoteResult{Notebooks: make([]types.NotebookExport, 0), Sections: make([]types.SectionExport, 0, len(sections))}
	for _, s := range sections {
		if ctx.Err() != nil {
			break
		}
		if !c.keep(ctx, state, s.Node()) {
			continue
		}
		result.Sections = append(result.Sections, c.crawlSection(ctx, state, rootURL, s, ""))
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	result.Failures = state.failures
	c.logger.Infow("sections crawled", "sections", state.progress.Sections, "pages", state.progress.Pages,
		"skipped", state.progress.Skipped, "branchFailures", state.progress.BranchFailures)
	return result, nil
}

// CrawlTaskLists returns every retained task list with all of its tasks.
func (c *Crawler) CrawlTaskLists(ctx context.Context) (*types.TodoResult, error) {
	defer utils.TraceRegion(ctx, "crawler.tasklists")()
	state := c.newState()

	rootURL := c.endpoints.TodoLists()
	lists, err := collection.List[types.TodoTaskList](ctx, c.fetcher, rootURL)
	if err != nil {
		return nil, errors.Wrap(err, "list task lists failed")
	}

	result := &types.TodoResult{Lists: make([]types.TaskListExport, 0, len(lists))}
	for _, l := range lists {
		if ctx.Err() != nil {
			break
		}
		if !c.keep(ctx, state, l.Node()) {
			continue
		}
		result.Lists = append(result.Lists, c.crawlTaskList(ctx, state, rootURL, l))
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	result.Failures = state.failures
	c.logger.Infow("task lists crawled", "lists", state.progress.Lists, "tasks", state.progress.Tasks,
		"skipped", state.progress.Skipped, "branchFailures", state.progress.BranchFailures)
	return result, nil
}

func (c *Crawler) crawlNotebook(ctx context.Context, state *crawlState, sourceURL string, nb types.Notebook) types.NotebookExport {
	defer utils.TraceRegion(ctx, "crawler.notebook")()
	state.progress.Notebooks++
	crawledNodeCounter.WithLabelValues(string(types.NotebookKind)).Inc()

	direct := c.listSections(ctx, state, nb.Node(), c.endpoints.NotebookSections(nb.ID), nb.DisplayName)
	grouped := c.listSectionGroups(ctx, state, nb.Node(), c.endpoints.NotebookSectionGroups(nb.ID))

	return types.NotebookExport{
		SourceURL:            sourceURL,
		ID:                   nb.ID,
		DisplayName:          nb.DisplayName,
		CreatedDateTime:      nb.CreatedDateTime,
		LastModifiedDateTime: nb.LastModifiedDateTime,
		Sections:             append(direct, grouped...),
	}
}

// listSectionGroups returns the sections of every retained group below parent,
// a group's own sections come before the sections of its nested groups.
func (c *Crawler) listSectionGroups(ctx context.Context, state *crawlState, parent types.NodeInfo, url string) []types.SectionExport {
	result := make([]types.SectionExport, 0)
	groups, err := collection.List[types.SectionGroup](ctx, c.fetcher, url)
	if err != nil {
		c.branchFailed(ctx, state, parent, url, err)
		return result
	}

	for _, g := range groups {
		if ctx.Err() != nil {
			break
		}
		if !c.keep(ctx, state, g.Node()) {
			continue
		}
		crawledNodeCounter.WithLabelValues(string(types.SectionGroupKind)).Inc()
		result = append(result, c.listSections(ctx, state, g.Node(), c.endpoints.SectionGroupSections(g.ID), g.DisplayName)...)
		result = append(result, c.listSectionGroups(ctx, state, g.Node(), c.endpoints.SectionGroupSectionGroups(g.ID))...)
	}
	return result
}

func (c *Crawler) listSections(ctx context.Context, state *crawlState, parent types.NodeInfo, url, parentName string) []types.SectionExport {
	result := make([]types.SectionExport, 0)
	sections, err := collection.List[types.Section](ctx, c.fetcher, url)
	if err != nil {
		c.branchFailed(ctx, state, parent, url, err)
		return result
	}

	for _, s := range sections {
		if ctx.Err() != nil {
			break
		}
		if !c.keep(ctx, state, s.Node()) {
			continue
		}
		result = append(result, c.crawlSection(ctx, state, url, s, parentName))
	}
	return result
}

func (c *Crawler) crawlSection(ctx context.Context, state *crawlState, sourceURL string, s types.Section, parentName string) types.SectionExport {
	defer utils.TraceRegion(ctx, "crawler.section")()
	state.progress.Sections++
	crawledNodeCounter.WithLabelValues(string(types.SectionKind)).Inc()

	export := types.SectionExport{
		SourceURL:            sourceURL,
		ID:                   s.ID,
		DisplayName:          s.DisplayName,
		CreatedDateTime:      s.CreatedDateTime,
		LastModifiedDateTime: s.LastModifiedDateTime,
		ParentName:           sectionParentName(s, parentName),
		Pages:                make([]types.PageExport, 0),
	}

	pagesURL := c.endpoints.SectionPages(s.ID)
	pages, err := collection.List[types.Page](ctx, c.fetcher, pagesURL)
	if err != nil {
		c.branchFailed(ctx, state, s.Node(), pagesURL, err)
		return export
	}

	for _, p := range pages {
		export.Pages = append(export.Pages, types.PageExport{
			SourceURL:            pagesURL,
			ID:                   p.ID,
			Title:                p.Title,
			ContentURL:           p.ContentURL,
			CreatedDateTime:      p.CreatedDateTime,
			LastModifiedDateTime: p.LastModifiedDateTime,
		})
		state.progress.Pages++
		state.report(types.NodeInfo{Kind: types.PageKind, ID: p.ID, Name: p.Title})
	}
	crawledNodeCounter.WithLabelValues(string(types.PageKind)).Add(float64(len(pages)))
	return export
}

func (c *Crawler) crawlTaskList(ctx context.Context, state *crawlState, sourceURL string, l types.TodoTaskList) types.TaskListExport {
	defer utils.TraceRegion(ctx, "crawler.tasklist")()
	state.progress.Lists++
	crawledNodeCounter.WithLabelValues(string(types.TaskListKind)).Inc()

	export := types.TaskListExport{
		SourceURL:         sourceURL,
		DisplayName:       l.DisplayName,
		ID:                l.ID,
		WellknownListName: l.WellknownListName,
		Children:          make([]types.TodoTask, 0),
	}

	tasksURL := c.endpoints.TodoTasks(l.ID)
	tasks, err := collection.List[types.TodoTask](ctx, c.fetcher, tasksURL)
	if err != nil {
		c.branchFailed(ctx, state, l.Node(), tasksURL, err)
		return export
	}

	export.Children = append(export.Children, tasks...)
	state.progress.Tasks += len(tasks)
	crawledNodeCounter.WithLabelValues(string(types.TaskKind)).Add(float64(len(tasks)))
	state.report(l.Node())
	return export
}

// keep applies the filter, a filter that cannot be evaluated skips the node.
func (c *Crawler) keep(ctx context.Context, state *crawlState, node types.NodeInfo) bool {
	matched, err := c.filter.Match(ctx, node)
	if err != nil {
		utils.ContextLog(ctx, c.logger).Warnw("filter node failed, skip it", "kind", node.Kind, "id", node.ID, "name", node.Name, "err", err)
	}
	if err != nil || !matched {
		state.progress.Skipped++
		skippedNodeCounter.WithLabelValues(string(node.Kind)).Inc()
		return false
	}
	return true
}

// branchFailed records a listing failure below the root, a canceled crawl is not a branch failure.
func (c *Crawler) branchFailed(ctx context.Context, state *crawlState, node types.NodeInfo, url string, err error) {
	if ctx.Err() != nil {
		return
	}
	bf := state.fail(node, url, err)
	branchFailureCounter.WithLabelValues(string(node.Kind)).Inc()
	utils.ContextLog(ctx, c.logger).Warnw("list children failed, branch left empty", "kind", bf.Kind, "id", bf.ID, "name", bf.Name, "url", url, "err", err)
}

func (c *Crawler) newState() *crawlState {
	return &crawlState{onProgress: c.onProgress}
}

func sectionParentName(s types.Section, fallback string) string {
	switch {
	case s.ParentSectionGroup != nil && s.ParentSectionGroup.DisplayName != "":
		return s.ParentSectionGroup.DisplayName
	case s.ParentNotebook != nil && s.ParentNotebook.DisplayName != "":
		return s.ParentNotebook.DisplayName
	default:
		return fallback
	}
}
