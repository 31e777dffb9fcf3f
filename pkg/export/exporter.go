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

package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/pkg/collection"
	"github.com/basenana/graphdump/pkg/convert"
	"github.com/basenana/graphdump/pkg/crawler"
	"github.com/basenana/graphdump/pkg/downloader"
	"github.com/basenana/graphdump/pkg/graph"
	"github.com/basenana/graphdump/pkg/ledger"
	"github.com/basenana/graphdump/pkg/storage"
	"github.com/basenana/graphdump/pkg/types"
	"github.com/basenana/graphdump/utils"
	"github.com/basenana/graphdump/utils/logger"
)

const (
	urlsKey     = "urls"
	markdownDir = "markdown"
)

// Client is the upstream the exporter reads from, *graph.Client in production.
type Client interface {
	collection.Fetcher
	downloader.ContentFetcher
}

type Exporter struct {
	cfg        config.Config
	crawler    *crawler.Crawler
	downloader *downloader.Downloader
	store      storage.Storage
	runID      string
	logger     *zap.SugaredLogger
}

type Option func(o *options)

type options struct {
	progress crawler.ProgressFunc
	onRound  func(round int, failed map[string]types.DownloadTarget)
	runID    string
}

func WithProgress(fn crawler.ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

func WithRoundObserver(fn func(round int, failed map[string]types.DownloadTarget)) Option {
	return func(o *options) {
		o.onRound = fn
	}
}

func WithRunID(runID string) Option {
	return func(o *options) {
		o.runID = runID
	}
}

// New builds the crawler and downloader of one run. The ledger may be nil.
func New(cfg config.Config, client Client, endpoints graph.Endpoints, store storage.Storage, l ledger.Ledger, opts ...Option) (*Exporter, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.runID == "" {
		o.runID = utils.GenerateRunID()
	}

	filter, err := crawler.BuildFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}

	e := &Exporter{
		cfg:     cfg,
		crawler: crawler.New(client, endpoints, crawler.WithFilter(filter), crawler.WithProgress(o.progress)),
		store:   store,
		runID:   o.runID,
		logger:  logger.NewLogger("export").With("run", o.runID),
	}
	if cfg.Download.Enable {
		dOpts := []downloader.Option{
			downloader.WithRunID(o.runID),
			downloader.WithPolicy(downloader.Policy{
				MaxRounds: cfg.Download.MaxRounds,
				Delay:     time.Duration(cfg.Download.DelayMs) * time.Millisecond,
				MaxDelay:  time.Duration(cfg.Download.MaxDelayMs) * time.Millisecond,
				OnRound:   o.onRound,
			}),
		}
		if l != nil {
			dOpts = append(dOpts, downloader.WithLedger(l))
		}
		e.downloader = downloader.New(client, store, dOpts...)
	}
	return e, nil
}

func (e *Exporter) RunID() string {
	return e.runID
}

// ExportTodo writes every task list with its tasks into the todo snapshot.
func (e *Exporter) ExportTodo(ctx context.Context) (*types.TodoSnapshot, error) {
	ctx, endTask := utils.TraceTask(utils.WithRunID(ctx, e.runID), "export.todo")
	defer endTask()
	defer e.pushMetrics(ctx)

	result, err := e.crawler.CrawlTaskLists(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &types.TodoSnapshot{
		RunID:      e.runID,
		ExportedAt: time.Now().UTC(),
		Digest:     utils.ComputeStructHash(result.Lists),
		Lists:      result.Lists,
	}
	snapshot.Partial, snapshot.Warnings = warningsOf(result.Failures)
	e.compareDigest(ctx, TodoSnapshotName, snapshot.Digest)

	key, err := writeSnapshot(ctx, e.store, TodoSnapshotName, e.cfg.Output.Compress, snapshot)
	if err != nil {
		return nil, err
	}
	exportedItemCounter.WithLabelValues(string(types.TaskListKind)).Add(float64(len(result.Lists)))
	exportedItemCounter.WithLabelValues(string(types.TaskKind)).Add(float64(result.TaskCount()))
	e.logPartial(TodoSnapshotName, snapshot.Partial, snapshot.Warnings)
	e.logger.Infow("todo exported", "key", key, "lists", len(result.Lists), "tasks", result.TaskCount())
	return snapshot, nil
}

// ExportOneNote writes the onenote snapshot and the urls file, then downloads and converts page content.
// A download partial failure is returned after everything else has been written.
func (e *Exporter) ExportOneNote(ctx context.Context) (*types.OneNoteSnapshot, error) {
	ctx, endTask := utils.TraceTask(utils.WithRunID(ctx, e.runID), "export.onenote")
	defer endTask()
	defer e.pushMetrics(ctx)

	var (
		result *types.OneNoteResult
		err    error
	)
	if e.cfg.Output.SectionsOnly {
		result, err = e.crawler.CrawlSections(ctx)
	} else {
		result, err = e.crawler.CrawlNotebooks(ctx)
	}
	if err != nil {
		return nil, err
	}

	snapshot := &types.OneNoteSnapshot{
		RunID:      e.runID,
		ExportedAt: time.Now().UTC(),
		Digest:     utils.ComputeStructHash([]any{result.Notebooks, result.Sections}),
		Notebooks:  result.Notebooks,
		Sections:   result.Sections,
	}
	snapshot.Partial, snapshot.Warnings = warningsOf(result.Failures)
	e.compareDigest(ctx, OneNoteSnapshotName, snapshot.Digest)

	key, err := writeSnapshot(ctx, e.store, OneNoteSnapshotName, e.cfg.Output.Compress, snapshot)
	if err != nil {
		return nil, err
	}
	if err = e.store.Put(ctx, urlsKey, strings.NewReader(strings.Join(result.ContentURLs(), "\n"))); err != nil {
		return nil, errors.Wrap(err, "write urls failed")
	}
	exportedItemCounter.WithLabelValues(string(types.NotebookKind)).Add(float64(len(result.Notebooks)))
	exportedItemCounter.WithLabelValues(string(types.PageKind)).Add(float64(result.PageCount()))
	e.logPartial(OneNoteSnapshotName, snapshot.Partial, snapshot.Warnings)
	e.logger.Infow("onenote exported", "key", key, "notebooks", len(result.Notebooks), "pages", result.PageCount())

	if e.downloader == nil {
		return snapshot, nil
	}

	report, dlErr := e.downloader.Run(ctx, result.PendingDownloads())
	if dlErr != nil && !isPartialFailure(dlErr) {
		return snapshot, dlErr
	}
	e.logger.Infow("content downloaded", "rounds", report.Rounds, "downloaded", report.Downloaded,
		"skipped", report.Skipped, "failed", len(report.Failed))

	if e.cfg.Download.Markdown {
		if err = e.writeMarkdown(ctx, result.Pages(), report.Failed); err != nil {
			return snapshot, err
		}
	}
	if dlErr != nil {
		e.logger.Warnw("some pages could not be downloaded", "ids", report.Failed, "err", dlErr)
	}
	return snapshot, dlErr
}

func (e *Exporter) writeMarkdown(ctx context.Context, pages []types.PageExport, failed []string) error {
	defer utils.TraceRegion(ctx, "export.markdown")()
	skip := make(map[string]struct{}, len(failed))
	for _, id := range failed {
		skip[id] = struct{}{}
	}

	entries := make([]convert.IndexEntry, 0, len(pages))
	for _, p := range pages {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, ok := skip[p.ID]; ok || p.ContentURL == "" {
			continue
		}
		doc, err := e.convertPage(ctx, p.ID)
		if err != nil {
			e.logger.Warnw("convert page failed", "id", p.ID, "title", p.Title, "err", err)
			continue
		}
		title := doc.Title
		if title == "" {
			title = p.Title
		}
		entries = append(entries, convert.IndexEntry{ID: p.ID, Title: title, Path: p.ID + ".md", Summary: doc.Summary})
	}
	return e.store.Put(ctx, markdownDir+"/index.md", strings.NewReader(convert.Index(entries)))
}

func (e *Exporter) convertPage(ctx context.Context, id string) (*convert.Document, error) {
	rc, err := e.store.Get(ctx, downloader.ContentKey(id))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	doc, err := convert.HTMLToMarkdown(rc, e.cfg.Download.Selector)
	if err != nil {
		return nil, err
	}
	if err = e.store.Put(ctx, MarkdownKey(id), strings.NewReader(doc.Markdown)); err != nil {
		return nil, err
	}
	return doc, nil
}

// compareDigest reports whether the content changed since the snapshot of the previous run.
func (e *Exporter) compareDigest(ctx context.Context, name, digest string) {
	previous := &struct {
		RunID  string `json:"runId"`
		Digest string `json:"digest"`
	}{}
	if err := LoadSnapshot(ctx, e.store, name, e.cfg.Output.Compress, previous); err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			e.logger.Debugw("load previous snapshot failed", "snapshot", name, "err", err)
		}
		return
	}
	if previous.Digest == digest {
		e.logger.Infow("content unchanged since previous export", "snapshot", name, "previousRun", previous.RunID)
		return
	}
	e.logger.Infow("content changed since previous export", "snapshot", name, "previousRun", previous.RunID)
}

func (e *Exporter) logPartial(snapshot string, partial bool, warnings []string) {
	if !partial {
		return
	}
	partialSnapshotCounter.WithLabelValues(snapshot).Inc()
	e.logger.Warnw("snapshot is partial, some branches are empty", "snapshot", snapshot, "warnings", len(warnings))
}

// MarkdownKey is the storage key of the converted content of a page.
func MarkdownKey(id string) string {
	return fmt.Sprintf("%s/%s.md", markdownDir, id)
}

func warningsOf(failures []*types.BranchFailure) (bool, []string) {
	if len(failures) == 0 {
		return false, nil
	}
	warnings := make([]string, 0, len(failures))
	for _, f := range failures {
		warnings = append(warnings, f.Error())
	}
	return true, warnings
}

func isPartialFailure(err error) bool {
	var pf *types.PartialFailure
	return errors.As(err, &pf)
}
