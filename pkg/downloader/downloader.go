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

package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/basenana/graphdump/pkg/ledger"
	"github.com/basenana/graphdump/pkg/storage"
	"github.com/basenana/graphdump/pkg/types"
	"github.com/basenana/graphdump/utils"
	"github.com/basenana/graphdump/utils/logger"
)

const contentDir = "content"

// ContentFetcher returns the raw content behind a leaf content url.
type ContentFetcher interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

const (
	DefaultMaxRounds = 5
	DefaultDelay     = 500 * time.Millisecond
	DefaultMaxDelay  = 30 * time.Second
)

// Policy bounds the retry rounds. MaxRounds 0 keeps retrying until a round is clean,
// a Downloader built without WithPolicy uses DefaultPolicy.
type Policy struct {
	MaxRounds uint
	Delay     time.Duration
	MaxDelay  time.Duration
	OnRound   func(round int, failed map[string]types.DownloadTarget)
}

func DefaultPolicy() Policy {
	return Policy{MaxRounds: DefaultMaxRounds, Delay: DefaultDelay, MaxDelay: DefaultMaxDelay}
}

type Report struct {
	Rounds     int
	Downloaded int
	Skipped    int
	Failed     []string
}

type Downloader struct {
	content ContentFetcher
	store   storage.Storage
	ledger  ledger.Ledger
	policy  Policy
	runID   string
	logger  *zap.SugaredLogger
}

type Option func(d *Downloader)

func WithLedger(l ledger.Ledger) Option {
	return func(d *Downloader) {
		d.ledger = l
	}
}

func WithPolicy(p Policy) Option {
	return func(d *Downloader) {
		d.policy = p
	}
}

func WithRunID(runID string) Option {
	return func(d *Downloader) {
		d.runID = runID
	}
}

func New(content ContentFetcher, store storage.Storage, opts ...Option) *Downloader {
	d := &Downloader{
		content: content,
		store:   store,
		policy:  DefaultPolicy(),
		logger:  logger.NewLogger("downloader"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ContentKey is the storage key of the downloaded content of a leaf.
func ContentKey(id string) string {
	return fmt.Sprintf("%s/%s.html", contentDir, id)
}

// Run repeats rounds over the failures of the previous round until one is clean.
// When the rounds run out the still failing ids are returned as *types.PartialFailure.
func (d *Downloader) Run(ctx context.Context, pending map[string]types.DownloadTarget) (*Report, error) {
	defer utils.TraceRegion(ctx, "downloader.run")()
	report := &Report{Failed: []string{}}
	if len(pending) == 0 {
		return report, nil
	}

	current := pending
	err := retry.Do(
		func() error {
			report.Rounds++
			roundRunCounter.Inc()
			current = d.round(ctx, current, report)
			pendingGauge.Set(float64(len(current)))
			if d.policy.OnRound != nil {
				d.policy.OnRound(report.Rounds, current)
			}
			if ctx.Err() != nil {
				return retry.Unrecoverable(ctx.Err())
			}
			if len(current) > 0 {
				return fmt.Errorf("%d item(s) failed in round %d", len(current), report.Rounds)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(d.policy.MaxRounds),
		retry.Delay(d.policy.Delay),
		retry.MaxDelay(d.policy.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			d.logger.Infow("retry failed items", "round", n+1, "err", err)
		}),
	)

	report.Failed = sortedIDs(current)
	if err == nil {
		return report, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return report, ctxErr
	}
	return report, &types.PartialFailure{IDs: report.Failed, Rounds: report.Rounds}
}

// Round attempts every pending entry once, in id order, and returns the entries that failed.
func (d *Downloader) Round(ctx context.Context, pending map[string]types.DownloadTarget) map[string]types.DownloadTarget {
	return d.round(ctx, pending, &Report{})
}

func (d *Downloader) round(ctx context.Context, pending map[string]types.DownloadTarget, report *Report) map[string]types.DownloadTarget {
	defer utils.TraceRegion(ctx, "downloader.round")()
	failed := make(map[string]types.DownloadTarget)
	for _, id := range sortedIDs(pending) {
		target := pending[id]
		if ctx.Err() != nil {
			failed[id] = target
			continue
		}

		skipped, err := d.attempt(ctx, id, target)
		switch {
		case err != nil:
			attemptCounter.WithLabelValues("failed").Inc()
			utils.ContextLog(ctx, d.logger).Warnw("download content failed", "id", id, "title", target.Title,
				"temporary", isTemporary(err), "err", err)
			failed[id] = target
		case skipped:
			attemptCounter.WithLabelValues("skipped").Inc()
			report.Skipped++
		default:
			attemptCounter.WithLabelValues("done").Inc()
			report.Downloaded++
		}
	}
	return failed
}

func (d *Downloader) attempt(ctx context.Context, id string, target types.DownloadTarget) (skipped bool, err error) {
	var record *ledger.Record
	if d.ledger != nil {
		record, err = d.ledger.Get(ctx, id)
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			return false, err
		}
		if record.UpToDate(target.LastModified) && d.stored(ctx, record.StoredKey) {
			return true, nil
		}
	}

	key := ContentKey(id)
	err = d.fetchInto(ctx, key, target.ContentURL)
	d.saveRecord(ctx, id, key, target, record, err)
	return false, err
}

func (d *Downloader) fetchInto(ctx context.Context, key, url string) error {
	body, err := d.content.Download(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	return d.store.Put(ctx, key, body)
}

func (d *Downloader) stored(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}
	_, err := d.store.Head(ctx, key)
	return err == nil
}

func (d *Downloader) saveRecord(ctx context.Context, id, key string, target types.DownloadTarget, prev *ledger.Record, err error) {
	if d.ledger == nil {
		return
	}
	record := &ledger.Record{
		ID:           id,
		Kind:         types.PageKind,
		Title:        target.Title,
		ContentURL:   target.ContentURL,
		StoredKey:    key,
		Status:       ledger.StatusDone,
		Attempts:     1,
		LastModified: target.LastModified,
		RunID:        d.runID,
	}
	if prev != nil {
		record.Attempts = prev.Attempts + 1
	}
	if err != nil {
		record.Status = ledger.StatusFailed
		record.LastError = err.Error()
	}
	if sErr := d.ledger.Save(ctx, record); sErr != nil {
		utils.ContextLog(ctx, d.logger).Warnw("save download record failed", "id", id, "err", sErr)
	}
}

func sortedIDs(m map[string]types.DownloadTarget) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// isTemporary reports whether a later round may succeed, a page deleted since the crawl never will.
func isTemporary(err error) bool {
	var tErr *types.TransportError
	if errors.As(err, &tErr) {
		return tErr.Temporary()
	}
	return true
}
