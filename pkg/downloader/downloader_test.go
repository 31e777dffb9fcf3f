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
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/pkg/ledger"
	"github.com/basenana/graphdump/pkg/storage"
	"github.com/basenana/graphdump/pkg/types"
)

// flakyContent fails an url as many times as configured, then serves it.
type flakyContent struct {
	failures map[string]int
	requests []string
	mux      sync.Mutex
}

func (f *flakyContent) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.requests = append(f.requests, url)
	if f.failures[url] != 0 {
		if f.failures[url] > 0 {
			f.failures[url]--
		}
		return nil, &types.TransportError{URL: url, StatusCode: 503}
	}
	return io.NopCloser(bytes.NewReader([]byte("<html><body>" + url + "</body></html>"))), nil
}

func targets(ids ...string) map[string]types.DownloadTarget {
	result := make(map[string]types.DownloadTarget, len(ids))
	for _, id := range ids {
		result[id] = types.DownloadTarget{ContentURL: "u" + id, Title: "page " + id}
	}
	return result
}

func stored(s storage.Storage, id string) string {
	data, err := storage.ReadAll(context.TODO(), s, ContentKey(id))
	Expect(err).Should(BeNil())
	return string(data)
}

var _ = Describe("TestDownloaderRounds", func() {
	var (
		ctx     = context.TODO()
		store   storage.Storage
		content *flakyContent
		rounds  []map[string]types.DownloadTarget
		policy  Policy
	)

	BeforeEach(func() {
		store = storage.NewMemoryStorage("test")
		content = &flakyContent{failures: map[string]int{}}
		rounds = nil
		policy = Policy{
			MaxRounds: 5,
			OnRound: func(round int, failed map[string]types.DownloadTarget) {
				Expect(round).Should(Equal(len(rounds) + 1))
				rounds = append(rounds, failed)
			},
		}
	})

	It("should retry only the entry that failed in the first round", func() {
		content.failures["u2"] = 1
		d := New(content, store, WithPolicy(policy))

		report, err := d.Run(ctx, targets("1", "2", "3"))
		Expect(err).Should(BeNil())
		Expect(report.Rounds).Should(Equal(2))
		Expect(report.Downloaded).Should(Equal(3))
		Expect(report.Failed).Should(BeEmpty())

		Expect(rounds).Should(HaveLen(2))
		Expect(rounds[0]).Should(Equal(targets("2")))
		Expect(rounds[1]).Should(BeEmpty())
		Expect(content.requests).Should(Equal([]string{"u1", "u2", "u3", "u2"}))

		for _, id := range []string{"1", "2", "3"} {
			Expect(stored(store, id)).Should(ContainSubstring("u" + id))
		}
	})

	It("should attempt every entry even when the first one fails", func() {
		content.failures["u1"] = -1
		d := New(content, store)

		failed := d.Round(ctx, targets("1", "2", "3"))
		Expect(failed).Should(Equal(targets("1")))
		Expect(content.requests).Should(Equal([]string{"u1", "u2", "u3"}))
	})

	It("should report partial failure when rounds run out", func() {
		content.failures["u2"] = -1
		policy.MaxRounds = 3
		d := New(content, store, WithPolicy(policy))

		report, err := d.Run(ctx, targets("1", "2"))
		Expect(err).ShouldNot(BeNil())

		var partial *types.PartialFailure
		Expect(errors.As(err, &partial)).Should(BeTrue())
		Expect(partial.IDs).Should(Equal([]string{"2"}))
		Expect(partial.Rounds).Should(Equal(3))
		Expect(report.Failed).Should(Equal([]string{"2"}))
		Expect(report.Downloaded).Should(Equal(1))
		Expect(rounds).Should(HaveLen(3))
	})

	It("should keep retrying when rounds are unbounded", func() {
		content.failures["u1"] = 6
		policy.MaxRounds = 0
		d := New(content, store, WithPolicy(policy))

		report, err := d.Run(ctx, targets("1"))
		Expect(err).Should(BeNil())
		Expect(report.Rounds).Should(Equal(7))
	})

	It("should bound the rounds when no policy is given", func() {
		content.failures["u1"] = -1
		d := New(content, store)
		Expect(d.policy.MaxRounds).Should(Equal(uint(DefaultMaxRounds)))
		d.policy.Delay, d.policy.MaxDelay = 0, 0

		report, err := d.Run(ctx, targets("1"))
		var partial *types.PartialFailure
		Expect(errors.As(err, &partial)).Should(BeTrue())
		Expect(partial.Rounds).Should(Equal(DefaultMaxRounds))
		Expect(report.Rounds).Should(Equal(DefaultMaxRounds))
		Expect(content.requests).Should(HaveLen(DefaultMaxRounds))
	})

	It("should do nothing with nothing pending", func() {
		d := New(content, store, WithPolicy(policy))
		report, err := d.Run(ctx, map[string]types.DownloadTarget{})
		Expect(err).Should(BeNil())
		Expect(report.Rounds).Should(Equal(0))
		Expect(rounds).Should(BeEmpty())
	})

	It("should stop when context is canceled", func() {
		cancelCtx, cancel := context.WithCancel(ctx)
		content.failures["u1"] = -1
		policy.MaxRounds = 0
		policy.OnRound = func(round int, failed map[string]types.DownloadTarget) {
			cancel()
		}
		d := New(content, store, WithPolicy(policy))

		_, err := d.Run(cancelCtx, targets("1", "2"))
		Expect(errors.Is(err, context.Canceled)).Should(BeTrue())
	})
})

var _ = Describe("TestDownloaderLedger", func() {
	var (
		ctx      = context.TODO()
		store    storage.Storage
		content  *flakyContent
		l        ledger.Ledger
		modified = time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	)

	BeforeEach(func() {
		var err error
		store = storage.NewMemoryStorage("test")
		content = &flakyContent{failures: map[string]int{}}
		l, err = ledger.New(config.Ledger{Type: config.MemoryLedger})
		Expect(err).Should(BeNil())
	})

	pending := func() map[string]types.DownloadTarget {
		p := targets("1", "2")
		for id, t := range p {
			t.LastModified = modified
			p[id] = t
		}
		return p
	}

	It("should skip unchanged content on the next run", func() {
		d := New(content, store, WithLedger(l), WithRunID("run-1"))
		report, err := d.Run(ctx, pending())
		Expect(err).Should(BeNil())
		Expect(report.Downloaded).Should(Equal(2))

		record, err := l.Get(ctx, "1")
		Expect(err).Should(BeNil())
		Expect(record.Status).Should(Equal(ledger.StatusDone))
		Expect(record.StoredKey).Should(Equal(ContentKey("1")))
		Expect(record.RunID).Should(Equal("run-1"))

		content.requests = nil
		report, err = New(content, store, WithLedger(l)).Run(ctx, pending())
		Expect(err).Should(BeNil())
		Expect(report.Skipped).Should(Equal(2))
		Expect(report.Downloaded).Should(Equal(0))
		Expect(content.requests).Should(BeEmpty())
	})

	It("should download again when content changed or went missing", func() {
		_, err := New(content, store, WithLedger(l)).Run(ctx, pending())
		Expect(err).Should(BeNil())
		Expect(store.Delete(ctx, ContentKey("2"))).Should(BeNil())

		changed := pending()
		t := changed["1"]
		t.LastModified = modified.Add(time.Hour)
		changed["1"] = t

		content.requests = nil
		report, err := New(content, store, WithLedger(l)).Run(ctx, changed)
		Expect(err).Should(BeNil())
		Expect(report.Downloaded).Should(Equal(2))
		Expect(content.requests).Should(Equal([]string{"u1", "u2"}))

		record, err := l.Get(ctx, "1")
		Expect(err).Should(BeNil())
		Expect(record.Attempts).Should(Equal(2))
	})

	It("should record failures", func() {
		content.failures["u2"] = -1
		_, err := New(content, store, WithLedger(l), WithPolicy(Policy{MaxRounds: 1})).Run(ctx, pending())
		Expect(err).ShouldNot(BeNil())

		failed, err := l.List(ctx, ledger.StatusFailed)
		Expect(err).Should(BeNil())
		Expect(failed).Should(HaveLen(1))
		Expect(failed[0].ID).Should(Equal("2"))
		Expect(failed[0].LastError).Should(ContainSubstring("503"))
	})
})
