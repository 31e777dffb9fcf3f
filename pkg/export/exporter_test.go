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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/pkg/graph"
	"github.com/basenana/graphdump/pkg/ledger"
	"github.com/basenana/graphdump/pkg/storage"
	"github.com/basenana/graphdump/pkg/types"
)

var testEndpoints = graph.NewEndpoints("https://graph.test/v1.0", "", 0)

// failingPutStorage fails every Put of one key.
type failingPutStorage struct {
	storage.Storage
	key string
	err error
}

func (s *failingPutStorage) Put(ctx context.Context, key string, in io.Reader) error {
	if key == s.key {
		return s.err
	}
	return s.Storage.Put(ctx, key, in)
}

// fakeGraph serves canned collections and page content by url.
type fakeGraph struct {
	pages   map[string][]byte
	content map[string]string
	broken  map[string]bool
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{pages: map[string][]byte{}, content: map[string]string{}, broken: map[string]bool{}}
}

func (f *fakeGraph) GetJSON(ctx context.Context, url string, into any) error {
	raw, ok := f.pages[url]
	if !ok {
		return &types.TransportError{URL: url, StatusCode: http.StatusNotFound, Code: "itemNotFound"}
	}
	return json.Unmarshal(raw, into)
}

func (f *fakeGraph) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	data, ok := f.content[url]
	if !ok || f.broken[url] {
		return nil, &types.TransportError{URL: url, StatusCode: http.StatusServiceUnavailable}
	}
	return io.NopCloser(bytes.NewReader([]byte(data))), nil
}

func serve[T any](f *fakeGraph, url string, pages ...[]T) {
	for i, values := range pages {
		pageURL := url
		if i > 0 {
			pageURL = url + "?page=" + string(rune('0'+i))
		}
		page := types.Collection[T]{Value: values}
		if i < len(pages)-1 {
			page.NextLink = url + "?page=" + string(rune('0'+i+1))
		}
		raw, err := json.Marshal(page)
		if err != nil {
			panic(err)
		}
		f.pages[pageURL] = raw
	}
}

func servePage(f *fakeGraph, id string) types.Page {
	contentURL := testEndpoints.PageContent(id)
	f.content[contentURL] = "<html><head><title>Daily " + id + "</title></head><body><p>note " + id + "</p></body></html>"
	return types.Page{ID: id, Title: "Daily " + id, ContentURL: contentURL}
}

func newOneNoteGraph() *fakeGraph {
	f := newFakeGraph()
	serve(f, testEndpoints.Notebooks(), []types.Notebook{{ID: "nb-1", DisplayName: "Work"}})
	serve(f, testEndpoints.NotebookSections("nb-1"), []types.Section{{ID: "s-A", DisplayName: "A"}, {ID: "s-B", DisplayName: "B"}})
	serve(f, testEndpoints.NotebookSectionGroups("nb-1"), []types.SectionGroup{})
	serve(f, testEndpoints.SectionPages("s-A"), []types.Page{servePage(f, "p1")}, []types.Page{servePage(f, "p2")})
	return f
}

func testConfig() config.Config {
	cfg := config.DefaultConfig("/tmp/graphdump-test")
	cfg.Download.MaxRounds = 2
	cfg.Download.DelayMs = 0
	cfg.Download.MaxDelayMs = 0
	cfg.Download.Markdown = true
	return cfg
}

func keysOf(s storage.Storage) []string {
	return s.(interface{ Keys() []string }).Keys()
}

func readString(s storage.Storage, key string) string {
	data, err := storage.ReadAll(context.TODO(), s, key)
	Expect(err).Should(BeNil())
	return string(data)
}

var _ = Describe("TestExportOneNote", func() {
	var (
		ctx   = context.TODO()
		store storage.Storage
		cfg   config.Config
		f     *fakeGraph
	)

	BeforeEach(func() {
		store = storage.NewMemoryStorage("test")
		cfg = testConfig()
		f = newOneNoteGraph()
	})

	It("should write snapshot, urls, content and markdown", func() {
		e, err := New(cfg, f, testEndpoints, store, nil, WithRunID("run-1"))
		Expect(err).Should(BeNil())

		snapshot, err := e.ExportOneNote(ctx)
		Expect(err).Should(BeNil())
		Expect(snapshot.RunID).Should(Equal("run-1"))
		Expect(snapshot.Partial).Should(BeTrue())
		Expect(snapshot.Warnings).Should(HaveLen(1))
		Expect(snapshot.Warnings[0]).Should(ContainSubstring("s-B"))

		loaded := &types.OneNoteSnapshot{}
		Expect(LoadSnapshot(ctx, store, OneNoteSnapshotName, "", loaded)).Should(BeNil())
		Expect(loaded.Notebooks).Should(HaveLen(1))
		Expect(loaded.Notebooks[0].Sections).Should(HaveLen(2))
		Expect(loaded.Notebooks[0].Sections[0].Pages).Should(HaveLen(2))
		Expect(loaded.Notebooks[0].Sections[1].Pages).Should(BeEmpty())

		Expect(readString(store, "urls")).Should(Equal(testEndpoints.PageContent("p1") + "\n" + testEndpoints.PageContent("p2")))
		Expect(readString(store, "content/p1.html")).Should(ContainSubstring("note p1"))
		Expect(readString(store, MarkdownKey("p2"))).Should(HavePrefix("# Daily p2"))
		Expect(readString(store, "markdown/index.md")).Should(ContainSubstring("[Daily p1](p1.md): note p1"))
	})

	It("should keep the digest when nothing changed", func() {
		first, err := New(cfg, f, testEndpoints, store, nil, WithRunID("run-1"))
		Expect(err).Should(BeNil())
		s1, err := first.ExportOneNote(ctx)
		Expect(err).Should(BeNil())

		second, err := New(cfg, f, testEndpoints, store, nil, WithRunID("run-2"))
		Expect(err).Should(BeNil())
		s2, err := second.ExportOneNote(ctx)
		Expect(err).Should(BeNil())
		Expect(s2.Digest).Should(Equal(s1.Digest))
		Expect(s2.Digest).ShouldNot(BeEmpty())

		serve(f, testEndpoints.SectionPages("s-A"), []types.Page{servePage(f, "p1")})
		third, err := New(cfg, f, testEndpoints, store, nil)
		Expect(err).Should(BeNil())
		s3, err := third.ExportOneNote(ctx)
		Expect(err).Should(BeNil())
		Expect(s3.Digest).ShouldNot(Equal(s1.Digest))
	})

	It("should return partial failure after writing everything else", func() {
		f.broken[testEndpoints.PageContent("p2")] = true
		var rounds []int
		e, err := New(cfg, f, testEndpoints, store, nil, WithRoundObserver(func(round int, failed map[string]types.DownloadTarget) {
			rounds = append(rounds, len(failed))
		}))
		Expect(err).Should(BeNil())

		_, err = e.ExportOneNote(ctx)
		var pf *types.PartialFailure
		Expect(errors.As(err, &pf)).Should(BeTrue())
		Expect(pf.IDs).Should(Equal([]string{"p2"}))
		Expect(rounds).Should(Equal([]int{1, 1}))

		Expect(keysOf(store)).Should(ContainElement("onenote-output.json"))
		Expect(keysOf(store)).Should(ContainElement("urls"))
		Expect(keysOf(store)).Should(ContainElement(MarkdownKey("p1")))
		Expect(keysOf(store)).ShouldNot(ContainElement(MarkdownKey("p2")))
	})

	It("should skip pages already stored by the ledger", func() {
		l, err := ledger.New(config.Ledger{Type: config.MemoryLedger})
		Expect(err).Should(BeNil())
		e, err := New(cfg, f, testEndpoints, store, l)
		Expect(err).Should(BeNil())
		_, err = e.ExportOneNote(ctx)
		Expect(err).Should(BeNil())

		delete(f.content, testEndpoints.PageContent("p1"))
		e, err = New(cfg, f, testEndpoints, store, l)
		Expect(err).Should(BeNil())
		_, err = e.ExportOneNote(ctx)
		Expect(err).Should(BeNil())
	})

	It("should fail without output when notebooks cannot be listed", func() {
		delete(f.pages, testEndpoints.Notebooks())
		e, err := New(cfg, f, testEndpoints, store, nil)
		Expect(err).Should(BeNil())

		_, err = e.ExportOneNote(ctx)
		Expect(err).ShouldNot(BeNil())
		Expect(keysOf(store)).Should(BeEmpty())
	})

	It("should stop with the cause when the urls file cannot be written", func() {
		putErr := errors.New("bucket is read only")
		failing := &failingPutStorage{Storage: store, key: "urls", err: putErr}
		e, err := New(cfg, f, testEndpoints, failing, nil)
		Expect(err).Should(BeNil())

		_, err = e.ExportOneNote(ctx)
		Expect(errors.Is(err, putErr)).Should(BeTrue())
		Expect(err.Error()).Should(HavePrefix("write urls failed"))
		Expect(keysOf(store)).Should(ContainElement("onenote-output.json"))
		Expect(keysOf(store)).ShouldNot(ContainElement("content/p1.html"))
	})

	It("should export sections only with compression and no download", func() {
		serve(f, testEndpoints.Sections(), []types.Section{{ID: "s-A", DisplayName: "A"}, {ID: "s-B", DisplayName: "B"}})
		cfg.Output.SectionsOnly = true
		cfg.Output.Compress = config.LZ4Compress
		cfg.Filter.Exclude = []string{"B"}
		cfg.Download.Enable = false
		cfg.Download.Markdown = false
		e, err := New(cfg, f, testEndpoints, store, nil)
		Expect(err).Should(BeNil())

		snapshot, err := e.ExportOneNote(ctx)
		Expect(err).Should(BeNil())
		Expect(snapshot.Partial).Should(BeFalse())
		Expect(keysOf(store)).Should(Equal([]string{"onenote-output.json.lz4", "urls"}))

		loaded := &types.OneNoteSnapshot{}
		Expect(LoadSnapshot(ctx, store, OneNoteSnapshotName, config.LZ4Compress, loaded)).Should(BeNil())
		Expect(loaded.Notebooks).Should(BeEmpty())
		Expect(loaded.Sections).Should(HaveLen(1))
		Expect(loaded.Sections[0].ID).Should(Equal("s-A"))
	})

	It("should reject a bad filter expression", func() {
		cfg.Filter.CEL = "name =="
		_, err := New(cfg, f, testEndpoints, store, nil)
		Expect(err).ShouldNot(BeNil())
	})
})

var _ = Describe("TestExportTodo", func() {
	It("should write every list with all tasks", func() {
		ctx := context.TODO()
		store := storage.NewMemoryStorage("test")
		f := newFakeGraph()
		serve(f, testEndpoints.TodoLists(),
			[]types.TodoTaskList{{ID: "l-1", DisplayName: "Tasks", WellknownListName: types.WellknownListDefault}},
			[]types.TodoTaskList{{ID: "l-2", DisplayName: "Shopping", WellknownListName: types.WellknownListNone}},
		)
		serve(f, testEndpoints.TodoTasks("l-1"),
			[]types.TodoTask{{ID: "t-1", Title: "a"}, {ID: "t-2", Title: "b"}},
			[]types.TodoTask{{ID: "t-3", Title: "c"}},
		)

		e, err := New(testConfig(), f, testEndpoints, store, nil)
		Expect(err).Should(BeNil())
		snapshot, err := e.ExportTodo(ctx)
		Expect(err).Should(BeNil())
		Expect(snapshot.Partial).Should(BeTrue())

		loaded := &types.TodoSnapshot{}
		Expect(LoadSnapshot(ctx, store, TodoSnapshotName, "", loaded)).Should(BeNil())
		Expect(loaded.Lists).Should(HaveLen(2))
		Expect(loaded.Lists[0].WellknownListName).Should(Equal(types.WellknownListDefault))
		Expect(loaded.Lists[0].Children).Should(HaveLen(3))
		Expect(loaded.Lists[0].Children[2].ID).Should(Equal("t-3"))
		Expect(loaded.Lists[1].Children).Should(BeEmpty())
		Expect(loaded.Warnings).Should(HaveLen(1))
		Expect(keysOf(store)).Should(Equal([]string{"todo-output.json"}))
	})
})
