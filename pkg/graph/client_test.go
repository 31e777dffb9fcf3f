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

package graph

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/pkg/types"
)

var _ = Describe("TestClient", func() {
	var (
		ctx     = context.TODO()
		server  *httptest.Server
		client  *Client
		lastReq *http.Request
	)

	BeforeEach(func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/v1.0/me/onenote/notebooks", func(w http.ResponseWriter, r *http.Request) {
			lastReq = r
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"@odata.nextLink":"next","value":[{"id":"nb-1","displayName":"Work"}]}`)
		})
		mux.HandleFunc("/v1.0/me/onenote/sections", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"error":{"code":"40004","message":"no access","innerError":{"date":"2024-01-01T00:00:00","request-id":"req-1","client-request-id":"c-1"}}}`)
		})
		mux.HandleFunc("/v1.0/me/todo/lists", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"value": not-json`)
		})
		mux.HandleFunc("/v1.0/me/onenote/sections/s-1/pages", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id":"not-a-collection"}`)
		})
		mux.HandleFunc("/v1.0/me/onenote/pages/p-1/content", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "<html><body><p>hi</p></body></html>")
		})
		mux.HandleFunc("/v1.0/me/onenote/pages/p-2/content", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		server = httptest.NewServer(mux)
		client = NewClient(config.Graph{BaseURL: server.URL + "/v1.0", TimeoutSeconds: 5}, "secret-token")
	})

	AfterEach(func() {
		server.Close()
	})

	It("should decode a collection page and send auth headers", func() {
		page := &types.Collection[types.Notebook]{}
		Expect(client.GetJSON(ctx, client.Endpoints().Notebooks(), page)).Should(BeNil())
		Expect(page.Value).Should(HaveLen(1))
		Expect(page.Value[0].DisplayName).Should(Equal("Work"))
		Expect(page.HasNextLink()).Should(BeTrue())

		Expect(lastReq.Header.Get("Authorization")).Should(Equal("Bearer secret-token"))
		Expect(lastReq.Header.Get("client-request-id")).ShouldNot(BeEmpty())
	})

	It("should parse graph error bodies", func() {
		page := &types.Collection[types.Section]{}
		err := client.GetJSON(ctx, client.Endpoints().Sections(), page)
		Expect(err).ShouldNot(BeNil())

		var tErr *types.TransportError
		Expect(errors.As(err, &tErr)).Should(BeTrue())
		Expect(tErr.StatusCode).Should(Equal(http.StatusForbidden))
		Expect(tErr.Code).Should(Equal("40004"))
		Expect(tErr.Message).Should(Equal("no access"))
		Expect(tErr.RequestID).Should(Equal("req-1"))
		Expect(tErr.Temporary()).Should(BeFalse())
	})

	It("should report malformed bodies as decode errors", func() {
		page := &types.Collection[types.TodoTaskList]{}
		err := client.GetJSON(ctx, client.Endpoints().TodoLists(), page)
		var dErr *types.DecodeError
		Expect(errors.As(err, &dErr)).Should(BeTrue())
	})

	It("should reject a 2xx body that is not a collection page", func() {
		url := client.Endpoints().SectionPages("s-1")
		err := client.GetJSON(ctx, url, &types.Collection[types.Page]{})
		var dErr *types.DecodeError
		Expect(errors.As(err, &dErr)).Should(BeTrue())
		Expect(dErr.URL).Should(Equal(url))
		Expect(errors.Is(err, types.ErrNotCollection)).Should(BeTrue())
	})

	It("should download page content", func() {
		body, err := client.Download(ctx, client.Endpoints().PageContent("p-1"))
		Expect(err).Should(BeNil())
		defer body.Close()
		data, err := io.ReadAll(body)
		Expect(err).Should(BeNil())
		Expect(string(data)).Should(ContainSubstring("<p>hi</p>"))
	})

	It("should mark 5xx downloads as temporary", func() {
		_, err := client.Download(ctx, client.Endpoints().PageContent("p-2"))
		var tErr *types.TransportError
		Expect(errors.As(err, &tErr)).Should(BeTrue())
		Expect(tErr.Temporary()).Should(BeTrue())
	})

	It("should fail with a transport error when the server is gone", func() {
		server.Close()
		err := client.GetJSON(ctx, client.Endpoints().Notebooks(), &types.Collection[types.Notebook]{})
		var tErr *types.TransportError
		Expect(errors.As(err, &tErr)).Should(BeTrue())
		Expect(tErr.Err).ShouldNot(BeNil())
	})
})

var _ = Describe("TestEndpoints", func() {
	It("should scope to me by default", func() {
		e := NewEndpoints("https://graph.microsoft.com/v1.0", "", 0)
		Expect(e.Notebooks()).Should(Equal("https://graph.microsoft.com/v1.0/me/onenote/notebooks"))
		Expect(e.SectionPages("s-1")).Should(Equal("https://graph.microsoft.com/v1.0/me/onenote/sections/s-1/pages"))
		Expect(e.TodoTasks("l-1")).Should(Equal("https://graph.microsoft.com/v1.0/me/todo/lists/l-1/tasks"))
	})

	It("should scope to a user and add page size to lists only", func() {
		e := NewEndpoints("https://graph.microsoft.com/v1.0", "someone@example.com", 50)
		Expect(e.NotebookSectionGroups("nb")).Should(Equal("https://graph.microsoft.com/v1.0/users/someone@example.com/onenote/notebooks/nb/sectionGroups?$top=50"))
		Expect(e.PageContent("p")).Should(Equal("https://graph.microsoft.com/v1.0/users/someone@example.com/onenote/pages/p/content"))
	})

	It("should label operations without ids", func() {
		Expect(operationOf("https://x/v1.0/me/onenote/sections/abc-1/pages?$skip=20")).Should(Equal("onenote/sections/pages"))
		Expect(operationOf("https://x/v1.0/me/todo/lists/AAMk=/tasks")).Should(Equal("todo/lists/tasks"))
	})
})
