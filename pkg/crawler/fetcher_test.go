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
	"encoding/json"
	"net/http"

	"github.com/basenana/graphdump/pkg/graph"
	"github.com/basenana/graphdump/pkg/types"
)

var testEndpoints = graph.NewEndpoints("https://graph.test/v1.0", "", 0)

// memFetcher serves canned pages by url, unknown urls fail like a 404.
type memFetcher struct {
	pages    map[string][]byte
	failures map[string]error
	requests []string
}

func newMemFetcher() *memFetcher {
	return &memFetcher{pages: map[string][]byte{}, failures: map[string]error{}}
}

func (m *memFetcher) GetJSON(ctx context.Context, url string, into any) error {
	if err := ctx.Err(); err != nil {
		return &types.TransportError{URL: url, Err: err}
	}
	m.requests = append(m.requests, url)
	if err, ok := m.failures[url]; ok {
		return err
	}
	raw, ok := m.pages[url]
	if !ok {
		return &types.TransportError{URL: url, StatusCode: http.StatusNotFound, Code: "itemNotFound"}
	}
	return json.Unmarshal(raw, into)
}

func (m *memFetcher) fail(url string) {
	m.failures[url] = &types.TransportError{URL: url, StatusCode: http.StatusInternalServerError, Code: "generalException"}
}

func (m *memFetcher) requested(url string) bool {
	for _, r := range m.requests {
		if r == url {
			return true
		}
	}
	return false
}

func servePages[T any](m *memFetcher, url string, pages ...[]T) {
	for i, values := range pages {
		pageURL := url
		if i > 0 {
			pageURL = nextURL(url, i)
		}
		page := types.Collection[T]{Value: values}
		if i < len(pages)-1 {
			page.NextLink = nextURL(url, i+1)
		}
		raw, err := json.Marshal(page)
		if err != nil {
			panic(err)
		}
		m.pages[pageURL] = raw
	}
}

func nextURL(url string, i int) string {
	return url + "?$skiptoken=" + string(rune('a'+i))
}

func sections(names ...string) []types.Section {
	result := make([]types.Section, 0, len(names))
	for _, n := range names {
		result = append(result, types.Section{ID: "s-" + n, DisplayName: n})
	}
	return result
}

func pages(ids ...string) []types.Page {
	result := make([]types.Page, 0, len(ids))
	for _, id := range ids {
		result = append(result, types.Page{ID: id, Title: "title " + id, ContentURL: "https://graph.test/v1.0/me/onenote/pages/" + id + "/content"})
	}
	return result
}
