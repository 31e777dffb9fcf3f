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

package convert

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/basenana/graphdump/utils"
)

const (
	DefaultSelector = "body"
	summaryLimit    = 200
)

// Document is one page rendered as markdown.
type Document struct {
	Title    string
	Markdown string
	Summary  string
}

// HTMLToMarkdown renders the first element matching selector as markdown.
// The page title becomes a level one heading unless the content already starts with it.
func HTMLToMarkdown(in io.Reader, selector string) (*Document, error) {
	raw, err := io.ReadAll(in)
	if err != nil {
		return nil, errors.Wrap(err, "read html failed")
	}
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "parse html failed")
	}
	doc := goquery.NewDocumentFromNode(root)

	if selector == "" {
		selector = DefaultSelector
	}
	selected := doc.Find(selector).First()
	if selected.Length() == 0 {
		return nil, fmt.Errorf("no element matches selector %q", selector)
	}
	selected.Find("script,style,noscript").Remove()

	content, err := htmltomarkdown.ConvertNode(selected.Get(0))
	if err != nil {
		return nil, errors.Wrap(err, "convert html to markdown failed")
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	md := strings.TrimSpace(string(content))
	if title != "" && !strings.HasPrefix(md, "# "+title) {
		md = "# " + title + "\n\n" + md
	}
	return &Document{
		Title:    title,
		Markdown: md + "\n",
		Summary:  utils.Summary(string(raw), summaryLimit),
	}, nil
}

// Index renders a markdown table of contents linking every converted page.
func Index(entries []IndexEntry) string {
	buf := &strings.Builder{}
	buf.WriteString("# Pages\n\n")
	for _, e := range entries {
		title := e.Title
		if title == "" {
			title = e.ID
		}
		fmt.Fprintf(buf, "- [%s](%s)", escapeLinkText(title), e.Path)
		if e.Summary != "" {
			fmt.Fprintf(buf, ": %s", e.Summary)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

type IndexEntry struct {
	ID      string
	Title   string
	Path    string
	Summary string
}

func escapeLinkText(s string) string {
	return strings.NewReplacer("[", "\\[", "]", "\\]").Replace(s)
}
