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
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

const onenotePage = `<html lang="en-US">
<head>
<title>Weekly plan</title>
<meta name="created" content="2024-03-01T08:30:00.0000000" />
</head>
<body data-absolute-enabled="true" style="font-family:Calibri">
<div id="div:1" style="position:absolute;left:48px;top:115px">
<h2>Goals</h2>
<p>Ship the <b>exporter</b></p>
<ul><li>write tests</li><li>review</li></ul>
<script>alert(1)</script>
</div>
</body>
</html>`

var _ = Describe("TestHTMLToMarkdown", func() {
	It("should convert the body with the title heading", func() {
		doc, err := HTMLToMarkdown(strings.NewReader(onenotePage), "body")
		Expect(err).Should(BeNil())
		Expect(doc.Title).Should(Equal("Weekly plan"))
		Expect(doc.Markdown).Should(HavePrefix("# Weekly plan\n\n"))
		Expect(doc.Markdown).Should(ContainSubstring("## Goals"))
		Expect(doc.Markdown).Should(ContainSubstring("**exporter**"))
		Expect(doc.Markdown).Should(ContainSubstring("write tests"))
		Expect(doc.Markdown).ShouldNot(ContainSubstring("alert"))
		Expect(doc.Summary).Should(Equal("Ship the exporter"))
	})

	It("should use the default selector", func() {
		doc, err := HTMLToMarkdown(strings.NewReader(onenotePage), "")
		Expect(err).Should(BeNil())
		Expect(doc.Markdown).Should(ContainSubstring("## Goals"))
	})

	It("should convert only the selected element", func() {
		doc, err := HTMLToMarkdown(strings.NewReader(onenotePage), "ul")
		Expect(err).Should(BeNil())
		Expect(doc.Markdown).ShouldNot(ContainSubstring("Goals"))
		Expect(doc.Markdown).Should(ContainSubstring("review"))
	})

	It("should fail when nothing matches", func() {
		_, err := HTMLToMarkdown(strings.NewReader(onenotePage), "article")
		Expect(err).ShouldNot(BeNil())
	})

	It("should not repeat the title", func() {
		doc, err := HTMLToMarkdown(strings.NewReader("<html><head><title>Note</title></head><body><h1>Note</h1><p>x</p></body></html>"), "body")
		Expect(err).Should(BeNil())
		Expect(strings.Count(doc.Markdown, "# Note")).Should(Equal(1))
	})
})

var _ = Describe("TestIndex", func() {
	It("should link every page", func() {
		out := Index([]IndexEntry{
			{ID: "p1", Title: "Daily [draft]", Path: "p1.md", Summary: "buy milk"},
			{ID: "p2", Path: "p2.md"},
		})
		Expect(out).Should(Equal("# Pages\n\n- [Daily \\[draft\\]](p1.md): buy milk\n- [p2](p2.md)\n"))
	})
})
