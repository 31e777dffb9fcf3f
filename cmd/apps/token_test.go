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

package apps

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/basenana/graphdump/pkg/crawler"
	"github.com/basenana/graphdump/pkg/types"
)

var _ = Describe("TestReadToken", func() {
	It("should prompt and read one line from stdin", func() {
		prompt := &bytes.Buffer{}
		token, err := readToken(strings.NewReader("  eyJ0eXAi.abc  \nignored\n"), prompt, "")
		Expect(err).Should(BeNil())
		Expect(token).Should(Equal("eyJ0eXAi.abc"))
		Expect(prompt.String()).Should(Equal("Paste OAuth2 Token\n"))
	})

	It("should accept a token without newline and strip the bearer prefix", func() {
		token, err := readToken(strings.NewReader("Bearer abc"), &bytes.Buffer{}, "")
		Expect(err).Should(BeNil())
		Expect(token).Should(Equal("abc"))
	})

	It("should read from file without prompting", func() {
		file := filepath.Join(workdir, "token")
		Expect(os.WriteFile(file, []byte("from-file\n"), 0600)).Should(BeNil())
		prompt := &bytes.Buffer{}
		token, err := readToken(strings.NewReader("from-stdin\n"), prompt, file)
		Expect(err).Should(BeNil())
		Expect(token).Should(Equal("from-file"))
		Expect(prompt.Len()).Should(Equal(0))
	})

	It("should keep the cause of an unreadable token file", func() {
		_, err := readToken(strings.NewReader(""), &bytes.Buffer{}, filepath.Join(workdir, "missing"))
		Expect(errors.Is(err, os.ErrNotExist)).Should(BeTrue())
		Expect(err.Error()).Should(HavePrefix("read token file failed"))
	})

	It("should reject an empty token", func() {
		_, err := readToken(strings.NewReader("\n"), &bytes.Buffer{}, "")
		Expect(err).ShouldNot(BeNil())
		_, err = readToken(strings.NewReader(""), &bytes.Buffer{}, filepath.Join(workdir, "missing"))
		Expect(err).ShouldNot(BeNil())
	})
})

var _ = Describe("TestPrintProgress", func() {
	It("should print page and task counters", func() {
		out := &bytes.Buffer{}
		fn := printProgress(out)
		fn(crawler.Progress{Notebooks: 1, Sections: 2, Pages: 5}, types.NodeInfo{Kind: types.PageKind})
		fn(crawler.Progress{Lists: 2, Tasks: 7}, types.NodeInfo{Kind: types.TaskListKind})
		Expect(out.String()).Should(Equal("\rnotebooks: 1 sections: 2 pages: 5\rlists: 2 tasks: 7"))
	})
})
