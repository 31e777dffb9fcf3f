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

package cel

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/basenana/graphdump/pkg/types"
)

var _ = Describe("TestMatcher", func() {
	var (
		ctx  = context.TODO()
		node = types.NodeInfo{
			Kind:       types.SectionKind,
			ID:         "0-abc",
			Name:       "文章",
			CreatedAt:  time.Unix(1700000000, 0),
			ModifiedAt: time.Now().Add(-time.Hour),
		}
	)

	It("should match on kind and name", func() {
		m, err := Compile(`kind == "section" && name == "文章"`)
		Expect(err).Should(BeNil())
		matched, err := m.Match(ctx, node)
		Expect(err).Should(BeNil())
		Expect(matched).Should(BeTrue())
	})

	It("should support string functions and time", func() {
		m, err := Compile(`name.startsWith("Draft") || now() - modified_at > 86400`)
		Expect(err).Should(BeNil())
		matched, err := m.Match(ctx, node)
		Expect(err).Should(BeNil())
		Expect(matched).Should(BeFalse())
	})

	It("should reject invalid and non bool expressions", func() {
		_, err := Compile(`name ==`)
		Expect(err).ShouldNot(BeNil())
		_, err = Compile(`name`)
		Expect(err).ShouldNot(BeNil())
		_, err = Compile(`size > 10`)
		Expect(err).ShouldNot(BeNil())
	})
})
