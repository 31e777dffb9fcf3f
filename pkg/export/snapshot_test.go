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
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/pkg/types"
)

func sampleOneNoteSnapshot() *types.OneNoteSnapshot {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	page := func(id string) types.PageExport {
		return types.PageExport{ID: id, Title: "page " + id, ContentURL: "https://graph.test/" + id, CreatedDateTime: created}
	}
	return &types.OneNoteSnapshot{
		RunID:      "1",
		ExportedAt: created,
		Partial:    true,
		Warnings:   []string{"list children of section B(s-B) failed"},
		Notebooks: []types.NotebookExport{
			{
				ID:          "nb-1",
				DisplayName: "Work",
				Sections: []types.SectionExport{
					{ID: "s-A", DisplayName: "A", ParentName: "Work", Pages: []types.PageExport{page("p3"), page("p1"), page("p2")}},
					{ID: "s-B", DisplayName: "B", ParentName: "Work", Pages: []types.PageExport{}},
					{ID: "s-C", DisplayName: "C", ParentName: "Group", Pages: []types.PageExport{page("p4")}},
				},
			},
		},
	}
}

func snapshotShape(s *types.OneNoteSnapshot) (ids []string, leaves int) {
	for _, nb := range s.Notebooks {
		ids = append(ids, nb.ID)
		for _, sec := range nb.Sections {
			ids = append(ids, sec.ID)
			for _, p := range sec.Pages {
				ids = append(ids, p.ID)
				leaves++
			}
		}
	}
	return
}

var _ = Describe("TestSnapshotCodec", func() {
	for _, compress := range []string{"", config.LZ4Compress} {
		compress := compress
		It("should round trip with compress="+compress, func() {
			origin := sampleOneNoteSnapshot()
			buf := &bytes.Buffer{}
			Expect(EncodeSnapshot(buf, origin, compress)).Should(BeNil())

			decoded := &types.OneNoteSnapshot{}
			Expect(DecodeSnapshot(bytes.NewReader(buf.Bytes()), decoded, compress)).Should(BeNil())

			originIDs, originLeaves := snapshotShape(origin)
			decodedIDs, decodedLeaves := snapshotShape(decoded)
			Expect(decodedIDs).Should(Equal(originIDs))
			Expect(decodedLeaves).Should(Equal(originLeaves))
			Expect(decodedLeaves).Should(Equal(4))
			Expect(decoded.Partial).Should(BeTrue())
			Expect(decoded.Warnings).Should(Equal(origin.Warnings))
			Expect(decoded.Notebooks[0].Sections[0].Pages[0].CreatedDateTime.Equal(origin.ExportedAt)).Should(BeTrue())
		})
	}

	It("should not decode lz4 as plain json", func() {
		buf := &bytes.Buffer{}
		Expect(EncodeSnapshot(buf, sampleOneNoteSnapshot(), config.LZ4Compress)).Should(BeNil())
		Expect(DecodeSnapshot(bytes.NewReader(buf.Bytes()), &types.OneNoteSnapshot{}, "")).ShouldNot(BeNil())
	})

	It("should name keys by compression", func() {
		Expect(SnapshotKey(TodoSnapshotName, "")).Should(Equal("todo-output.json"))
		Expect(SnapshotKey(OneNoteSnapshotName, config.LZ4Compress)).Should(Equal("onenote-output.json.lz4"))
	})
})
