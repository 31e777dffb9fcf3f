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

import "github.com/basenana/graphdump/pkg/types"

// Progress counts what one crawl has produced so far, counters never reset between branches.
type Progress struct {
	Notebooks      int
	Sections       int
	Pages          int
	Lists          int
	Tasks          int
	Skipped        int
	BranchFailures int
}

// ProgressFunc is called with a copy of the counters after each leaf listing.
type ProgressFunc func(p Progress, current types.NodeInfo)

// crawlState is the per crawl accumulator, it is passed down explicitly and never shared between crawls.
type crawlState struct {
	progress   Progress
	failures   []*types.BranchFailure
	onProgress ProgressFunc
}

func (s *crawlState) report(current types.NodeInfo) {
	if s.onProgress != nil {
		s.onProgress(s.progress, current)
	}
}

func (s *crawlState) fail(node types.NodeInfo, url string, err error) *types.BranchFailure {
	bf := &types.BranchFailure{Kind: node.Kind, ID: node.ID, Name: node.Name, URL: url, Err: err}
	s.failures = append(s.failures, bf)
	s.progress.BranchFailures++
	return bf
}
