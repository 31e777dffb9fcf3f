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

package types

import "time"

type ParentRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type Notebook struct {
	ID                   string    `json:"id"`
	DisplayName          string    `json:"displayName"`
	CreatedDateTime      time.Time `json:"createdDateTime"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`
	IsDefault            bool      `json:"isDefault,omitempty"`
	IsShared             bool      `json:"isShared,omitempty"`
}

func (n Notebook) Node() NodeInfo {
	return NodeInfo{Kind: NotebookKind, ID: n.ID, Name: n.DisplayName, CreatedAt: n.CreatedDateTime, ModifiedAt: n.LastModifiedDateTime}
}

type SectionGroup struct {
	ID                   string     `json:"id"`
	DisplayName          string     `json:"displayName"`
	CreatedDateTime      time.Time  `json:"createdDateTime"`
	LastModifiedDateTime time.Time  `json:"lastModifiedDateTime"`
	ParentNotebook       *ParentRef `json:"parentNotebook,omitempty"`
	ParentSectionGroup   *ParentRef `json:"parentSectionGroup,omitempty"`
}

func (g SectionGroup) Node() NodeInfo {
	return NodeInfo{Kind: SectionGroupKind, ID: g.ID, Name: g.DisplayName, CreatedAt: g.CreatedDateTime, ModifiedAt: g.LastModifiedDateTime}
}

type Section struct {
	ID                   string     `json:"id"`
	DisplayName          string     `json:"displayName"`
	CreatedDateTime      time.Time  `json:"createdDateTime"`
	LastModifiedDateTime time.Time  `json:"lastModifiedDateTime"`
	IsDefault            bool       `json:"isDefault,omitempty"`
	ParentNotebook       *ParentRef `json:"parentNotebook,omitempty"`
	ParentSectionGroup   *ParentRef `json:"parentSectionGroup,omitempty"`
}

func (s Section) Node() NodeInfo {
	return NodeInfo{Kind: SectionKind, ID: s.ID, Name: s.DisplayName, CreatedAt: s.CreatedDateTime, ModifiedAt: s.LastModifiedDateTime}
}

type Page struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	ContentURL           string    `json:"contentUrl"`
	CreatedDateTime      time.Time `json:"createdDateTime"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`
	Level                int       `json:"level,omitempty"`
	Order                int       `json:"order,omitempty"`
}

// NotebookExport holds the notebook and every retained section below it,
// direct sections first, then the sections found in its section groups.
type NotebookExport struct {
	SourceURL            string          `json:"sourceUrl"`
	ID                   string          `json:"id"`
	DisplayName          string          `json:"displayName"`
	CreatedDateTime      time.Time       `json:"createdDateTime"`
	LastModifiedDateTime time.Time       `json:"lastModifiedDateTime"`
	Sections             []SectionExport `json:"sections"`
}

type SectionExport struct {
	SourceURL            string       `json:"sourceUrl"`
	ID                   string       `json:"id"`
	DisplayName          string       `json:"displayName"`
	CreatedDateTime      time.Time    `json:"createdDateTime"`
	LastModifiedDateTime time.Time    `json:"lastModifiedDateTime"`
	ParentName           string       `json:"parentName"`
	Pages                []PageExport `json:"pages"`
}

type PageExport struct {
	SourceURL            string    `json:"sourceUrl"`
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	ContentURL           string    `json:"contentUrl"`
	CreatedDateTime      time.Time `json:"createdDateTime"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`
}

// DownloadTarget is the content reference of one leaf.
type DownloadTarget struct {
	ContentURL   string    `json:"contentUrl"`
	Title        string    `json:"title"`
	LastModified time.Time `json:"lastModified"`
}

type OneNoteResult struct {
	Notebooks []NotebookExport
	Sections  []SectionExport
	Failures  []*BranchFailure
}

func (r *OneNoteResult) allSections() []SectionExport {
	var sections []SectionExport
	for _, nb := range r.Notebooks {
		sections = append(sections, nb.Sections...)
	}
	return append(sections, r.Sections...)
}

func (r *OneNoteResult) PageCount() int {
	count := 0
	for _, s := range r.allSections() {
		count += len(s.Pages)
	}
	return count
}

// Pages returns every page in crawl order.
func (r *OneNoteResult) Pages() []PageExport {
	pages := make([]PageExport, 0)
	for _, s := range r.allSections() {
		pages = append(pages, s.Pages...)
	}
	return pages
}

// ContentURLs returns the content url of every page in crawl order.
func (r *OneNoteResult) ContentURLs() []string {
	var urls []string
	for _, s := range r.allSections() {
		for _, p := range s.Pages {
			urls = append(urls, p.ContentURL)
		}
	}
	return urls
}

func (r *OneNoteResult) PendingDownloads() map[string]DownloadTarget {
	pending := make(map[string]DownloadTarget)
	for _, s := range r.allSections() {
		for _, p := range s.Pages {
			if p.ContentURL == "" {
				continue
			}
			pending[p.ID] = DownloadTarget{ContentURL: p.ContentURL, Title: p.Title, LastModified: p.LastModifiedDateTime}
		}
	}
	return pending
}

type OneNoteSnapshot struct {
	RunID      string           `json:"runId"`
	ExportedAt time.Time        `json:"exportedAt"`
	Digest     string           `json:"digest"`
	Partial    bool             `json:"partial"`
	Warnings   []string         `json:"warnings,omitempty"`
	Notebooks  []NotebookExport `json:"notebooks,omitempty"`
	Sections   []SectionExport  `json:"sections,omitempty"`
}
