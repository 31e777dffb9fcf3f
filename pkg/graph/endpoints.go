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
	"net/url"
	"strconv"
)

// Endpoints builds the list and content URLs of one user scope.
type Endpoints struct {
	base     string
	scope    string
	pageSize int
}

// NewEndpoints scopes to /me when user is empty, to /users/{user} otherwise.
func NewEndpoints(baseURL, user string, pageSize int) Endpoints {
	scope := "me"
	if user != "" {
		scope = "users/" + url.PathEscape(user)
	}
	return Endpoints{base: baseURL, scope: scope, pageSize: pageSize}
}

func (e Endpoints) TodoLists() string {
	return e.list("todo/lists")
}

func (e Endpoints) TodoTasks(listID string) string {
	return e.list("todo/lists/" + url.PathEscape(listID) + "/tasks")
}

func (e Endpoints) Notebooks() string {
	return e.list("onenote/notebooks")
}

func (e Endpoints) NotebookSections(notebookID string) string {
	return e.list("onenote/notebooks/" + url.PathEscape(notebookID) + "/sections")
}

func (e Endpoints) NotebookSectionGroups(notebookID string) string {
	return e.list("onenote/notebooks/" + url.PathEscape(notebookID) + "/sectionGroups")
}

func (e Endpoints) SectionGroupSections(groupID string) string {
	return e.list("onenote/sectionGroups/" + url.PathEscape(groupID) + "/sections")
}

func (e Endpoints) SectionGroupSectionGroups(groupID string) string {
	return e.list("onenote/sectionGroups/" + url.PathEscape(groupID) + "/sectionGroups")
}

func (e Endpoints) Sections() string {
	return e.list("onenote/sections")
}

func (e Endpoints) SectionPages(sectionID string) string {
	return e.list("onenote/sections/" + url.PathEscape(sectionID) + "/pages")
}

func (e Endpoints) PageContent(pageID string) string {
	return e.resource("onenote/pages/" + url.PathEscape(pageID) + "/content")
}

func (e Endpoints) resource(p string) string {
	return e.base + "/" + e.scope + "/" + p
}

func (e Endpoints) list(p string) string {
	u := e.resource(p)
	if e.pageSize > 0 {
		u += "?$top=" + strconv.Itoa(e.pageSize)
	}
	return u
}
