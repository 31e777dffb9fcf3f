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

type WellknownListName string

const (
	WellknownListNone    WellknownListName = "none"
	WellknownListDefault WellknownListName = "defaultList"
	WellknownListFlagged WellknownListName = "flaggedEmails"
)

type TodoTaskList struct {
	ID                string            `json:"id"`
	DisplayName       string            `json:"displayName"`
	IsOwner           bool              `json:"isOwner"`
	IsShared          bool              `json:"isShared"`
	WellknownListName WellknownListName `json:"wellknownListName"`
}

func (l TodoTaskList) Node() NodeInfo {
	return NodeInfo{Kind: TaskListKind, ID: l.ID, Name: l.DisplayName}
}

// DateTimeTimeZone keeps the Graph wire form; the zone is a Windows or IANA name and is not resolved here.
type DateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type ItemBody struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

type TodoTask struct {
	ID                   string            `json:"id"`
	Title                string            `json:"title"`
	Status               string            `json:"status"`
	Importance           string            `json:"importance"`
	IsReminderOn         bool              `json:"isReminderOn"`
	Body                 *ItemBody         `json:"body,omitempty"`
	Categories           []string          `json:"categories,omitempty"`
	CreatedDateTime      time.Time         `json:"createdDateTime"`
	LastModifiedDateTime time.Time         `json:"lastModifiedDateTime"`
	BodyLastModified     *time.Time        `json:"bodyLastModifiedDateTime,omitempty"`
	CompletedDateTime    *DateTimeTimeZone `json:"completedDateTime,omitempty"`
	DueDateTime          *DateTimeTimeZone `json:"dueDateTime,omitempty"`
	ReminderDateTime     *DateTimeTimeZone `json:"reminderDateTime,omitempty"`
}

type TaskListExport struct {
	SourceURL         string            `json:"sourceUrl"`
	DisplayName       string            `json:"displayName"`
	ID                string            `json:"id"`
	WellknownListName WellknownListName `json:"wellknownListName"`
	Children          []TodoTask        `json:"children"`
}

type TodoResult struct {
	Lists    []TaskListExport
	Failures []*BranchFailure
}

func (r *TodoResult) TaskCount() int {
	count := 0
	for _, l := range r.Lists {
		count += len(l.Children)
	}
	return count
}

type TodoSnapshot struct {
	RunID      string           `json:"runId"`
	ExportedAt time.Time        `json:"exportedAt"`
	Digest     string           `json:"digest"`
	Partial    bool             `json:"partial"`
	Warnings   []string         `json:"warnings,omitempty"`
	Lists      []TaskListExport `json:"lists"`
}
