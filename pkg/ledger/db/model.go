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

package db

type DownloadRecord struct {
	ID           string `gorm:"column:id;primaryKey"`
	Kind         string `gorm:"column:kind;index:rec_kind"`
	Title        string `gorm:"column:title"`
	ContentURL   string `gorm:"column:content_url"`
	StoredKey    string `gorm:"column:stored_key"`
	Status       string `gorm:"column:status;index:rec_status"`
	Attempts     int    `gorm:"column:attempts"`
	LastError    string `gorm:"column:last_error"`
	LastModified int64  `gorm:"column:last_modified"`
	RunID        string `gorm:"column:run_id"`
	UpdatedAt    int64  `gorm:"column:updated_at"`
}

func (r DownloadRecord) TableName() string {
	return "download_record"
}
