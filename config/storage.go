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

package config

const (
	MemoryLedger   = "memory"
	SqliteLedger   = "sqlite"
	PostgresLedger = "postgres"
	S3Storage      = "s3"
	OSSStorage     = "oss"
	MinioStorage   = "minio"
	WebdavStorage  = "webdav"
	LocalStorage   = "local"
	MemoryStorage  = "memory"
	LZ4Compress    = "lz4"

	DefaultGraphBaseURL = "https://graph.microsoft.com/v1.0"
)

type Storage struct {
	ID       string               `json:"id"`
	Type     string               `json:"type"`
	LocalDir string               `json:"local_dir,omitempty"`
	S3       *S3Config            `json:"s3,omitempty"`
	MinIO    *MinIOConfig         `json:"minio,omitempty"`
	OSS      *OSSConfig           `json:"oss,omitempty"`
	Webdav   *WebdavStorageConfig `json:"webdav,omitempty"`
}

type S3Config struct {
	Region          string `json:"region"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	BucketName      string `json:"bucket_name"`
	UsePathStyle    bool   `json:"use_path_style"`
	Prefix          string `json:"prefix,omitempty"`
}

type MinIOConfig struct {
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	BucketName      string `json:"bucket_name"`
	Location        string `json:"location"`
	Token           string `json:"token"`
	UseSSL          bool   `json:"use_ssl"`
	Prefix          string `json:"prefix,omitempty"`
}

type OSSConfig struct {
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	AccessKeySecret string `json:"access_key_secret"`
	BucketName      string `json:"bucket_name"`
	Prefix          string `json:"prefix,omitempty"`
}

type WebdavStorageConfig struct {
	ServerURL string `json:"server_url"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Insecure  bool   `json:"insecure,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
}
