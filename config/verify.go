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

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	storageIDPattern = "^[a-zA-Z][a-zA-Z0-9-_.]{1,31}$"
	storageIDRegexp  = regexp.MustCompile(storageIDPattern)

	filterKinds = map[string]struct{}{
		"notebook":     {},
		"sectionGroup": {},
		"section":      {},
		"taskList":     {},
	}
)

type verifier func(config *Config) error

var verifiers = []verifier{
	setDefaultValue,
	checkGraphConfig,
	checkFilterConfig,
	checkDownloadConfig,
	checkOutputConfig,
	checkLedgerConfig,
	checkMetricConfig,
}

func setDefaultValue(config *Config) error {
	if config.Graph.BaseURL == "" {
		config.Graph.BaseURL = DefaultGraphBaseURL
	}
	config.Graph.BaseURL = strings.TrimSuffix(config.Graph.BaseURL, "/")
	if config.Graph.TimeoutSeconds == 0 {
		config.Graph.TimeoutSeconds = defaultTimeoutSecond
	}
	if config.Download.Selector == "" {
		config.Download.Selector = defaultSelector
	}
	if config.Ledger.Type == "" {
		config.Ledger.Type = MemoryLedger
	}
	if config.Metric != nil && config.Metric.Job == "" {
		config.Metric.Job = defaultMetricJob
	}
	return nil
}

func checkGraphConfig(config *Config) error {
	gCfg := config.Graph
	u, err := url.Parse(gCfg.BaseURL)
	if err != nil {
		return fmt.Errorf("graph.base_url invalid: %s", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("graph.base_url must be http or https, got %s", gCfg.BaseURL)
	}
	if strings.Contains(gCfg.User, "/") {
		return fmt.Errorf("graph.user must be a user id or principal name")
	}
	if gCfg.TimeoutSeconds < 0 {
		return fmt.Errorf("graph.timeout_seconds must not be negative")
	}
	if gCfg.PageSize < 0 || gCfg.PageSize > 1000 {
		return fmt.Errorf("graph.page_size must be in [0, 1000]")
	}
	return nil
}

func checkFilterConfig(config *Config) error {
	fCfg := config.Filter
	for _, k := range fCfg.Kinds {
		if _, ok := filterKinds[k]; !ok {
			return fmt.Errorf("filter.kinds: unknown kind %s", k)
		}
	}
	for _, pattern := range append(append([]string{}, fCfg.Include...), fCfg.Exclude...) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("filter pattern %q invalid: %s", pattern, err)
		}
	}
	return nil
}

func checkDownloadConfig(config *Config) error {
	dCfg := config.Download
	if dCfg.DelayMs < 0 || dCfg.MaxDelayMs < 0 {
		return fmt.Errorf("download delay must not be negative")
	}
	if dCfg.MaxDelayMs > 0 && dCfg.DelayMs > dCfg.MaxDelayMs {
		return fmt.Errorf("download.delay_ms is greater than download.max_delay_ms")
	}
	if dCfg.Markdown && !dCfg.Enable {
		return fmt.Errorf("download.markdown requires download.enable")
	}
	return nil
}

func checkOutputConfig(config *Config) error {
	oCfg := config.Output
	switch oCfg.Compress {
	case "", LZ4Compress:
	default:
		return fmt.Errorf("unsupported output.compress %s", oCfg.Compress)
	}
	if err := checkStorageConfig(oCfg.Storage); err != nil {
		return fmt.Errorf("output.storage.%s: %s", oCfg.Storage.ID, err)
	}
	return nil
}

func checkStorageConfig(sConfig Storage) error {
	if sConfig.ID == "" {
		return fmt.Errorf("storage.id is empty")
	}
	if !storageIDRegexp.MatchString(sConfig.ID) {
		return fmt.Errorf("storage.id must match %s", storageIDPattern)
	}
	switch sConfig.Type {
	case MemoryStorage:
	case LocalStorage:
		if sConfig.LocalDir == "" {
			return fmt.Errorf("local path is empty")
		}
	case S3Storage:
		cfg := sConfig.S3
		if cfg == nil {
			return fmt.Errorf("s3 is nil")
		}
		if cfg.Region == "" {
			return fmt.Errorf("s3 config region is empty")
		}
		if cfg.AccessKeyID == "" {
			return fmt.Errorf("s3 config access_key_id is empty")
		}
		if cfg.SecretAccessKey == "" {
			return fmt.Errorf("s3 config secret_access_key is empty")
		}
		if cfg.BucketName == "" {
			return fmt.Errorf("s3 config bucket_name is empty")
		}
	case MinioStorage:
		cfg := sConfig.MinIO
		if cfg == nil {
			return fmt.Errorf("minio is nil")
		}
		if cfg.Endpoint == "" {
			return fmt.Errorf("minio config endpoint is empty")
		}
		if cfg.AccessKeyID == "" {
			return fmt.Errorf("minio config access_key_id is empty")
		}
		if cfg.SecretAccessKey == "" {
			return fmt.Errorf("minio config secret_access_key is empty")
		}
	case OSSStorage:
		cfg := sConfig.OSS
		if cfg == nil {
			return fmt.Errorf("OSS config is nil")
		}
		if cfg.Endpoint == "" {
			return fmt.Errorf("OSS endpoint is empty")
		}
		if cfg.AccessKeyID == "" {
			return fmt.Errorf("OSS access_key_id is empty")
		}
		if cfg.AccessKeySecret == "" {
			return fmt.Errorf("OSS access_key_secret is empty")
		}
	case WebdavStorage:
		cfg := sConfig.Webdav
		if cfg == nil {
			return fmt.Errorf("webdav is nil")
		}
		if cfg.ServerURL == "" {
			return fmt.Errorf("webdav config server_url is empty")
		}
		if cfg.Username == "" {
			return fmt.Errorf("webdav config user is empty")
		}
		if cfg.Password == "" {
			return fmt.Errorf("webdav config password is empty")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", sConfig.Type)
	}
	return nil
}

func checkLedgerConfig(config *Config) error {
	l := config.Ledger
	switch l.Type {
	case MemoryLedger:
		return nil
	case SqliteLedger:
		if l.Path == "" {
			return fmt.Errorf("ledger path is empty")
		}
		return nil
	case PostgresLedger:
		if l.DSN == "" {
			return fmt.Errorf("ledger dsn is empty")
		}
		return nil
	default:
		return fmt.Errorf("unknown ledger type %s", l.Type)
	}
}

func checkMetricConfig(config *Config) error {
	m := config.Metric
	if m == nil || m.PushGateway == "" {
		return nil
	}
	if _, err := url.Parse(m.PushGateway); err != nil {
		return fmt.Errorf("metric.push_gateway invalid: %s", err)
	}
	return nil
}

func Verify(cfg *Config) error {
	for _, f := range verifiers {
		if err := f(cfg); err != nil {
			return err
		}
	}
	return nil
}
