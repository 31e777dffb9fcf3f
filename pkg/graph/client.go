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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/pkg/types"
	"github.com/basenana/graphdump/utils"
	"github.com/basenana/graphdump/utils/logger"
)

const (
	maxErrorBodySize = 64 << 10
)

// Client talks to the Graph resource server with one opaque bearer token.
type Client struct {
	token     string
	userAgent string
	endpoints Endpoints
	cli       *http.Client
	logger    *zap.SugaredLogger
}

type Option func(c *Client)

func WithHTTPClient(cli *http.Client) Option {
	return func(c *Client) {
		c.cli = cli
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func NewClient(cfg config.Graph, token string, opts ...Option) *Client {
	c := &Client{
		token:     token,
		userAgent: config.VersionInfo().UserAgent(),
		endpoints: NewEndpoints(cfg.BaseURL, cfg.User, cfg.PageSize),
		cli:       &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		logger:    logger.NewLogger("graph"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// GetJSON requests url verbatim and decodes the JSON body into into.
func (c *Client) GetJSON(ctx context.Context, url string, into any) error {
	defer utils.TraceRegion(ctx, "graph.getjson")()
	resp, err := c.do(ctx, url, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err = json.NewDecoder(resp.Body).Decode(into); err != nil {
		requestErrorCounter.WithLabelValues(operationOf(url), "decode").Inc()
		return &types.DecodeError{URL: url, Err: err}
	}
	return nil
}

// Download returns the raw body of a content endpoint, the caller closes it.
func (c *Client) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	defer utils.TraceRegion(ctx, "graph.download")()
	resp, err := c.do(ctx, url, "text/html, */*")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, url, accept string) (*http.Response, error) {
	operation := operationOf(url)
	defer logRequestLatency(operation, time.Now())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &types.TransportError{URL: url, Err: err}
	}
	requestID := uuid.New().String()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("client-request-id", requestID)

	resp, err := c.cli.Do(req)
	if err != nil {
		requestErrorCounter.WithLabelValues(operation, "transport").Inc()
		c.logger.Debugw("request failed", "url", url, "clientRequestId", requestID, "err", err)
		return nil, &types.TransportError{URL: url, Err: err}
	}
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return resp, nil
	}

	defer resp.Body.Close()
	requestErrorCounter.WithLabelValues(operation, fmt.Sprintf("%d", resp.StatusCode)).Inc()
	tErr := parseErrorResponse(url, resp)
	if tErr.RequestID == "" {
		tErr.RequestID = resp.Header.Get("request-id")
	}
	c.logger.Debugw("request got error status", "url", url, "status", resp.StatusCode,
		"code", tErr.Code, "clientRequestId", requestID, "requestId", tErr.RequestID)
	return nil, tErr
}

func parseErrorResponse(url string, resp *http.Response) *types.TransportError {
	tErr := &types.TransportError{URL: url, StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil || len(body) == 0 {
		tErr.Message = http.StatusText(resp.StatusCode)
		return tErr
	}

	var gErr types.GraphError
	if err = json.Unmarshal(body, &gErr); err != nil || gErr.Error.Code == "" {
		tErr.Message = string(body)
		return tErr
	}
	tErr.Code = gErr.Error.Code
	tErr.Message = gErr.Error.Message
	if gErr.Error.InnerError != nil {
		tErr.RequestID = gErr.Error.InnerError.RequestID
	}
	return tErr
}
