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

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound      = errors.New("no record")
	ErrInvalidConfig = errors.New("invalid config")
	ErrNotCollection = errors.New("body is not a collection page, value is missing")
)

// TransportError is a network or HTTP level failure returned by the resource server.
type TransportError struct {
	URL        string
	StatusCode int
	Code       string
	Message    string
	RequestID  string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("request %s failed: %s", e.URL, e.Err)
	case e.Code != "":
		return fmt.Sprintf("request %s failed: status %d, %s: %s", e.URL, e.StatusCode, e.Code, e.Message)
	default:
		return fmt.Sprintf("request %s failed: status %d", e.URL, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the same request later may succeed.
func (e *TransportError) Temporary() bool {
	if e.Err != nil {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// DecodeError means the response body did not match the expected resource shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response of %s failed: %s", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// BranchFailure is a listing failure below the crawl root. The branch is kept with no children.
type BranchFailure struct {
	Kind NodeKind
	ID   string
	Name string
	URL  string
	Err  error
}

func (e *BranchFailure) Error() string {
	return fmt.Sprintf("list children of %s %s(%s) failed: %s", e.Kind, e.Name, e.ID, e.Err)
}

func (e *BranchFailure) Unwrap() error {
	return e.Err
}

// PartialFailure lists the leaves that were still failing when the download rounds ran out.
type PartialFailure struct {
	IDs    []string
	Rounds int
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%d item(s) still failing after %d round(s): %s", len(e.IDs), e.Rounds, strings.Join(e.IDs, ","))
}
