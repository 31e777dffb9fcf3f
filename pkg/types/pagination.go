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

import "encoding/json"

// Collection is one page of a paginated Graph resource.
// NextLink is a fully qualified URL and is requested verbatim; empty means this is the last page.
type Collection[T any] struct {
	Context  string `json:"@odata.context,omitempty"`
	NextLink string `json:"@odata.nextLink,omitempty"`
	Value    []T    `json:"value"`
}

func (c *Collection[T]) HasNextLink() bool {
	return c != nil && c.NextLink != ""
}

type rawCollection struct {
	Context  string          `json:"@odata.context"`
	NextLink string          `json:"@odata.nextLink"`
	Value    json.RawMessage `json:"value"`
}

// UnmarshalJSON rejects bodies without a value key, a null value decodes as an empty page.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	var raw rawCollection
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Value) == 0 {
		return ErrNotCollection
	}
	var value []T
	if err := json.Unmarshal(raw.Value, &value); err != nil {
		return err
	}
	if value == nil {
		value = make([]T, 0)
	}
	c.Context = raw.Context
	c.NextLink = raw.NextLink
	c.Value = value
	return nil
}

// GraphError is the error body returned with non-2xx responses.
type GraphError struct {
	Error GraphErrorDetail `json:"error"`
}

type GraphErrorDetail struct {
	Code       string           `json:"code"`
	Message    string           `json:"message"`
	InnerError *GraphInnerError `json:"innerError,omitempty"`
}

type GraphInnerError struct {
	Date            string `json:"date"`
	RequestID       string `json:"request-id"`
	ClientRequestID string `json:"client-request-id"`
}
