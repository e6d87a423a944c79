/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package gateway

import "errors"

var (
	// ErrNoResponders is returned when nothing is subscribed to a subject.
	ErrNoResponders = errors.New("no responders for correlation request")
	// ErrInvalidSubjectToken marks a name that cannot be used as a NATS subject token.
	ErrInvalidSubjectToken = errors.New("invalid subject token")
	// ErrParseFailed wraps an error reported by a remote parser.
	ErrParseFailed = errors.New("adapter failed to parse correlation output")
	// ErrMissingConn is returned by New without a NATS connection.
	ErrMissingConn = errors.New("nats connection is required")
	// ErrClosed rejects work submitted after Close.
	ErrClosed = errors.New("gateway closed")
)
