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

package db

import "errors"

var (
	// ErrTLSDisabled is returned when TLS files are configured with sslmode=disable.
	ErrTLSDisabled = errors.New("database tls configured but sslmode is disable")
	// ErrLackingTLSFiles is returned when TLS is configured without every file.
	ErrLackingTLSFiles = errors.New("database tls requires cert_file, key_file, and ca_file")
	// ErrAppendCACert is returned when the CA file holds no usable certificate.
	ErrAppendCACert = errors.New("database tls: unable to append CA certificate")
	// ErrMissingHost is returned by Validate without a host.
	ErrMissingHost = errors.New("database host is required")
	// ErrMissingDatabase is returned by Validate without a database name.
	ErrMissingDatabase = errors.New("database name is required")
	// ErrNilPool is returned when a store is built without a pool.
	ErrNilPool = errors.New("database pool is required")
)
