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

package models

// CorrelationReason records how a correlation was derived.
type CorrelationReason string

const (
	// ReasonLogic comes from two instances of one adapter reporting the same id.
	ReasonLogic CorrelationReason = "Logic"
	// ReasonExecution comes from a command run on the device itself.
	ReasonExecution CorrelationReason = "Execution"
	// ReasonNonexistentDeduction pivots through a device the batch never saw.
	ReasonNonexistentDeduction CorrelationReason = "NonexistentDeduction"
)

// Notification types carried by warnings.
const (
	NotificationOSInconsistency          = "OS_INCONSISTENCY"
	NotificationExecutionTimeout         = "EXECUTION_TIMEOUT"
	NotificationCorrelationContradiction = "CORRELATION_CONTRADICTION"
)

// ResultKind tags the two variants of Result.
type ResultKind string

const (
	ResultKindCorrelation ResultKind = "correlation"
	ResultKindWarning     ResultKind = "warning"
)

// Result is either a Correlation or a Warning.
type Result interface {
	Kind() ResultKind
}

// Correlation instructs the caller to merge two adapter-device identities.
type Correlation struct {
	AssociatedAdapterDevices [2]AdapterIdentity `json:"associated_adapter_devices"`
	Data                     CorrelationData    `json:"data"`
	Reason                   CorrelationReason  `json:"reason"`
}

// CorrelationData holds the human readable explanation of a correlation.
type CorrelationData struct {
	Reason string `json:"Reason"`
}

// Warning is advisory output that implies no merge.
type Warning struct {
	Title            string      `json:"title"`
	Content          interface{} `json:"content"`
	NotificationType string      `json:"notification_type"`
}

func (Correlation) Kind() ResultKind { return ResultKindCorrelation }
func (Warning) Kind() ResultKind     { return ResultKindWarning }

// NewCorrelation builds an immutable correlation value.
func NewCorrelation(first, second AdapterIdentity, reason CorrelationReason, description string) Correlation {
	return Correlation{
		AssociatedAdapterDevices: [2]AdapterIdentity{first, second},
		Data:                     CorrelationData{Reason: description},
		Reason:                   reason,
	}
}

// First returns the first associated identity.
func (c Correlation) First() AdapterIdentity { return c.AssociatedAdapterDevices[0] }

// Second returns the second associated identity.
func (c Correlation) Second() AdapterIdentity { return c.AssociatedAdapterDevices[1] }

// WithSecond returns a copy with the second identity replaced.
func (c Correlation) WithSecond(second AdapterIdentity) Correlation {
	c.AssociatedAdapterDevices[1] = second
	return c
}

// PairKey identifies the unordered pair of identities.
func (c Correlation) PairKey() [2]AdapterIdentity {
	a, b := c.First(), c.Second()
	if b.Plugin < a.Plugin || (b.Plugin == a.Plugin && b.ID < a.ID) {
		a, b = b, a
	}

	return [2]AdapterIdentity{a, b}
}

// IsSelf reports whether both sides name the same adapter-device.
func (c Correlation) IsSelf() bool {
	return c.First() == c.Second()
}
