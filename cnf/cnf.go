// Copyright © 2016 Abcum Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cnf holds the process-wide logging configuration a host
// embedding xjd1 can set once at startup, trimmed from the teacher's
// Options struct down to the one ambient concern (logging) that still
// applies to an embedded library with no network, auth, or cluster
// surface of its own.
package cnf

// Options is the logging configuration a host passes to
// xjd1.NewContext via xjd1.WithLogging.
type Options struct {
	Logging struct {
		Level  string // trace, debug, info, warn, error, fatal, panic
		Output string // stdout, stderr, none
		Format string // text, json
	}
}
