/*
 * Copyright 2022 CloudWeGo Authors
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


package cgcs

import (
	"fmt"
	"io"

	"github.com/cloudwego/cgcs/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithFilterSize sets the size of the membership filter in front of the CSE
// candidate table.
//
// A prime size spreads the hash values best. Set this option to "0" disables
// the filter, which means every lookup scans the table.
//
// The default value of this option is "16001".
func WithFilterSize(size int) Option {
	if size < 0 {
		panic(fmt.Sprintf("cgcs: invalid filter size: %d", size))
	} else {
		return func(o *opts.Options) { o.FilterSize = size }
	}
}

// WithoutFilter disables the membership filter, same as WithFilterSize(0).
func WithoutFilter() Option {
	return func(o *opts.Options) { o.FilterSize = 0 }
}

// WithSwapDoubleOpAssign makes the CSE pass visit the address of a double
// compound assignment before its value, matching code generators which
// evaluate the lvalue first for such operations.
//
// The default value of this option is "false".
func WithSwapDoubleOpAssign(v bool) Option {
	return func(o *opts.Options) { o.SwapDoubleOpAssign = v }
}

// WithTrace sets the writer which receives trace output of the CSE pass.
// A nil writer disables tracing.
func WithTrace(w io.Writer) Option {
	return func(o *opts.Options) { o.Trace = w }
}

// WithCodegen enables the x86-64 code generator after the CSE pass.
func WithCodegen(v bool) Option {
	return func(o *opts.Options) { o.Codegen = v }
}

// WithPOPCNT overrides whether the generated code may use the POPCNT
// instruction. It defaults to what the current CPU supports.
func WithPOPCNT(v bool) Option {
	return func(o *opts.Options) { o.POPCNT = v }
}

// SetFilterSize sets the default filter size for all compilations from now on.
//
// This value can also be configured with the `CGCS_FILTER_SIZE` environment
// variable.
//
// Returns the old opts.FilterSize value.
func SetFilterSize(size int) int {
	size, opts.FilterSize = opts.FilterSize, size
	return size
}
