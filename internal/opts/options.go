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


package opts

import (
	"io"

	"github.com/klauspost/cpuid/v2"
)

type Options struct {
	FilterSize         int       // size of the CSE membership filter, 0 disables it
	SwapDoubleOpAssign bool      // evaluate the address of a double op= before its value
	Trace              io.Writer // receives CSE trace output when not nil
	Codegen            bool      // run the x86-64 code generator after CSE
	POPCNT             bool      // the target supports the POPCNT instruction
}

func (self *Options) UseFilter() bool {
	return self.FilterSize > 0
}

func GetDefaultOptions() Options {
	ret := Options{
		FilterSize:         FilterSize,
		SwapDoubleOpAssign: SwapDoubleOpAssign,
		Trace:              defaultTrace(),
		POPCNT:             cpuid.CPU.Supports(cpuid.POPCNT),
	}
	if NoFilter {
		ret.FilterSize = 0
	}
	return ret
}
