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
	"os"
	"strconv"
)

const (
	_DefaultFilterSize = 16001 // should be prime
	_MinFilterSize     = 1
)

var (
	FilterSize         = parseOrDefault("CGCS_FILTER_SIZE", _DefaultFilterSize, _MinFilterSize)
	NoFilter           = parseBool("CGCS_NO_FILTER")
	SwapDoubleOpAssign = parseBool("CGCS_SWAP_DOUBLE_OPASS")
	Debug              = parseBool("CGCS_DEBUG")
)

func parseOrDefault(key string, def int, min int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseUint(env, 0, 64); err != nil {
		panic("cgcs: invalid value for " + key)
	} else if ret := int(val); ret < min {
		panic("cgcs: value too small for " + key)
	} else {
		return ret
	}
}

func parseBool(key string) bool {
	if env := os.Getenv(key); env == "" {
		return false
	} else if val, err := strconv.ParseBool(env); err != nil {
		panic("cgcs: invalid value for " + key)
	} else {
		return val
	}
}

func defaultTrace() io.Writer {
	if Debug {
		return os.Stderr
	} else {
		return nil
	}
}
