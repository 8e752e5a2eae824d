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


package debug

import (
	"sync/atomic"

	"github.com/cloudwego/cgcs/internal/cgen"
	"github.com/cloudwego/cgcs/internal/cse"
	"github.com/cloudwego/cgcs/internal/el"
)

// A Stats records process-wide statistics of the backend.
type Stats struct {
	Memory MemStats
	CSE    CSEStats
	Code   CodeStats
}

// A MemStats records statistics about the expression node allocator.
type MemStats struct {
	Alloc int
	Free  int
}

// A CSEStats records statistics about the CSE pass.
type CSEStats struct {
	Funcs  int
	EBBs   int
	Merged int
	Killed int
}

// A CodeStats records statistics about the code generator.
type CodeStats struct {
	Funcs int
	Size  int
	Loads int
}

// GetStats returns statistics of the backend.
func GetStats() Stats {
	return Stats{
		Memory: MemStats{
			Alloc: int(atomic.LoadUint64(&el.AllocCount)),
			Free:  int(atomic.LoadUint64(&el.FreeCount)),
		},
		CSE: CSEStats{
			Funcs:  int(atomic.LoadUint64(&cse.FuncCount)),
			EBBs:   int(atomic.LoadUint64(&cse.EBBCount)),
			Merged: int(atomic.LoadUint64(&cse.MergeCount)),
			Killed: int(atomic.LoadUint64(&cse.KillCount)),
		},
		Code: CodeStats{
			Funcs: int(atomic.LoadUint64(&cgen.FnCount)),
			Size:  int(atomic.LoadUint64(&cgen.CodeSize)),
			Loads: int(atomic.LoadUint64(&cgen.LoadCount)),
		},
	}
}
