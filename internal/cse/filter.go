/*
 * Copyright 2022 ByteDance Inc.
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

package cse

// _Filter is a bit vector giving a quick "definitely not in the table" test.
// Bits are only ever set between two clears. A zero-sized filter admits
// everything.
type _Filter struct {
    n    uint64
    bits []uint64
}

func newFilter(n int) _Filter {
    return _Filter {
        n    : uint64(n),
        bits : make([]uint64, (n + 63) / 64),
    }
}

func (self *_Filter) clear() {
    for i := range self.bits {
        self.bits[i] = 0
    }
}

func (self *_Filter) test(h uint64) bool {
    if self.n == 0 {
        return true
    } else {
        i := h % self.n
        return self.bits[i / 64] & (1 << (i % 64)) != 0
    }
}

func (self *_Filter) set(h uint64) {
    if self.n != 0 {
        i := h % self.n
        self.bits[i / 64] |= 1 << (i % 64)
    }
}
