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

package cgen

import (
    `github.com/chenzhuoyu/iasm/x86_64`
)

const (
    _M1  = 0x5555555555555555
    _M2  = 0x3333333333333333
    _M4  = 0x0f0f0f0f0f0f0f0f
    _H01 = 0x0101010101010101
)

// popcnt counts the bits of RAX into RAX, clobbering RCX and RDX.
func (self *_CodeGen) popcnt(p *x86_64.Program) {
    if self.opts.POPCNT {
        p.POPCNTQ(RAX, RAX)
        return
    }

    /* x -= (x >> 1) & m1 */
    p.MOVQ(RAX, RCX)
    p.SHRQ(1, RCX)
    p.MOVQ(int64(_M1), RDX)
    p.ANDQ(RDX, RCX)
    p.SUBQ(RCX, RAX)

    /* x = (x & m2) + ((x >> 2) & m2) */
    p.MOVQ(int64(_M2), RDX)
    p.MOVQ(RAX, RCX)
    p.ANDQ(RDX, RAX)
    p.SHRQ(2, RCX)
    p.ANDQ(RDX, RCX)
    p.ADDQ(RCX, RAX)

    /* x = (x + (x >> 4)) & m4 */
    p.MOVQ(RAX, RCX)
    p.SHRQ(4, RCX)
    p.ADDQ(RCX, RAX)
    p.MOVQ(int64(_M4), RDX)
    p.ANDQ(RDX, RAX)

    /* x = (x * h01) >> 56 */
    p.MOVQ(int64(_H01), RDX)
    p.IMULQ(RDX, RAX)
    p.SHRQ(56, RAX)
}
