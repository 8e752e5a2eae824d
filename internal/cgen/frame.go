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
    `github.com/cloudwego/cgcs/internal/block`
    `github.com/cloudwego/cgcs/internal/el`
    `github.com/oleiade/lane`
)

const (
    PtrSize = 8
)

const (
    RAX = x86_64.RAX
    RCX = x86_64.RCX
    RDX = x86_64.RDX
    RBP = x86_64.RBP
    RSP = x86_64.RSP
    RSI = x86_64.RSI
    RDI = x86_64.RDI
)

/** Frame Structure of the Generated Function
 *
 *                 (Previous Frame)
 *              ------------------------
 *                    Return PC
 *              ------------------------
 *                    Saved RBP
 *         RBP ------------------------
 *                  Symbol Slots            |
 *              ------------------------    | (decrease)
 *                    CSE Slots             ↓
 *         RSP ------------------------
 *                 Temporary Values
 */

type _Frame struct {
    syms []*el.Symbol
    cses []*el.Elem
    symi map[*el.Symbol]int32
    csei map[*el.Elem]int32
}

func newFrame(fn *block.Func) *_Frame {
    ret := &_Frame {
        symi: make(map[*el.Symbol]int32),
        csei: make(map[*el.Elem]int32),
    }

    /* scan every tree of the function */
    for _, bb := range fn.Blocks {
        if bb.Elem != nil {
            ret.scan(bb.Elem)
        }
    }
    return ret
}

func (self *_Frame) scan(root *el.Elem) {
    q := lane.NewStack()
    q.Push(root)

    /* non-recursive DFS, shared nodes are entered once */
    for !q.Empty() {
        e := q.Pop().(*el.Elem)
        if e == nil {
            continue
        }

        /* symbols referenced by the leaves */
        if e.Op == el.OPvar || e.Op == el.OPrelconst {
            self.symbol(e.V.Sym)
            continue
        }

        /* allocate a slot for shared nodes */
        if e.Count != 0 {
            if _, ok := self.csei[e]; ok {
                continue
            }
            self.csei[e] = int32(len(self.cses))
            self.cses = append(self.cses, e)
        }

        /* push children in reverse order so they are visited in order */
        for i := e.Op.Arity() - 1; i >= 0; i-- {
            q.Push(e.E[i])
        }
    }
}

func (self *_Frame) symbol(sym *el.Symbol) {
    if _, ok := self.symi[sym]; !ok {
        self.symi[sym] = int32(len(self.syms))
        self.syms = append(self.syms, sym)
    }
}

func (self *_Frame) slots() int {
    return len(self.syms) + len(self.cses)
}

// size is the frame size below the saved RBP, rounded so that RSP stays 16-byte aligned.
func (self *_Frame) size() int32 {
    return int32((self.slots() + 1) &^ 1) * PtrSize
}

func (self *_Frame) sym(sym *el.Symbol, off int64) *x86_64.MemoryOperand {
    return x86_64.Ptr(RBP, -(self.symi[sym] + 1) * PtrSize + int32(off))
}

func (self *_Frame) cse(e *el.Elem) *x86_64.MemoryOperand {
    return x86_64.Ptr(RBP, -(int32(len(self.syms)) + self.csei[e] + 1) * PtrSize)
}
