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

package block

import (
    `fmt`

    `github.com/cloudwego/cgcs/internal/el`
    `github.com/oleiade/lane`
)

// Kind tells how a block transfers control to its successors.
type Kind uint8

const (
    BCgoto Kind = iota  // unconditional jump to Succ[0]
    BCiftrue            // Succ[0] if Elem is non-zero, Succ[1] otherwise
    BCret               // return without value
    BCretexp            // return the value of Elem
    BCexit              // never returns
    BCasm               // inline assembly, successors are opaque
    BCswitch            // multi-way branch on Elem
)

var _KindNames = [...]string {
    BCgoto   : "goto",
    BCiftrue : "iftrue",
    BCret    : "ret",
    BCretexp : "retexp",
    BCexit   : "exit",
    BCasm    : "asm",
    BCswitch : "switch",
}

func (self Kind) String() string {
    if int(self) < len(_KindNames) {
        return _KindNames[self]
    } else {
        return fmt.Sprintf("Kind(%d)", uint8(self))
    }
}

// ParseKind looks up a block kind by name.
func ParseKind(s string) (Kind, bool) {
    for i, v := range _KindNames {
        if v == s {
            return Kind(i), true
        }
    }
    return 0, false
}

// Block is a basic block: one optional expression tree evaluated on entry,
// followed by a transfer of control.
type Block struct {
    Id   int
    Name string
    Kind Kind
    Elem *el.Elem
    Succ []*Block
    Pred []*Block
}

func (self *Block) String() string {
    if self.Name != "" {
        return self.Name
    } else {
        return fmt.Sprintf("bb_%d", self.Id)
    }
}

// Func is a function body: its blocks in layout order, Blocks[0] is the entry.
type Func struct {
    Name   string
    Blocks []*Block
}

// NewBlock appends a new block to the layout.
func (self *Func) NewBlock(name string, kind Kind, e *el.Elem) *Block {
    bb := &Block {
        Id   : len(self.Blocks),
        Name : name,
        Kind : kind,
        Elem : e,
    }
    self.Blocks = append(self.Blocks, bb)
    return bb
}

// Link appends successors to a block and records the reverse edges.
func Link(from *Block, to ...*Block) {
    for _, bb := range to {
        from.Succ = append(from.Succ, bb)
        bb.Pred = append(bb.Pred, from)
    }
}

// Entry returns the entry block of the function, or nil if it is empty.
func (self *Func) Entry() *Block {
    if len(self.Blocks) == 0 {
        return nil
    } else {
        return self.Blocks[0]
    }
}

// Prune removes blocks unreachable from the entry, frees their trees and
// rebuilds every predecessor list from the successor lists. Block IDs are
// renumbered to match the new layout.
func (self *Func) Prune() int {
    if len(self.Blocks) == 0 {
        return 0
    }

    /* mark all reachable blocks with BFS */
    q := lane.NewQueue()
    m := map[*Block]struct{}{ self.Blocks[0]: {} }

    /* traverse the graph */
    for q.Enqueue(self.Blocks[0]); !q.Empty(); {
        p := q.Dequeue().(*Block)
        p.Pred = p.Pred[:0]

        /* add all successors into queue */
        for _, r := range p.Succ {
            if _, ok := m[r]; !ok {
                m[r] = struct{}{}
                q.Enqueue(r)
            }
        }
    }

    /* drop the unreachable blocks, keeping the layout order */
    nb := 0
    bbs := self.Blocks[:0]
    for _, bb := range self.Blocks {
        if _, ok := m[bb]; ok {
            bb.Id = len(bbs)
            bbs = append(bbs, bb)
        } else {
            el.Free(bb.Elem)
            bb.Elem, bb.Succ, bb.Pred = nil, nil, nil
            nb++
        }
    }

    /* rebuild the predecessor lists */
    for i := len(bbs); i < len(self.Blocks); i++ {
        self.Blocks[i] = nil
    }
    for _, bb := range bbs {
        for _, s := range bb.Succ {
            s.Pred = append(s.Pred, bb)
        }
    }

    /* update the layout */
    self.Blocks = bbs
    return nb
}
