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

package el

import (
    `math`
    `sync`
    `sync/atomic`
)

// MaxCount is the saturation limit of the reference counter.
const MaxCount = 0xff

// Value is the payload of a leaf node.
type Value struct {
    Int int64       // constant bit pattern, or offset for OPvar / OPrelconst
    Sym *Symbol     // referenced symbol
    Str string      // inline assembly text, string literal
}

// Elem is an expression tree node. A parent owns its child slots exclusively
// until CSE makes two slots point at the same node; from then on the node is
// shared, Count tells how many extra references it has, and Free only releases
// it once it is unreferenced.
type Elem struct {
    Op    Op
    Ty    Tym
    Count uint8
    E     [2]*Elem
    V     Value
}

var (
    elemPool sync.Pool
)

var (
    AllocCount uint64
    FreeCount  uint64
)

func newElem(op Op, ty Tym) *Elem {
    atomic.AddUint64(&AllocCount, 1)

    /* reuse a released node if possible */
    if v := elemPool.Get(); v != nil {
        p := v.(*Elem)
        *p = Elem{Op: op, Ty: ty}
        return p
    }
    return &Elem{Op: op, Ty: ty}
}

func freeElem(p *Elem) {
    atomic.AddUint64(&FreeCount, 1)
    *p = Elem{}
    elemPool.Put(p)
}

// Long creates an integer constant.
func Long(ty Tym, v int64) *Elem {
    p := newElem(OPconst, ty)
    p.V.Int = v
    return p
}

// Double creates a floating point constant, stored as its bit pattern.
func Double(ty Tym, v float64) *Elem {
    p := newElem(OPconst, ty)
    p.V.Int = int64(math.Float64bits(v))
    return p
}

// Var creates a read of sym at offset off.
func Var(sym *Symbol, off int64) *Elem {
    p := newElem(OPvar, sym.Type)
    p.V.Sym = sym
    p.V.Int = off
    return p
}

// Relconst creates the address of sym plus off.
func Relconst(sym *Symbol, off int64) *Elem {
    p := newElem(OPrelconst, TYnptr)
    p.V.Sym = sym
    p.V.Int = off
    return p
}

// Asm creates an inline assembly leaf.
func Asm(text string) *Elem {
    p := newElem(OPasm, TYvoid)
    p.V.Str = text
    return p
}

// Leaf creates an arbitrary leaf node without payload.
func Leaf(op Op, ty Tym) *Elem {
    Assert(op.IsLeaf(), "Leaf: %s is not a leaf operator", op)
    return newElem(op, ty)
}

// Un creates a unary node.
func Un(op Op, ty Tym, e1 *Elem) *Elem {
    Assert(op.IsUnary(), "Un: %s is not a unary operator", op)
    p := newElem(op, ty)
    p.E[0] = e1
    return p
}

// Bin creates a binary node.
func Bin(op Op, ty Tym, e1 *Elem, e2 *Elem) *Elem {
    Assert(op.IsBinary(), "Bin: %s is not a binary operator", op)
    p := newElem(op, ty)
    p.E[0] = e1
    p.E[1] = e2
    return p
}

// Kids returns the used child slots of the node.
func (self *Elem) Kids() []*Elem {
    return self.E[:self.Op.Arity()]
}

// IsOne reports whether the node is the integer constant 1.
func (self *Elem) IsOne() bool {
    return self.Op == OPconst && !self.Ty.IsFloating() && self.V.Int == 1
}

// Free releases a node. A shared node only loses one reference.
func Free(e *Elem) {
    for e != nil {
        if e.Count != 0 {
            e.Count--
            return
        }

        /* release the children first */
        next := (*Elem)(nil)
        switch e.Op.Arity() {
            case 2: Free(e.E[1]); fallthrough
            case 1: next = e.E[0]
        }

        /* tail-loop over the first child */
        freeElem(e)
        e = next
    }
}

// Clone makes a deep copy of the tree. Sharing is not preserved and every node
// of the copy starts with a zero counter.
func Clone(e *Elem) *Elem {
    if e == nil {
        return nil
    }

    /* copy the node itself */
    p := newElem(e.Op, e.Ty)
    p.V = e.V

    /* copy all the children */
    for i, v := range e.Kids() {
        p.E[i] = Clone(v)
    }
    return p
}

// Walk visits every node of the tree in post-order. Shared nodes are visited
// once per reference.
func Walk(e *Elem, fn func(*Elem)) {
    if e != nil {
        for _, v := range e.Kids() {
            Walk(v, fn)
        }
        fn(e)
    }
}
