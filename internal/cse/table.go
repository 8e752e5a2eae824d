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

import (
    `unsafe`

    `github.com/cloudwego/cgcs/internal/el`
)

const (
    _HashMul = 0x9e3779b97f4a7c15
)

type _Hcs struct {
    e    *el.Elem       // nil once the entry is tombstoned
    hash uint64
}

type _Snapshot struct {
    top  int
    star int
    fn   [2]int
}

// shareable reports whether a value of type ty may be computed once and reused.
func shareable(ty el.Tym) bool {
    switch {
        case ty.IsVolatile()           : return false
        case ty.IsFloating()           : return false
        case ty.Basic() == el.TYvoid   : return false
        case ty.Basic() == el.TYstruct : return false
        default                        : return true
    }
}

// stableLeaf reports whether a leaf operand denotes the same value wherever it
// occurs, as long as nothing in between writes to its symbol.
func stableLeaf(e *el.Elem) bool {
    switch e.Op {
        case el.OPconst, el.OPvar, el.OPrelconst : return shareable(e.Ty)
        default                                  : return false
    }
}

func leafhash(e *el.Elem) uint64 {
    h := uint64(e.V.Int)
    h = h * _HashMul + uint64(uintptr(unsafe.Pointer(e.V.Sym)))
    h = h * _HashMul + uint64(len(e.V.Str))
    return h
}

/* leaves are hashed by content, operators by identity */
func kidhash(e *el.Elem) uint64 {
    if e.Op.IsLeaf() {
        return comphash(e)
    } else {
        return uint64(uintptr(unsafe.Pointer(e)))
    }
}

func comphash(e *el.Elem) uint64 {
    h := uint64(e.Ty) | uint64(e.Op) << 16

    /* leaf node */
    if e.Op.IsLeaf() {
        return h * _HashMul + leafhash(e)
    }

    /* mix in the operands */
    for _, v := range e.Kids() {
        h = h * _HashMul + kidhash(v)
    }
    return h
}

// stable reports whether every operand of the candidate c has already been
// proven to be the same value as the corresponding operand of e.
func stable(e *el.Elem, c *el.Elem) bool {
    for i, v := range e.Kids() {
        if v.Op.IsLeaf() {
            if !stableLeaf(v) {
                return false
            }
        } else if c.E[i] != v || v.Count == 0 {
            return false
        }
    }
    return true
}

func (self *_State) save() _Snapshot {
    return _Snapshot {
        top  : len(self.tab),
        star : self.star,
        fn   : self.fn,
    }
}

func (self *_State) restore(sv _Snapshot) {
    for i := sv.top; i < len(self.tab); i++ {
        self.tab[i] = _Hcs{}
    }

    /* drop everything found in the skipped branch */
    self.tab  = self.tab[:sv.top]
    self.star = sv.star
    self.fn   = sv.fn
}

func (self *_State) add(e *el.Elem, h uint64) {
    self.vec.set(h)
    self.tab = append(self.tab, _Hcs { e: e, hash: h })
    self.stat.Inserted++
}

// lookup either replaces *pe with an equivalent live candidate, or registers
// it as a new one.
func (self *_State) lookup(pe **el.Elem) {
    e := *pe
    h := comphash(e)

    /* definitely not in the table */
    if !self.vec.test(h) {
        self.tracef("elem: %s hash: %#x\n", e, h)
        self.add(e, h)
        return
    }

    /* search backwards, newest candidates first */
    for i := len(self.tab) - 1; i >= 0; i-- {
        p := self.tab[i].e

        /* skip tombstones and obvious mismatches */
        if p == nil || self.tab[i].hash != h {
            continue
        }

        /* the operands must be the very same values */
        if !stable(e, p) || !el.Match(e, p, el.MatchStrict) {
            continue
        }

        /* counter saturated, look for an older copy */
        if p.Count >= el.MaxCount {
            self.stat.Saturated++
            continue
        }

        /* merge with the candidate */
        self.tracef("**MATCH** %s\n", p)
        p.Count++
        *pe = p
        el.Free(e)
        self.stat.Merged++
        return
    }

    /* no usable candidate */
    self.tracef("elem: %s hash: %#x\n", e, h)
    self.add(e, h)
}
