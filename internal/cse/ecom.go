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
    `github.com/cloudwego/cgcs/internal/el`
)

func (self *_State) enter(e *el.Elem) {
    if _, ok := self.path[e]; ok {
        el.Fatal("expression tree contains a cycle through %p", e)
    }
    self.path[e] = struct{}{}
}

func (self *_State) leave(e *el.Elem) {
    delete(self.path, e)
}

// ecom walks the tree at *pe in evaluation order, replacing subexpressions
// with equivalent live candidates and registering new ones.
func (self *_State) ecom(pe **el.Elem) {
    e := *pe
    el.Assert(e != nil, "ecom: nil expression")
    el.Assert(e.Count == 0, "ecom: %s is already shared", e)
    self.stat.Visited++

    /* leaves are never candidates */
    if e.Op.IsLeaf() {
        return
    }

    /* the subtree is walked exactly once */
    self.enter(e)
    ok := self.visit(e)
    self.leave(e)

    /* look it up in the table */
    if ok && shareable(e.Ty) {
        self.lookup(pe)
    }
}

// visit walks the operands of e according to the class of its operator, and
// reports whether e itself may become a candidate.
func (self *_State) visit(e *el.Elem) bool {
    switch e.Op.Bucket() {
        case el.BucketPlain, el.BucketComma: {
            for i := range e.Kids() {
                self.ecom(&e.E[i])
            }
            return true
        }

        /* floating point loads are never shared */
        case el.BucketInd: {
            self.ecom(&e.E[0])
            return !e.Ty.IsFloating()
        }

        /* assignments */
        case el.BucketAssign    : self.assign(e)
        case el.BucketNegAssign : self.store(e)

        /* E2 may not be evaluated */
        case el.BucketAndOr: {
            self.ecom(&e.E[0])
            sv := self.save()
            self.ecom(&e.E[1])
            self.restore(sv)
        }

        /* only one arm of E2 is evaluated */
        case el.BucketCond: {
            c := e.E[1]
            el.Assert(c.Op == el.OPcolon, "ecom: %s has no colon", e.Op)
            self.ecom(&e.E[0])
            sv := self.save()
            self.ecom(&c.E[0])
            self.restore(sv)
            self.ecom(&c.E[1])
            self.restore(sv)
        }

        /* arguments are evaluated before the function address */
        case el.BucketCall: {
            self.ecom(&e.E[1])
            self.ecom(&e.E[0])
            self.touchFunc(_TouchCall)
        }

        /* function calls without arguments */
        case el.BucketUCall: {
            self.ecom(&e.E[0])
            self.touchFunc(_TouchCall)
        }

        /* evaluated, but never shared */
        case el.BucketOpaqueArg: self.ecom(&e.E[0])
        case el.BucketOpaque: break

        /* anything may happen around a deferred destructor */
        case el.BucketDDtor: {
            self.touchAll()
            self.ecom(&e.E[0])
            self.touchAll()
        }

        /* argument lists */
        case el.BucketParam: {
            self.ecom(&e.E[0])
            self.ecom(&e.E[1])
        }

        /* only E2 is code */
        case el.BucketInfo: {
            self.ecom(&e.E[1])
        }

        /* memory operations write through computed addresses */
        case el.BucketMemOp: {
            self.ecom(&e.E[1])
            self.ecom(&e.E[0])
            self.touchFunc(_TouchStore)
        }

        /* setjmp writes to its buffer */
        case el.BucketSetjmp: {
            self.ecom(&e.E[0])
            self.touchFunc(_TouchStore)
        }

        /* bit test and modify */
        case el.BucketBitModify: {
            self.ecom(&e.E[0])
            self.ecom(&e.E[1])
            self.touchFunc(_TouchStore)
        }

        /* should have been lowered before */
        default: {
            el.Fatal("ecom: unexpected operator %s", e.Op)
        }
    }
    return false
}

// address walks the address computation of an lvalue.
func (self *_State) address(lv *el.Elem) {
    if !lv.Op.IsLeaf() {
        el.Assert(lv.Op == el.OPind, "ecom: %s is not an lvalue", lv.Op)
        self.ecom(&lv.E[0])
    }
}

func (self *_State) assign(e *el.Elem) {
    if e.Op != el.OPeq && e.Ty.Basic() == el.TYdouble && self.opts.SwapDoubleOpAssign {
        self.address(e.E[0])
        self.ecom(&e.E[1])
        self.write(e)
        return
    }

    /* x++ and x-- by one need no value */
    if !e.Op.IsPost() || !e.E[1].IsOne() {
        self.ecom(&e.E[1])
    }

    /* then the lvalue */
    self.store(e)
}

func (self *_State) store(e *el.Elem) {
    self.address(e.E[0])
    self.write(e)
}

// write invalidates whatever the store by e makes stale, then registers the
// address computation of the lvalue, so that later reads can reuse it.
func (self *_State) write(e *el.Elem) {
    lv := e.E[0]
    self.touchLvalue(lv)

    /* the value before an increment is never reused */
    if !e.Op.IsPost() && !lv.Op.IsLeaf() {
        self.add(lv, comphash(lv))
    }
}
