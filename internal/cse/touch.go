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

const (
    _TouchStore = 0     // store through a computed address
    _TouchCall  = 1     // function call
)

func (self *_State) kill(i int) {
    if self.tab[i].e != nil {
        self.tracef("kill: %s\n", self.tab[i].e)
        self.tab[i].e = nil
        self.stat.Killed++
    }
}

// reads reports whether the candidate e loads the value of sym, either as a
// symbol read itself or through one of its immediate leaf operands.
func reads(e *el.Elem, sym *el.Symbol) bool {
    if e.Op == el.OPvar {
        return e.V.Sym == sym
    }

    /* check the operands */
    for _, v := range e.Kids() {
        switch v.Op {
            case el.OPvar      : if v.V.Sym == sym { return true }
            case el.OPrelconst : if v.V.Sym == sym && e.Op == el.OPind { return true }
        }
    }
    return false
}

/* a store to sym may be observed through a pointer */
func storeAliased(sym *el.Symbol) bool {
    switch sym.Class {
        case el.SCregister, el.SCregpar, el.SCpseudo:
            return false
        case el.SCauto, el.SCparameter, el.SCfastpar, el.SCshadowreg, el.SCbprel:
            return !sym.Unambig
        case el.SCstatic, el.SCextern, el.SCglobal, el.SClocstat, el.SCcomdat, el.SCcomdef, el.SCinline, el.SCsinline, el.SCeinline:
            return true
        default:
            el.Fatal("storage class %s of %s is not valid here", sym.Class, sym.Name)
            return false
    }
}

/* a called function may write to sym */
func callAliased(sym *el.Symbol) bool {
    if sym.Type.IsConst() {
        return false
    }

    /* check the storage class */
    switch sym.Class {
        case el.SCregister, el.SCregpar:
            return false
        case el.SCauto, el.SCparameter, el.SCfastpar, el.SCshadowreg, el.SCbprel:
            return !sym.Unambig
        case el.SCstatic, el.SCextern, el.SCglobal, el.SClocstat, el.SCcomdat, el.SCcomdef, el.SCinline, el.SCsinline, el.SCeinline, el.SCpseudo:
            return true
        default:
            el.Fatal("storage class %s of %s is not valid here", sym.Class, sym.Name)
            return false
    }
}

func readsGlobal(e *el.Elem) bool {
    if e.Op == el.OPvar {
        return callAliased(e.V.Sym)
    }

    /* check the operands */
    for _, v := range e.Kids() {
        if v.Op == el.OPvar && callAliased(v.V.Sym) {
            return true
        }
    }
    return false
}

// touchLvalue invalidates the candidates made stale by a store to e.
func (self *_State) touchLvalue(e *el.Elem) {
    switch e.Op {
        case el.OPind                 : self.touchFunc(_TouchStore)
        case el.OPvar, el.OPrelconst  : self.touchVar(e.V.Sym)
        default                       : el.Fatal("%s is not an lvalue", e.Op)
    }
}

// touchVar invalidates every candidate reading sym, regardless of the cursors.
func (self *_State) touchVar(sym *el.Symbol) {
    for i := len(self.tab) - 1; i >= 0; i-- {
        if p := self.tab[i].e; p != nil && reads(p, sym) {
            self.kill(i)
        }
    }

    /* indirect reads may have observed it as well */
    if storeAliased(sym) {
        self.touchStar()
    }
}

// touchStar invalidates every candidate reading through a pointer.
func (self *_State) touchStar() {
    for i := self.star; i < len(self.tab); i++ {
        if p := self.tab[i].e; p != nil {
            switch p.Op {
                case el.OPind, el.OPbt: self.kill(i)
            }
        }
    }
    self.star = len(self.tab)
}

// touchFunc invalidates every candidate a call (or a store through a computed
// address) could change.
func (self *_State) touchFunc(flag int) {
    for i := self.fn[flag]; i < len(self.tab); i++ {
        if p := self.tab[i].e; p != nil {
            switch p.Op {
                case el.OPind, el.OPstrlen, el.OPstrcmp, el.OPmemcmp, el.OPbt : self.kill(i)
                default                                                       : if readsGlobal(p) { self.kill(i) }
            }
        }
    }
    self.fn[flag] = len(self.tab)
}

// touchAll invalidates the whole table.
func (self *_State) touchAll() {
    for i := range self.tab {
        self.kill(i)
    }

    /* nothing left to scan */
    self.star  = len(self.tab)
    self.fn[0] = len(self.tab)
    self.fn[1] = len(self.tab)
}
