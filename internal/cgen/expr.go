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
    `github.com/cloudwego/cgcs/internal/el`
)

// width returns the size in bytes of an integer or pointer value of type ty.
func width(ty el.Tym) (int, error) {
    switch t := ty.Basic(); {
        case ty.IsFloating()  : return 0, unsupported("floating point type %s", ty)
        case t == el.TYstruct : return 0, unsupported("aggregate type %s", ty)
        case t == el.TYfunc   : return 0, unsupported("function type %s", ty)
        default               : return t.Size(), nil
    }
}

// extend normalizes RAX to a 64-bit value of type ty.
func (self *_CodeGen) extend(p *x86_64.Program, ty el.Tym) error {
    n, err := width(ty)
    if err != nil {
        return err
    }

    /* sign or zero extension */
    switch u := ty.IsUnsigned(); n {
        case 1 : if u { p.MOVZBQ(x86_64.AL, RAX) } else { p.MOVSBQ(x86_64.AL, RAX) }
        case 2 : if u { p.MOVZWQ(x86_64.AX, RAX) } else { p.MOVSWQ(x86_64.AX, RAX) }
        case 4 : if u { p.MOVL(x86_64.EAX, x86_64.EAX) } else { p.MOVSLQ(x86_64.EAX, RAX) }
    }
    return nil
}

// load reads a value of type ty from m into RAX.
func (self *_CodeGen) load(p *x86_64.Program, m *x86_64.MemoryOperand, ty el.Tym) error {
    n, err := width(ty)
    if err != nil {
        return err
    }

    /* select by size */
    switch u := ty.IsUnsigned(); n {
        case 1  : if u { p.MOVZBQ(m, RAX) } else { p.MOVSBQ(m, RAX) }
        case 2  : if u { p.MOVZWQ(m, RAX) } else { p.MOVSWQ(m, RAX) }
        case 4  : if u { p.MOVL(m, x86_64.EAX) } else { p.MOVSLQ(m, RAX) }
        case 8  : p.MOVQ(m, RAX)
        default : return unsupported("load of type %s", ty)
    }
    return nil
}

// store writes RAX as a value of type ty to m.
func (self *_CodeGen) store(p *x86_64.Program, m *x86_64.MemoryOperand, ty el.Tym) error {
    n, err := width(ty)
    if err != nil {
        return err
    }

    /* select by size */
    switch n {
        case 1  : p.MOVB(x86_64.AL, m)
        case 2  : p.MOVW(x86_64.AX, m)
        case 4  : p.MOVL(x86_64.EAX, m)
        case 8  : p.MOVQ(RAX, m)
        default : return unsupported("store of type %s", ty)
    }
    return nil
}

// expr evaluates e into RAX. A shared node is computed and saved to its CSE
// slot the first time, and reloaded from the slot afterwards.
func (self *_CodeGen) expr(p *x86_64.Program, e *el.Elem) error {
    if e.Count == 0 {
        return self.eval(p, e)
    }

    /* already computed */
    if self.done[e] {
        p.MOVQ(self.ctxt.cse(e), RAX)
        self.loads++
        return nil
    }

    /* compute and cache */
    if err := self.eval(p, e); err != nil {
        return err
    }
    p.MOVQ(RAX, self.ctxt.cse(e))
    self.done[e] = true
    return nil
}

func (self *_CodeGen) eval(p *x86_64.Program, e *el.Elem) error {
    switch e.Op {
        case el.OPconst: {
            if e.Ty.IsFloating() {
                return unsupported("floating point constant")
            }
            p.MOVQ(e.V.Int, RAX)
            return nil
        }

        /* symbol reads */
        case el.OPvar: {
            return self.load(p, self.ctxt.sym(e.V.Sym, e.V.Int), e.Ty)
        }

        /* symbol addresses */
        case el.OPrelconst: {
            p.LEAQ(self.ctxt.sym(e.V.Sym, e.V.Int), RAX)
            return nil
        }
    }

    /* operators */
    switch e.Op.Bucket() {
        case el.BucketPlain, el.BucketComma : if e.Op.IsUnary() { return self.unary(p, e) } else { return self.binary(p, e) }
        case el.BucketInd                   : return self.ind(p, e)
        case el.BucketAssign                : return self.assign(p, e)
        case el.BucketNegAssign             : return self.assign(p, e)
        case el.BucketAndOr                 : return self.andor(p, e)
        case el.BucketCond                  : return self.cond(p, e)
        case el.BucketInfo                  : return self.expr(p, e.E[1])
        default                             : return unsupported("operator %s", e.Op)
    }
}

func (self *_CodeGen) ind(p *x86_64.Program, e *el.Elem) error {
    if err := self.expr(p, e.E[0]); err != nil {
        return err
    } else {
        return self.load(p, x86_64.Ptr(RAX, 0), e.Ty)
    }
}

func (self *_CodeGen) unary(p *x86_64.Program, e *el.Elem) error {
    if err := self.expr(p, e.E[0]); err != nil {
        return err
    }

    /* bit counting works on the zero-extended operand */
    switch e.Op {
        case el.OPpopcnt, el.OPbsr: {
            if err := self.extend(p, e.E[0].Ty.Unsigned()); err != nil {
                return err
            }
        }
    }

    /* select the instruction */
    switch e.Op {
        case el.OPneg    : p.NEGQ(RAX)
        case el.OPcom    : p.NOTQ(RAX)
        case el.OPbsf    : p.BSFQ(RAX, RAX)
        case el.OPbsr    : p.BSRQ(RAX, RAX)
        case el.OPpopcnt : self.popcnt(p)
        case el.OPmsw    : p.SHRQ(32, RAX)
        case el.OPnot    : p.TESTQ(RAX, RAX); p.SETE(x86_64.AL); p.MOVZBQ(x86_64.AL, RAX)
        case el.OPbool   : p.TESTQ(RAX, RAX); p.SETNE(x86_64.AL); p.MOVZBQ(x86_64.AL, RAX)

        /* |x| = (x ^ (x >> 63)) - (x >> 63) */
        case el.OPabs: {
            p.MOVQ(RAX, RCX)
            p.SARQ(63, RCX)
            p.XORQ(RCX, RAX)
            p.SUBQ(RCX, RAX)
        }

        /* byte swapping depends on the operand size */
        case el.OPbswap: {
            if n, err := width(e.Ty); err != nil {
                return err
            } else if n == 8 {
                p.BSWAPQ(RAX)
            } else if n == 4 {
                p.BSWAPL(x86_64.EAX)
            } else {
                return unsupported("byte swap of type %s", e.Ty)
            }
        }

        /* the operand is already normalized */
        case el.OPuadd, el.OPvoid, el.OPnullcheck : break
        case el.OPs8_16, el.OPu8_16, el.OP16_8    : break
        case el.OPs16_32, el.OPu16_32, el.OP32_16 : break
        case el.OPs32_64, el.OPu32_64, el.OP64_32 : break

        /* everything else */
        default: {
            return unsupported("operator %s", e.Op)
        }
    }

    /* normalize the result */
    return self.extend(p, e.Ty)
}

func (self *_CodeGen) binary(p *x86_64.Program, e *el.Elem) error {
    if e.Op == el.OPcomma {
        if err := self.expr(p, e.E[0]); err != nil {
            return err
        } else {
            return self.expr(p, e.E[1])
        }
    }

    /* evaluate E1 into RAX and E2 into RCX */
    if err := self.operands(p, e.E[0], e.E[1]); err != nil {
        return err
    }

    /* select the instruction */
    if err := self.arith(p, e.Op, e.E[0].Ty); err != nil {
        return err
    }

    /* normalize the result */
    return self.extend(p, e.Ty)
}

func (self *_CodeGen) operands(p *x86_64.Program, a *el.Elem, b *el.Elem) error {
    if err := self.expr(p, a); err != nil {
        return err
    }

    /* save the first operand on stack */
    p.PUSHQ(RAX)
    if err := self.expr(p, b); err != nil {
        return err
    }

    /* move the operands into place */
    p.MOVQ(RAX, RCX)
    p.POPQ(RAX)
    return nil
}

// arith computes RAX = RAX op RCX, where RAX holds a value of type ty.
func (self *_CodeGen) arith(p *x86_64.Program, op el.Op, ty el.Tym) error {
    switch op {
        case el.OPadd, el.OPaddass, el.OPpostinc, el.OPpreinc : p.ADDQ(RCX, RAX)
        case el.OPmin, el.OPminass, el.OPpostdec, el.OPpredec : p.SUBQ(RCX, RAX)
        case el.OPmul, el.OPmulass                            : p.IMULQ(RCX, RAX)
        case el.OPand, el.OPandass                            : p.ANDQ(RCX, RAX)
        case el.OPor, el.OPorass                              : p.ORQ(RCX, RAX)
        case el.OPxor, el.OPxorass                            : p.XORQ(RCX, RAX)
        case el.OPshl, el.OPshlass                            : p.SHLQ(x86_64.CL, RAX)
        case el.OPashr, el.OPashrass                          : p.SARQ(x86_64.CL, RAX)
        case el.OPbt                                          : p.BTQ(RCX, RAX); p.SETC(x86_64.AL); p.MOVZBQ(x86_64.AL, RAX)
        case el.OPdiv, el.OPdivass                            : self.divide(p, ty, false)
        case el.OPmod, el.OPmodass                            : self.divide(p, ty, true)

        /* logical shift needs the zero-extended value */
        case el.OPshr, el.OPshrass: {
            if err := self.extend(p, ty.Unsigned()); err != nil {
                return err
            }
            p.SHRQ(x86_64.CL, RAX)
        }

        /* rotations are only meaningful on full registers */
        case el.OProl, el.OPror: {
            if n, err := width(ty); err != nil {
                return err
            } else if n != 8 {
                return unsupported("rotation of type %s", ty)
            } else if op == el.OProl {
                p.ROLQ(x86_64.CL, RAX)
            } else {
                p.RORQ(x86_64.CL, RAX)
            }
        }

        /* comparisons */
        case el.OPeqeq, el.OPne, el.OPlt, el.OPle, el.OPgt, el.OPge: {
            p.CMPQ(RCX, RAX)
            self.setcc(p, op, ty.IsUnsigned())
            p.MOVZBQ(x86_64.AL, RAX)
        }

        /* everything else */
        default: {
            return unsupported("operator %s", op)
        }
    }
    return nil
}

func (self *_CodeGen) divide(p *x86_64.Program, ty el.Tym, rem bool) {
    if ty.IsUnsigned() {
        p.XORL(x86_64.EDX, x86_64.EDX)
        p.DIVQ(RCX)
    } else {
        p.CQTO()
        p.IDIVQ(RCX)
    }

    /* the remainder is in RDX */
    if rem {
        p.MOVQ(RDX, RAX)
    }
}

func (self *_CodeGen) setcc(p *x86_64.Program, op el.Op, unsigned bool) {
    switch op {
        case el.OPeqeq : p.SETE(x86_64.AL)
        case el.OPne   : p.SETNE(x86_64.AL)
        case el.OPlt   : if unsigned { p.SETB(x86_64.AL)  } else { p.SETL(x86_64.AL)  }
        case el.OPle   : if unsigned { p.SETBE(x86_64.AL) } else { p.SETLE(x86_64.AL) }
        case el.OPgt   : if unsigned { p.SETA(x86_64.AL)  } else { p.SETG(x86_64.AL)  }
        case el.OPge   : if unsigned { p.SETAE(x86_64.AL) } else { p.SETGE(x86_64.AL) }
    }
}

func (self *_CodeGen) andor(p *x86_64.Program, e *el.Elem) error {
    done := self.label("andor_end")
    skip := self.label("andor_skip")

    /* short-circuit on either operand */
    for _, v := range e.Kids() {
        if err := self.expr(p, v); err != nil {
            return err
        }
        if p.TESTQ(RAX, RAX); e.Op == el.OPandand {
            p.JZ(skip)
        } else {
            p.JNZ(skip)
        }
    }

    /* materialize the result */
    if e.Op == el.OPandand {
        p.MOVQ(1, RAX)
        p.JMP(done)
        p.Link(skip)
        p.XORL(x86_64.EAX, x86_64.EAX)
    } else {
        p.XORL(x86_64.EAX, x86_64.EAX)
        p.JMP(done)
        p.Link(skip)
        p.MOVQ(1, RAX)
    }

    /* end of the expression */
    p.Link(done)
    return nil
}

func (self *_CodeGen) cond(p *x86_64.Program, e *el.Elem) error {
    c := e.E[1]
    done := self.label("cond_end")
    other := self.label("cond_else")

    /* must have two arms */
    if c.Op != el.OPcolon {
        return unsupported("conditional without arms")
    }

    /* evaluate the condition */
    if err := self.expr(p, e.E[0]); err != nil {
        return err
    }

    /* the true arm */
    p.TESTQ(RAX, RAX)
    p.JZ(other)
    if err := self.expr(p, c.E[0]); err != nil {
        return err
    }

    /* the false arm */
    p.JMP(done)
    p.Link(other)
    if err := self.expr(p, c.E[1]); err != nil {
        return err
    }

    /* end of the expression */
    p.Link(done)
    return nil
}

// assign evaluates the value before the address of the lvalue, matching the
// order the CSE pass walks the tree in.
func (self *_CodeGen) assign(p *x86_64.Program, e *el.Elem) error {
    lv := e.E[0]
    val := e.Op != el.OPnegass

    /* aggregates are not supported */
    if e.Op == el.OPstreq {
        return unsupported("struct assignment")
    }

    /* evaluate the value */
    if val {
        if err := self.expr(p, e.E[1]); err != nil {
            return err
        }
    }

    /* locate the lvalue */
    m, err := self.lvalue(p, lv, val)
    if err != nil {
        return err
    }

    /* plain store */
    if e.Op == el.OPeq {
        if err = self.store(p, m, lv.Ty); err != nil {
            return err
        } else {
            return self.written(p, e)
        }
    }

    /* read-modify-write */
    if val { p.MOVQ(RAX, RCX) }
    if err = self.load(p, m, lv.Ty); err != nil {
        return err
    }

    /* keep the old value of x++ and x-- */
    if e.Op.IsPost() {
        p.MOVQ(RAX, RDI)
    }

    /* compute the new value */
    if e.Op == el.OPnegass {
        p.NEGQ(RAX)
    } else if err = self.arith(p, e.Op, lv.Ty); err != nil {
        return err
    }

    /* write it back */
    if err = self.store(p, m, lv.Ty); err != nil {
        return err
    }

    /* result of x++ and x-- */
    if e.Op.IsPost() {
        p.MOVQ(RDI, RAX)
        return nil
    }
    return self.written(p, e)
}

// lvalue returns the memory operand of lv. The value in RAX is preserved if
// keep is set.
func (self *_CodeGen) lvalue(p *x86_64.Program, lv *el.Elem, keep bool) (*x86_64.MemoryOperand, error) {
    switch lv.Op {
        case el.OPvar: {
            return self.ctxt.sym(lv.V.Sym, lv.V.Int), nil
        }

        /* computed address in RSI */
        case el.OPind: {
            if keep { p.PUSHQ(RAX) }
            if err := self.expr(p, lv.E[0]); err != nil {
                return nil, err
            }
            p.MOVQ(RAX, RSI)
            if keep { p.POPQ(RAX) }
            return x86_64.Ptr(RSI, 0), nil
        }

        /* everything else */
        default: {
            return nil, unsupported("lvalue %s", lv.Op)
        }
    }
}

// written normalizes the stored value in RAX, and caches it if the lvalue was
// registered as a common subexpression.
func (self *_CodeGen) written(p *x86_64.Program, e *el.Elem) error {
    lv := e.E[0]
    if err := self.extend(p, lv.Ty); err != nil {
        return err
    }

    /* later reads of the lvalue load the cached value */
    if lv.Count != 0 && !self.done[lv] {
        p.MOVQ(RAX, self.ctxt.cse(lv))
        self.done[lv] = true
    }
    return nil
}
