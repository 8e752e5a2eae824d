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
    `errors`
    `fmt`
    `sync/atomic`

    `github.com/chenzhuoyu/iasm/x86_64`
    `github.com/cloudwego/cgcs/internal/block`
    `github.com/cloudwego/cgcs/internal/el`
    `github.com/cloudwego/cgcs/internal/opts`
)

var (
    // ErrUnsupported is returned for constructs the code generator cannot
    // lower: floating point, aggregates, calls and multi-way branches.
    ErrUnsupported = errors.New("cgen: unsupported construct")
)

var (
    FnCount   uint64
    CodeSize  uint64
    LoadCount uint64
    labelSeq  uint64
)

// Code is the machine code of one function.
type Code struct {
    Name  string
    Text  []byte
    Slots int     // symbol slots in the frame
    CSEs  int     // CSE slots in the frame
    Loads int     // evaluations served from a CSE slot
}

type _CodeGen struct {
    fn    *block.Func
    opts  *opts.Options
    ctxt  *_Frame
    exit  *x86_64.Label
    done  map[*el.Elem]bool
    jmps  map[*block.Block]*x86_64.Label
    loads int
}

func unsupported(format string, args ...interface{}) error {
    return fmt.Errorf("%w: " + format, append([]interface{}{ ErrUnsupported }, args...)...)
}

// Generate lowers fn to x86-64 machine code. Every node with a non-zero
// reference counter is evaluated once, on its first occurrence in layout
// order, and loaded from its CSE slot afterwards.
func Generate(fn *block.Func, o *opts.Options) (ret *Code, err error) {
    cc := &_CodeGen {
        fn   : fn,
        opts : o,
        ctxt : newFrame(fn),
        done : make(map[*el.Elem]bool),
        jmps : make(map[*block.Block]*x86_64.Label),
    }

    /* generate the program */
    p := x86_64.DefaultArch.CreateProgram()
    defer p.Free()

    /* translate the function */
    if err = cc.generate(p); err != nil {
        return nil, err
    }

    /* assemble the final code */
    ret = &Code {
        Name  : fn.Name,
        Text  : append([]byte(nil), p.Assemble(0)...),
        Slots : len(cc.ctxt.syms),
        CSEs  : len(cc.ctxt.cses),
        Loads : cc.loads,
    }

    /* update the counters */
    atomic.AddUint64(&FnCount, 1)
    atomic.AddUint64(&CodeSize, uint64(len(ret.Text)))
    atomic.AddUint64(&LoadCount, uint64(cc.loads))
    return ret, nil
}

func (self *_CodeGen) label(name string) *x86_64.Label {
    return x86_64.CreateLabel(fmt.Sprintf("_%s_%d", name, atomic.AddUint64(&labelSeq, 1)))
}

func (self *_CodeGen) to(bb *block.Block) *x86_64.Label {
    if p, ok := self.jmps[bb]; ok {
        return p
    }

    /* create a new label if not */
    p := self.label(bb.String())
    self.jmps[bb] = p
    return p
}

func (self *_CodeGen) generate(p *x86_64.Program) error {
    self.exit = self.label("exit")

    /* program prologue */
    p.PUSHQ(RBP)
    p.MOVQ(RSP, RBP)
    if n := self.ctxt.size(); n != 0 {
        p.SUBQ(n, RSP)
    }

    /* translate all the blocks in layout order */
    for i, bb := range self.fn.Blocks {
        var next *block.Block
        if i + 1 < len(self.fn.Blocks) {
            next = self.fn.Blocks[i + 1]
        }

        /* translate the block */
        p.Link(self.to(bb))
        if err := self.block(p, bb, next); err != nil {
            return fmt.Errorf("%s: %s: %w", self.fn.Name, bb, err)
        }
    }

    /* program epilogue */
    p.Link(self.exit)
    p.MOVQ(RBP, RSP)
    p.POPQ(RBP)
    p.RET()
    return nil
}

func (self *_CodeGen) jump(p *x86_64.Program, to *block.Block, next *block.Block) {
    if to != next {
        p.JMP(self.to(to))
    }
}

func (self *_CodeGen) block(p *x86_64.Program, bb *block.Block, next *block.Block) error {
    switch bb.Kind {
        case block.BCswitch : return unsupported("switch blocks")
        case block.BCasm    : p.NOP()
    }

    /* evaluate the tree of the block, if any */
    if bb.Elem != nil {
        if err := self.expr(p, bb.Elem); err != nil {
            return err
        }
    }

    /* transfer the control */
    switch bb.Kind {
        case block.BCgoto, block.BCasm: {
            if len(bb.Succ) != 0 {
                self.jump(p, bb.Succ[0], next)
            }
        }

        /* conditional branch */
        case block.BCiftrue: {
            if bb.Elem == nil || len(bb.Succ) != 2 {
                return unsupported("malformed conditional block")
            }
            p.TESTQ(RAX, RAX)
            p.JNZ(self.to(bb.Succ[0]))
            self.jump(p, bb.Succ[1], next)
        }

        /* function exits */
        case block.BCret, block.BCretexp, block.BCexit: {
            if next != nil {
                p.JMP(self.exit)
            }
        }
    }
    return nil
}
