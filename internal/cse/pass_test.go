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
    `strings`
    `testing`

    `github.com/cloudwego/cgcs/internal/block`
    `github.com/cloudwego/cgcs/internal/el`
    `github.com/cloudwego/cgcs/internal/opts`
    `github.com/stretchr/testify/require`
)

func testSymbols() el.SymbolTable {
    return el.SymbolTable {
        "a": { Name: "a", Class: el.SCauto, Type: el.TYint, Unambig: true },
        "b": { Name: "b", Class: el.SCauto, Type: el.TYint, Unambig: true },
        "t": { Name: "t", Class: el.SCauto, Type: el.TYint, Unambig: true },
        "y": { Name: "y", Class: el.SCauto, Type: el.TYint, Unambig: true },
        "z": { Name: "z", Class: el.SCauto, Type: el.TYint, Unambig: true },
        "s": { Name: "s", Class: el.SCauto, Type: el.TYint },
        "r": { Name: "r", Class: el.SCregister, Type: el.TYint },
        "p": { Name: "p", Class: el.SCparameter, Type: el.TYnptr, Unambig: true },
        "q": { Name: "q", Class: el.SCparameter, Type: el.TYnptr, Unambig: true },
        "d": { Name: "d", Class: el.SCauto, Type: el.TYdouble, Unambig: true },
        "v": { Name: "v", Class: el.SCauto, Type: el.TYint | el.MtyVolatile, Unambig: true },
        "g": { Name: "g", Class: el.SCglobal, Type: el.TYint },
        "k": { Name: "k", Class: el.SCstatic, Type: el.TYint | el.MtyConst },
        "f": { Name: "f", Class: el.SCextern, Type: el.TYfunc },
    }
}

// straight builds a function with one block per tree, chained with gotos.
func straight(t *testing.T, srcs ...string) *block.Func {
    fn := &block.Func{Name: t.Name()}
    syms := testSymbols()

    /* one block per tree */
    for _, src := range srcs {
        fn.NewBlock("", block.BCgoto, el.MustParse(src, syms))
    }

    /* chain them up, the last one returns */
    for i := 1; i < len(fn.Blocks); i++ {
        block.Link(fn.Blocks[i - 1], fn.Blocks[i])
    }
    fn.Blocks[len(fn.Blocks) - 1].Kind = block.BCret
    return fn
}

func testOptions() *opts.Options {
    return &opts.Options{FilterSize: 16001}
}

func dump(fn *block.Func) string {
    var sb strings.Builder
    pr := el.NewPrinter(&sb)

    /* print with a shared printer so labels are global */
    for i, bb := range fn.Blocks {
        if i != 0 {
            sb.WriteByte('\n')
        }
        pr.Print(bb.Elem)
    }
    return sb.String()
}

func requireICE(t *testing.T, fn func()) {
    defer func() {
        v := recover()
        require.NotNil(t, v, "expected an internal compiler error")
        require.IsType(t, &el.InternalError{}, v)
    }()
    fn()
}

func TestComsubs_Merge(t *testing.T) {
    fn := straight(t,
        "(= y (+ a b))",
        "(= z (+ a b))",
    )
    st := Comsubs(fn, testOptions())
    require.Equal(t, 1, st.Merged)
    require.Equal(t, 1, st.EBBs)
    require.Same(t, fn.Blocks[0].Elem.E[1], fn.Blocks[1].Elem.E[1])
    require.Equal(t, uint8(1), fn.Blocks[0].Elem.E[1].Count)
    require.Equal(t, "(= y %1=(+ a b))\n(= z %1)", dump(fn))
}

func TestComsubs_MergeWithoutFilter(t *testing.T) {
    for _, n := range []int { 0, 1, 7 } {
        fn := straight(t,
            "(= y (+ a b))",
            "(= t (* a b))",
            "(= z (+ a b))",
            "(= y (* a b))",
        )
        st := Comsubs(fn, &opts.Options{FilterSize: n})
        require.Equal(t, 2, st.Merged, "filter size %d", n)
    }
}

func TestComsubs_NestedMerge(t *testing.T) {
    fn := straight(t,
        "(= y (+ (ind p) 1))",
        "(= z (+ (ind p) 1))",
    )
    st := Comsubs(fn, testOptions())
    require.Equal(t, 2, st.Merged)
    require.Equal(t, "(= y %1=(+ (ind p) 1))\n(= z %1)", dump(fn))
    require.Equal(t, uint8(0), fn.Blocks[0].Elem.E[1].E[0].Count)
}

func TestComsubs_ChildrenMustBeShared(t *testing.T) {
    fn := straight(t,
        "(= y (+ (ind p) 1))",
        "(= (ind q) 7)",
        "(= z (+ (ind p) 1))",
    )
    st := Comsubs(fn, testOptions())
    require.Equal(t, 0, st.Merged)
    require.Equal(t, "(= y (+ (ind p) 1))\n(= (ind q) 7)\n(= z (+ (ind p) 1))", dump(fn))
}

func TestComsubs_DirectStore(t *testing.T) {
    fn := straight(t,
        "(= y (+ a b))",
        "(= a 1)",
        "(= z (+ a b))",
    )
    require.Equal(t, 0, Comsubs(fn, testOptions()).Merged)
}

func TestComsubs_PostIncrement(t *testing.T) {
    fn := straight(t,
        "(= y (+ a b))",
        "(post++ a 1)",
        "(= z (+ a b))",
    )
    require.Equal(t, 0, Comsubs(fn, testOptions()).Merged)
}

func TestComsubs_UnambiguousStore(t *testing.T) {
    fn := straight(t,
        "(= y (ind p))",
        "(= a 1)",
        "(= z (ind p))",
    )
    require.Equal(t, 1, Comsubs(fn, testOptions()).Merged)
}

func TestComsubs_AliasedStore(t *testing.T) {
    for _, sym := range []string { "s", "g" } {
        fn := straight(t,
            "(= y (ind p))",
            "(= " + sym + " 1)",
            "(= z (ind p))",
        )
        require.Equal(t, 0, Comsubs(fn, testOptions()).Merged, "store to %s", sym)
    }
}

func TestComsubs_RegisterStore(t *testing.T) {
    fn := straight(t,
        "(= y (+ (ind p) r))",
        "(= r 1)",
        "(= z (ind p))",
    )
    require.Equal(t, 1, Comsubs(fn, testOptions()).Merged)
}

func TestComsubs_IndirectStore(t *testing.T) {
    fn := straight(t,
        "(= y (+ (ind p) b))",
        "(= (ind q) 1)",
        "(= z (+ (ind p) b))",
    )
    require.Equal(t, 0, Comsubs(fn, testOptions()).Merged)
}

func TestComsubs_StoredValueReused(t *testing.T) {
    fn := straight(t,
        "(= (ind p) 5)",
        "(= y (ind p))",
    )
    require.Equal(t, 1, Comsubs(fn, testOptions()).Merged)
    require.Same(t, fn.Blocks[0].Elem.E[0], fn.Blocks[1].Elem.E[1])
}

func TestComsubs_CallsNeverCached(t *testing.T) {
    fn := straight(t,
        "(= y (ucall &f))",
        "(= z (ucall &f))",
        "(= y (call &f (param a b)))",
        "(= z (call &f (param a b)))",
    )
    st := Comsubs(fn, testOptions())
    require.Equal(t, 0, st.Merged)
}

func TestComsubs_CallInvalidation(t *testing.T) {
    fn := straight(t,
        "(= y (+ g 1))",
        "(= t (+ a 1))",
        "(= t (+ k 1))",
        "(= y (ind p))",
        "(ucall &f)",
        "(= z (+ g 1))",
        "(= z (+ a 1))",
        "(= z (+ k 1))",
        "(= z (ind p))",
    )
    st := Comsubs(fn, testOptions())
    require.Equal(t, 2, st.Merged)
    require.Same(t, fn.Blocks[1].Elem.E[1], fn.Blocks[6].Elem.E[1])
    require.Same(t, fn.Blocks[2].Elem.E[1], fn.Blocks[7].Elem.E[1])
    require.NotSame(t, fn.Blocks[0].Elem.E[1], fn.Blocks[5].Elem.E[1])
    require.NotSame(t, fn.Blocks[3].Elem.E[1], fn.Blocks[8].Elem.E[1])
}

func TestComsubs_StringOps(t *testing.T) {
    fn := straight(t,
        "(= y (strlen p))",
        "(memset p (param a b))",
        "(= z (strlen p))",
    )
    require.Equal(t, 0, Comsubs(fn, testOptions()).Merged)
}

func TestComsubs_AndAndRollback(t *testing.T) {
    fn := straight(t,
        "(= y (&& a (+ b 1)))",
        "(= z (+ b 1))",
    )
    require.Equal(t, 0, Comsubs(fn, testOptions()).Merged)
    fn = straight(t,
        "(= y (&& (+ b 1) a))",
        "(= z (+ b 1))",
    )
    require.Equal(t, 1, Comsubs(fn, testOptions()).Merged)
}

func TestComsubs_CondRollback(t *testing.T) {
    fn := straight(t,
        "(= y (? a (: (+ b 1) (+ b 1))))",
        "(= z (+ b 1))",
    )
    require.Equal(t, 0, Comsubs(fn, testOptions()).Merged)
    fn = straight(t,
        "(= y (? (+ b 1) (: (+ b 1) (+ b 1))))",
    )
    require.Equal(t, 2, Comsubs(fn, testOptions()).Merged)
}

func TestComsubs_Saturation(t *testing.T) {
    srcs := make([]string, el.MaxCount + 3)
    for i := range srcs {
        srcs[i] = "(= y (+ a b))"
    }

    /* the 257th copy starts a fresh candidate */
    fn := straight(t, srcs...)
    st := Comsubs(fn, testOptions())
    require.Equal(t, el.MaxCount + 1, st.Merged)
    require.Equal(t, 1, st.Saturated)
    require.Equal(t, uint8(el.MaxCount), fn.Blocks[0].Elem.E[1].Count)
    require.NotSame(t, fn.Blocks[0].Elem.E[1], fn.Blocks[el.MaxCount + 1].Elem.E[1])
    require.Same(t, fn.Blocks[el.MaxCount + 1].Elem.E[1], fn.Blocks[el.MaxCount + 2].Elem.E[1])
}

func TestComsubs_NeverShared(t *testing.T) {
    fn := straight(t,
        "(= y (+ v 1))",
        "(= z (+ v 1))",
        "(= d (+ d 1.0))",
        "(= d (+ d 1.0))",
        "(= y (d_s32:int d))",
        "(= z (d_s32:int d))",
    )
    require.Equal(t, 0, Comsubs(fn, testOptions()).Merged)
}

func TestComsubs_SwapDoubleOpAssign(t *testing.T) {
    for _, swap := range []bool { false, true } {
        fn := straight(t, "(+=:double (ind:double (+ p 8)) (s64_d:double (+ p 8)))")
        st := Comsubs(fn, &opts.Options{FilterSize: 16001, SwapDoubleOpAssign: swap})
        require.Equal(t, 1, st.Merged, "swap = %v", swap)
    }
}

func TestComsubs_DDtor(t *testing.T) {
    fn := straight(t,
        "(= y (+ a b))",
        "(ddtor (= t (+ a b)))",
        "(= z (+ a b))",
    )
    st := Comsubs(fn, testOptions())
    require.Equal(t, 0, st.Merged)
    require.Equal(t, 2, st.Killed)
}

func TestComsubs_Diamond(t *testing.T) {
    syms := testSymbols()
    fn := &block.Func{Name: t.Name()}
    entry := fn.NewBlock("entry", block.BCiftrue, el.MustParse("(+ a b)", syms))
    then  := fn.NewBlock("then", block.BCgoto, el.MustParse("(= y (+ a b))", syms))
    other := fn.NewBlock("else", block.BCgoto, el.MustParse("(= z (+ a b))", syms))
    join  := fn.NewBlock("join", block.BCretexp, el.MustParse("(+ a b)", syms))
    block.Link(entry, other, then)
    block.Link(then, join)
    block.Link(other, join)

    /* only the false edge falls through */
    st := Comsubs(fn, testOptions())
    require.Equal(t, 3, st.EBBs)
    require.Equal(t, 1, st.Merged)
    require.Same(t, entry.Elem, then.Elem.E[1])
    require.NotSame(t, entry.Elem, other.Elem.E[1])
    require.NotSame(t, entry.Elem, join.Elem)
}

func TestComsubs_Unreachable(t *testing.T) {
    fn := straight(t, "(= y (+ a b))", "(= z (+ a b))")
    fn.NewBlock("dead", block.BCret, el.MustParse("(+ a b)", testSymbols()))
    st := Comsubs(fn, testOptions())
    require.Len(t, fn.Blocks, 2)
    require.Equal(t, 1, st.EBBs)
}

func TestComsubs_Opaque(t *testing.T) {
    fn := straight(t,
        "(= y (+ a b))",
        "(ctor (+ a b))",
        "(inp (+ a b))",
        "(strpar (+ a b))",
        "(asm \"nop\")",
        "(= z (+ a b))",
    )
    st := Comsubs(fn, testOptions())
    require.Equal(t, 3, st.Merged)
}

func TestComsubs_Trace(t *testing.T) {
    var sb strings.Builder
    fn := straight(t, "(= y (+ a b))", "(= z (+ a b))")
    Comsubs(fn, &opts.Options{FilterSize: 16001, Trace: &sb})
    require.Contains(t, sb.String(), "comsubs(" + t.Name() + ")")
    require.Contains(t, sb.String(), "**MATCH** (+ a b)")
}

func TestComsubs_InvalidOperator(t *testing.T) {
    fn := straight(t, "(= y (addr a))")
    requireICE(t, func() { Comsubs(fn, testOptions()) })
}

func TestComsubs_InvalidLvalue(t *testing.T) {
    fn := straight(t, "(= (+ p 1) 1)")
    requireICE(t, func() { Comsubs(fn, testOptions()) })
}

func TestComsubs_InvalidStorageClass(t *testing.T) {
    syms := testSymbols()
    syms["u"] = &el.Symbol{Name: "u", Type: el.TYint}
    fn := &block.Func{Name: t.Name()}
    fn.NewBlock("", block.BCret, el.MustParse("(= u 1)", syms))
    requireICE(t, func() { Comsubs(fn, testOptions()) })
}

func TestComsubs_Cycle(t *testing.T) {
    syms := testSymbols()
    e := el.Bin(el.OPadd, el.TYint, el.Var(syms["a"], 0), nil)
    e.E[1] = e
    fn := &block.Func{Name: t.Name()}
    fn.NewBlock("", block.BCretexp, e)
    requireICE(t, func() { Comsubs(fn, testOptions()) })
}

func TestComsubs_AlreadyShared(t *testing.T) {
    fn := &block.Func{Name: t.Name()}
    fn.NewBlock("", block.BCretexp, el.MustParse("(, %1=(+ a b) %1)", testSymbols()))
    requireICE(t, func() { Comsubs(fn, testOptions()) })
}
