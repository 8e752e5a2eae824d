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
    `sync/atomic`
    `testing`

    `github.com/stretchr/testify/require`
)

func testSyms() SymbolTable {
    return SymbolTable {
        "a": { Name: "a", Class: SCauto   , Type: TYint, Unambig: true },
        "b": { Name: "b", Class: SCauto   , Type: TYint, Unambig: true },
        "u": { Name: "u", Class: SCauto   , Type: TYuint },
        "p": { Name: "p", Class: SCparameter, Type: TYnptr },
        "g": { Name: "g", Class: SCglobal , Type: TYllong },
    }
}

func TestParse_RoundTrip(t *testing.T) {
    for _, src := range []string {
        "a",
        "&g@8",
        "g@4:int",
        "-3:llong",
        "1.5",
        "(+ a b)",
        "(+ a 1:llong)",
        "(= a (ind:int p))",
        "(, %1=(+ a b) %1)",
        "(asm \"nop\")",
        "(? (< a b) (: a b))",
    } {
        e, err := Parse(src, testSyms())
        require.NoError(t, err, src)
        require.Equal(t, src, e.String())
    }
}

func TestParse_Shared(t *testing.T) {
    e := MustParse("(+ %1=(* a b) (- %1 %1))", testSyms())
    require.Same(t, e.E[0], e.E[1].E[0])
    require.Same(t, e.E[0], e.E[1].E[1])
    require.Equal(t, uint8(2), e.E[0].Count)
}

func TestParse_Errors(t *testing.T) {
    for _, src := range []string {
        "",
        "(+ a",
        "(+ a)",
        "(foo a)",
        "(var a)",
        "x",
        "a:bogus",
        "(+ a b) c",
        "%1",
        "(+ %1=a %1=b)",
        "(asm \"nop)",
    } {
        _, err := Parse(src, testSyms())
        require.Error(t, err, src)
        require.IsType(t, SyntaxError{}, err, src)
    }
}

func TestMatch(t *testing.T) {
    syms := testSyms()
    m := func(a string, b string, mode MatchMode) bool {
        return Match(MustParse(a, syms), MustParse(b, syms), mode)
    }
    require.True(t, m("(+ a b)", "(+ a b)", MatchStrict))
    require.False(t, m("(+ a b)", "(+ b a)", MatchStrict))
    require.False(t, m("(+ a 1)", "(+ a 2)", MatchStrict))
    require.True(t, m("(+ a 1)", "(+ a 2)", MatchIgnoreConst))
    require.False(t, m("a@4", "a@8", MatchIgnoreConst))
    require.False(t, m("(+ a 1)", "(+ a 1:llong)", MatchStrict))
    require.False(t, m("(+ a b)", "(+:uint a b)", MatchStrict))
    require.True(t, m("(+ a b)", "(+:uint a b)", MatchIgnoreSign))
    require.False(t, m("(+ a b)", "(+:const.int a b)", MatchStrict))
    require.True(t, m("(+ a b)", "(+:const.int a b)", MatchIgnoreQualifiers))
    require.True(t, m("(asm \"nop\")", "(asm \"nop\")", MatchStrict))
    require.False(t, m("(asm \"nop\")", "(asm \"ret\")", MatchStrict))
    require.True(t, Match(nil, nil, MatchStrict))
    require.False(t, Match(nil, MustParse("a", syms), MatchStrict))
}

func TestMatch_ConstBits(t *testing.T) {
    require.True(t, Match(Long(TYchar, 0x101), Long(TYchar, 1), MatchStrict))
    require.False(t, Match(Long(TYllong, 0x101), Long(TYllong, 1), MatchStrict))
    require.True(t, Match(Double(TYdouble, 2.5), Double(TYdouble, 2.5), MatchStrict))
}

func TestFree(t *testing.T) {
    e := MustParse("(+ %1=(* a b) %1)", testSyms())
    free := atomic.LoadUint64(&FreeCount)
    Free(e)
    require.Equal(t, uint64(4), atomic.LoadUint64(&FreeCount) - free)

    /* a shared node only loses a reference */
    e = MustParse("(* a b)", testSyms())
    e.Count = 1
    free = atomic.LoadUint64(&FreeCount)
    Free(e)
    require.Equal(t, uint64(0), atomic.LoadUint64(&FreeCount) - free)
    require.Equal(t, uint8(0), e.Count)
}

func TestClone(t *testing.T) {
    e := MustParse("(+ %1=(* a b) %1)", testSyms())
    c := Clone(e)
    require.Equal(t, "(+ (* a b) (* a b))", c.String())
    require.NotSame(t, c.E[0], c.E[1])
    require.True(t, Match(c.E[0], e.E[0], MatchStrict))

    n := 0
    Walk(c, func(v *Elem) { require.Zero(t, v.Count); n++ })
    require.Equal(t, 7, n)
}

func TestOp_Info(t *testing.T) {
    require.True(t, OPvar.IsLeaf())
    require.Equal(t, 2, OPadd.Arity())
    require.True(t, OPpostinc.IsPost())
    require.True(t, OPaddass.IsAssign())
    require.True(t, OPlt.IsRel())
    require.Equal(t, BucketComma, OPcomma.Bucket())
    op, ok := LookupOp("+")
    require.True(t, ok)
    require.Equal(t, OPadd, op)
    _, ok = LookupOp("nope")
    require.False(t, ok)
}

func TestTym(t *testing.T) {
    for _, ty := range []Tym { TYint, TYuchar, TYdouble, TYnptr, TYint | MtyConst, TYllong | MtyConst | MtyVolatile } {
        v, ok := ParseTym(ty.String())
        require.True(t, ok)
        require.Equal(t, ty, v)
    }
    require.Equal(t, TYuint, TYint.Unsigned())
    require.Equal(t, TYdouble, TYdouble.Unsigned())
    require.Equal(t, 4, TYint.Size())
    require.True(t, TYfloat.IsFloating())
    require.True(t, TYstruct.IsAggregate())
    sc, ok := ParseSClass("regpar")
    require.True(t, ok)
    require.Equal(t, SCregpar, sc)
}

func TestAssert(t *testing.T) {
    require.NotPanics(t, func() { Assert(true, "unreachable") })
    require.PanicsWithValue(t, &InternalError{Msg: "bad 1"}, func() { Assert(false, "bad %d", 1) })
    require.PanicsWithError(t, "internal compiler error: boom", func() { Fatal("boom") })
}
