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
    `fmt`
)

// Op is an expression operator.
type Op uint8

const (
    OPunde Op = iota

    /* leaves */
    OPconst         // constant bit pattern
    OPvar           // read of a symbol
    OPrelconst      // address of a symbol
    OPasm           // inline assembly text
    OPstrthis       // address of the struct being constructed
    OPframeptr      // frame pointer
    OPgot           // global offset table
    OPhalt          // halt the program
    OPmark          // exception handling marker
    OPdctor         // destructor registration marker
    OPstring        // string literal

    /* unary operators */
    OPnot           // !E
    OPcom           // ~E
    OPneg           // -E
    OPuadd          // +E
    OPabs           // |E|
    OPbool          // booleanize
    OPstrlen        // strlen(E)
    OPind           // *E
    OPaddr          // &E
    OPbit           // bit field reference
    OPvoid          // evaluate for side effects only
    OPnullcheck     // trap on null pointer
    OPbsf           // bit scan forward
    OPbsr           // bit scan reverse
    OPbswap         // byte swap
    OPpopcnt        // population count
    OPs8_16         // signed char to short
    OPu8_16         // unsigned char to short
    OP16_8          // short to char
    OPs16_32        // short to long
    OPu16_32        // unsigned short to long
    OP32_16         // long to short
    OPs32_64        // long to long long
    OPu32_64        // unsigned long to long long
    OP64_32         // long long to long
    OPmsw           // most significant word
    OPd_s32         // double to int
    OPs32_d         // int to double
    OPd_u32         // double to unsigned
    OPu32_d         // unsigned to double
    OPd_s64         // double to long long
    OPs64_d         // long long to double
    OPd_f           // double to float
    OPf_d           // float to double
    OPsqrt          // square root
    OPsin           // sine
    OPcos           // cosine
    OPnegass        // E = -E
    OPucall         // call without arguments
    OPucallns       // call without arguments, no side effects on the stack
    OPstrpar        // pass a struct by value
    OPinp           // read from an I/O port
    OPctor          // construction marker
    OPdtor          // destruction marker
    OPddtor         // deferred destructor
    OPsetjmp        // setjmp(E)

    /* binary operators */
    OPadd
    OPmin
    OPmul
    OPdiv
    OPmod
    OPshr           // unsigned right shift
    OPshl
    OPashr          // signed right shift
    OPand
    OPor
    OPxor
    OProl
    OPror
    OPeqeq
    OPne
    OPlt
    OPle
    OPgt
    OPge
    OPscale         // ldexp
    OPbt            // bit test
    OPstrcmp
    OPmemcmp
    OPcomma
    OPremquo        // / and % in one operation
    OPandand
    OPoror
    OPcond          // E1 ? E2.E1 : E2.E2
    OPcolon         // the two arms of OPcond
    OPeq
    OPstreq         // struct assignment
    OPaddass
    OPminass
    OPmulass
    OPdivass
    OPmodass
    OPshrass
    OPashrass
    OPshlass
    OPandass
    OPorass
    OPxorass
    OPpostinc
    OPpostdec
    OPpreinc
    OPpredec
    OPcall          // E1(E2)
    OPcallns        // E1(E2), no side effects on the stack
    OPparam         // argument list
    OPinfo          // E2, annotated by E1
    OPoutp          // write to an I/O port
    OPstrcpy
    OPstrcat
    OPmemcpy
    OPmemset
    OPbtc           // bit test and complement
    OPbts           // bit test and set
    OPbtr           // bit test and reset
    OPMAX
)

// Bucket is the behavioral class of an operator, as seen by passes that walk
// expression trees.
type Bucket uint8

const (
    BucketInvalid Bucket = iota   // must have been removed by earlier passes
    BucketLeaf                    // pure leaf
    BucketPlain                   // pure unary / binary computation
    BucketAssign                  // assignment through E1
    BucketNegAssign               // unary assignment through E1
    BucketAndOr                   // E1 always, E2 conditionally
    BucketCond                    // E1 always, one arm of E2 conditionally
    BucketCall                    // call with arguments in E2
    BucketUCall                   // call without arguments
    BucketOpaque                  // effects unknowable, never looked into
    BucketOpaqueArg               // operand evaluated, the node itself is never shared
    BucketDDtor                   // maximally unknown effects
    BucketParam                   // both operands evaluated, never shared
    BucketInfo                    // only E2 is evaluated
    BucketComma                   // both operands evaluated, shareable
    BucketInd                     // indirection read
    BucketMemOp                   // writes memory through computed addresses
    BucketSetjmp                  // writes memory through E1
    BucketBitModify               // bit test and modify through a computed address
)

const (
    _OTleaf   = 1 << iota
    _OTunary
    _OTbinary
    _OTpost
    _OTassign
    _OTrel
    _OTsideff
)

type _OpInfo struct {
    name   string
    attr   uint8
    bucket Bucket
}

const (
    _L  = _OTleaf
    _U  = _OTunary
    _B  = _OTbinary
    _UA = _OTunary | _OTassign | _OTsideff
    _BA = _OTbinary | _OTassign | _OTsideff
    _BR = _OTbinary | _OTrel
    _US = _OTunary | _OTsideff
    _BS = _OTbinary | _OTsideff
    _LS = _OTleaf | _OTsideff
)

var _OpTab = [OPMAX]_OpInfo {
    OPunde      : { "unde"      , 0                    , BucketInvalid   },
    OPconst     : { "const"     , _L                   , BucketLeaf      },
    OPvar       : { "var"       , _L                   , BucketLeaf      },
    OPrelconst  : { "relconst"  , _L                   , BucketLeaf      },
    OPasm       : { "asm"       , _LS                  , BucketOpaque    },
    OPstrthis   : { "strthis"   , _L                   , BucketOpaque    },
    OPframeptr  : { "frameptr"  , _L                   , BucketOpaque    },
    OPgot       : { "got"       , _L                   , BucketOpaque    },
    OPhalt      : { "halt"      , _LS                  , BucketOpaque    },
    OPmark      : { "mark"      , _LS                  , BucketOpaque    },
    OPdctor     : { "dctor"     , _LS                  , BucketOpaque    },
    OPstring    : { "string"    , _L                   , BucketInvalid   },
    OPnot       : { "!"         , _U                   , BucketPlain     },
    OPcom       : { "~"         , _U                   , BucketPlain     },
    OPneg       : { "neg"       , _U                   , BucketPlain     },
    OPuadd      : { "uadd"      , _U                   , BucketPlain     },
    OPabs       : { "abs"       , _U                   , BucketPlain     },
    OPbool      : { "bool"      , _U                   , BucketPlain     },
    OPstrlen    : { "strlen"    , _U                   , BucketPlain     },
    OPind       : { "ind"       , _U                   , BucketInd       },
    OPaddr      : { "addr"      , _U                   , BucketInvalid   },
    OPbit       : { "bit"       , _U                   , BucketInvalid   },
    OPvoid      : { "void"      , _U                   , BucketPlain     },
    OPnullcheck : { "nullcheck" , _U                   , BucketPlain     },
    OPbsf       : { "bsf"       , _U                   , BucketPlain     },
    OPbsr       : { "bsr"       , _U                   , BucketPlain     },
    OPbswap     : { "bswap"     , _U                   , BucketPlain     },
    OPpopcnt    : { "popcnt"    , _U                   , BucketPlain     },
    OPs8_16     : { "s8_16"     , _U                   , BucketPlain     },
    OPu8_16     : { "u8_16"     , _U                   , BucketPlain     },
    OP16_8      : { "16_8"      , _U                   , BucketPlain     },
    OPs16_32    : { "s16_32"    , _U                   , BucketPlain     },
    OPu16_32    : { "u16_32"    , _U                   , BucketPlain     },
    OP32_16     : { "32_16"     , _U                   , BucketPlain     },
    OPs32_64    : { "s32_64"    , _U                   , BucketPlain     },
    OPu32_64    : { "u32_64"    , _U                   , BucketPlain     },
    OP64_32     : { "64_32"     , _U                   , BucketPlain     },
    OPmsw       : { "msw"       , _U                   , BucketPlain     },
    OPd_s32     : { "d_s32"     , _U                   , BucketPlain     },
    OPs32_d     : { "s32_d"     , _U                   , BucketPlain     },
    OPd_u32     : { "d_u32"     , _U                   , BucketPlain     },
    OPu32_d     : { "u32_d"     , _U                   , BucketPlain     },
    OPd_s64     : { "d_s64"     , _U                   , BucketPlain     },
    OPs64_d     : { "s64_d"     , _U                   , BucketPlain     },
    OPd_f       : { "d_f"       , _U                   , BucketPlain     },
    OPf_d       : { "f_d"       , _U                   , BucketPlain     },
    OPsqrt      : { "sqrt"      , _U                   , BucketPlain     },
    OPsin       : { "sin"       , _U                   , BucketPlain     },
    OPcos       : { "cos"       , _U                   , BucketPlain     },
    OPnegass    : { "neg="      , _UA                  , BucketNegAssign },
    OPucall     : { "ucall"     , _US                  , BucketUCall     },
    OPucallns   : { "ucallns"   , _US                  , BucketUCall     },
    OPstrpar    : { "strpar"    , _U                   , BucketOpaqueArg },
    OPinp       : { "inp"       , _US                  , BucketOpaqueArg },
    OPctor      : { "ctor"      , _US                  , BucketOpaque    },
    OPdtor      : { "dtor"      , _US                  , BucketOpaque    },
    OPddtor     : { "ddtor"     , _US                  , BucketDDtor     },
    OPsetjmp    : { "setjmp"    , _US                  , BucketSetjmp    },
    OPadd       : { "+"         , _B                   , BucketPlain     },
    OPmin       : { "-"         , _B                   , BucketPlain     },
    OPmul       : { "*"         , _B                   , BucketPlain     },
    OPdiv       : { "/"         , _B                   , BucketPlain     },
    OPmod       : { "%"         , _B                   , BucketPlain     },
    OPshr       : { ">>>"       , _B                   , BucketPlain     },
    OPshl       : { "<<"        , _B                   , BucketPlain     },
    OPashr      : { ">>"        , _B                   , BucketPlain     },
    OPand       : { "&"         , _B                   , BucketPlain     },
    OPor        : { "|"         , _B                   , BucketPlain     },
    OPxor       : { "^"         , _B                   , BucketPlain     },
    OProl       : { "rol"       , _B                   , BucketPlain     },
    OPror       : { "ror"       , _B                   , BucketPlain     },
    OPeqeq      : { "=="        , _BR                  , BucketPlain     },
    OPne        : { "!="        , _BR                  , BucketPlain     },
    OPlt        : { "<"         , _BR                  , BucketPlain     },
    OPle        : { "<="        , _BR                  , BucketPlain     },
    OPgt        : { ">"         , _BR                  , BucketPlain     },
    OPge        : { ">="        , _BR                  , BucketPlain     },
    OPscale     : { "scale"     , _B                   , BucketPlain     },
    OPbt        : { "bt"        , _B                   , BucketPlain     },
    OPstrcmp    : { "strcmp"    , _B                   , BucketPlain     },
    OPmemcmp    : { "memcmp"    , _B                   , BucketPlain     },
    OPcomma     : { ","         , _B                   , BucketComma     },
    OPremquo    : { "remquo"    , _B                   , BucketComma     },
    OPandand    : { "&&"        , _B                   , BucketAndOr     },
    OPoror      : { "||"        , _B                   , BucketAndOr     },
    OPcond      : { "?"         , _B                   , BucketCond      },
    OPcolon     : { ":"         , _B                   , BucketInvalid   },
    OPeq        : { "="         , _BA                  , BucketAssign    },
    OPstreq     : { "streq"     , _BA                  , BucketAssign    },
    OPaddass    : { "+="        , _BA                  , BucketAssign    },
    OPminass    : { "-="        , _BA                  , BucketAssign    },
    OPmulass    : { "*="        , _BA                  , BucketAssign    },
    OPdivass    : { "/="        , _BA                  , BucketAssign    },
    OPmodass    : { "%="        , _BA                  , BucketAssign    },
    OPshrass    : { ">>>="      , _BA                  , BucketAssign    },
    OPashrass   : { ">>="       , _BA                  , BucketAssign    },
    OPshlass    : { "<<="       , _BA                  , BucketAssign    },
    OPandass    : { "&="        , _BA                  , BucketAssign    },
    OPorass     : { "|="        , _BA                  , BucketAssign    },
    OPxorass    : { "^="        , _BA                  , BucketAssign    },
    OPpostinc   : { "post++"    , _BA | _OTpost        , BucketAssign    },
    OPpostdec   : { "post--"    , _BA | _OTpost        , BucketAssign    },
    OPpreinc    : { "pre++"     , _BA                  , BucketAssign    },
    OPpredec    : { "pre--"     , _BA                  , BucketAssign    },
    OPcall      : { "call"      , _BS                  , BucketCall      },
    OPcallns    : { "callns"    , _BS                  , BucketCall      },
    OPparam     : { "param"     , _B                   , BucketParam     },
    OPinfo      : { "info"      , _B                   , BucketInfo      },
    OPoutp      : { "outp"      , _BS                  , BucketParam     },
    OPstrcpy    : { "strcpy"    , _BS                  , BucketMemOp     },
    OPstrcat    : { "strcat"    , _BS                  , BucketMemOp     },
    OPmemcpy    : { "memcpy"    , _BS                  , BucketMemOp     },
    OPmemset    : { "memset"    , _BS                  , BucketMemOp     },
    OPbtc       : { "btc"       , _BS                  , BucketBitModify },
    OPbts       : { "bts"       , _BS                  , BucketBitModify },
    OPbtr       : { "btr"       , _BS                  , BucketBitModify },
}

var _OpNames = func() map[string]Op {
    m := make(map[string]Op, OPMAX)
    for i := OPunde + 1; i < OPMAX; i++ {
        m[_OpTab[i].name] = i
    }
    return m
}()

func (self Op) info() *_OpInfo {
    if self >= OPMAX {
        panic(ice("invalid operator %d", uint8(self)))
    } else {
        return &_OpTab[self]
    }
}

func (self Op) IsLeaf()    bool   { return self.info().attr & _OTleaf   != 0 }
func (self Op) IsUnary()   bool   { return self.info().attr & _OTunary  != 0 }
func (self Op) IsBinary()  bool   { return self.info().attr & _OTbinary != 0 }
func (self Op) IsPost()    bool   { return self.info().attr & _OTpost   != 0 }
func (self Op) IsAssign()  bool   { return self.info().attr & _OTassign != 0 }
func (self Op) IsRel()     bool   { return self.info().attr & _OTrel    != 0 }
func (self Op) HasSideff() bool   { return self.info().attr & _OTsideff != 0 }
func (self Op) Bucket()    Bucket { return self.info().bucket }

// Arity returns the number of child slots used by the operator.
func (self Op) Arity() int {
    switch a := self.info().attr; {
        case a & _OTbinary != 0 : return 2
        case a & _OTunary  != 0 : return 1
        default                 : return 0
    }
}

func (self Op) String() string {
    if self < OPMAX {
        return _OpTab[self].name
    } else {
        return fmt.Sprintf("Op(%d)", uint8(self))
    }
}

// LookupOp finds an operator by its textual name.
func LookupOp(name string) (Op, bool) {
    op, ok := _OpNames[name]
    return op, ok
}
