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
    `strings`
)

// Tym is a type descriptor: a basic type in the low byte plus qualifier bits.
type Tym uint32

const (
    TYvoid Tym = iota
    TYbool
    TYchar
    TYuchar
    TYshort
    TYushort
    TYint
    TYuint
    TYlong
    TYulong
    TYllong
    TYullong
    TYfloat
    TYdouble
    TYldouble
    TYnptr
    TYfunc
    TYstruct
    _TYmax
)

const (
    MtyBasic    Tym = 0xff
    MtyConst    Tym = 0x100
    MtyVolatile Tym = 0x200
)

var _TymNames = [...]string {
    TYvoid    : "void",
    TYbool    : "bool",
    TYchar    : "char",
    TYuchar   : "uchar",
    TYshort   : "short",
    TYushort  : "ushort",
    TYint     : "int",
    TYuint    : "uint",
    TYlong    : "long",
    TYulong   : "ulong",
    TYllong   : "llong",
    TYullong  : "ullong",
    TYfloat   : "float",
    TYdouble  : "double",
    TYldouble : "ldouble",
    TYnptr    : "ptr",
    TYfunc    : "func",
    TYstruct  : "struct",
}

var _TymSizes = [...]int {
    TYvoid    : 0,
    TYbool    : 1,
    TYchar    : 1,
    TYuchar   : 1,
    TYshort   : 2,
    TYushort  : 2,
    TYint     : 4,
    TYuint    : 4,
    TYlong    : 4,
    TYulong   : 4,
    TYllong   : 8,
    TYullong  : 8,
    TYfloat   : 4,
    TYdouble  : 8,
    TYldouble : 10,
    TYnptr    : 8,
    TYfunc    : 0,
    TYstruct  : -1,
}

/* signed -> unsigned equivalents, used by the sign-insensitive match mode */
var _TymUnsigned = [...]Tym {
    TYchar  : TYuchar,
    TYshort : TYushort,
    TYint   : TYuint,
    TYlong  : TYulong,
    TYllong : TYullong,
}

func (self Tym) Basic() Tym {
    return self & MtyBasic
}

func (self Tym) IsConst() bool {
    return self & MtyConst != 0
}

func (self Tym) IsVolatile() bool {
    return self & MtyVolatile != 0
}

func (self Tym) IsFloating() bool {
    switch self.Basic() {
        case TYfloat, TYdouble, TYldouble : return true
        default                           : return false
    }
}

func (self Tym) IsAggregate() bool {
    return self.Basic() == TYstruct
}

func (self Tym) IsUnsigned() bool {
    switch self.Basic() {
        case TYbool, TYuchar, TYushort, TYuint, TYulong, TYullong, TYnptr : return true
        default                                                           : return false
    }
}

// Unsigned returns the unsigned counterpart of the basic type, or the basic
// type itself if it has none. Qualifiers are dropped.
func (self Tym) Unsigned() Tym {
    if t := self.Basic(); int(t) < len(_TymUnsigned) && _TymUnsigned[t] != 0 {
        return _TymUnsigned[t]
    } else {
        return t
    }
}

// Size returns the size in bytes, or -1 for aggregates.
func (self Tym) Size() int {
    if t := self.Basic(); t < _TYmax {
        return _TymSizes[t]
    } else {
        panic(ice("invalid basic type %#x", uint32(t)))
    }
}

func (self Tym) String() string {
    var sb strings.Builder
    if self.IsConst()    { sb.WriteString("const.") }
    if self.IsVolatile() { sb.WriteString("volatile.") }

    /* basic type name */
    if t := self.Basic(); t < _TYmax {
        sb.WriteString(_TymNames[t])
    } else {
        sb.WriteString("?")
    }
    return sb.String()
}

// ParseTym parses the textual form produced by Tym.String.
func ParseTym(s string) (Tym, bool) {
    var q Tym
    for {
        if strings.HasPrefix(s, "const.") {
            q, s = q | MtyConst, s[6:]
        } else if strings.HasPrefix(s, "volatile.") {
            q, s = q | MtyVolatile, s[9:]
        } else {
            break
        }
    }

    /* look up the basic type */
    for i, v := range _TymNames {
        if v == s {
            return Tym(i) | q, true
        }
    }
    return 0, false
}
