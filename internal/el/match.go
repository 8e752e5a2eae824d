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

// MatchMode relaxes the structural comparison done by Match.
type MatchMode uint8

const (
    MatchStrict           MatchMode = 0
    MatchIgnoreConst      MatchMode = 1 << 0    // constants of the same type always match
    MatchIgnoreQualifiers MatchMode = 1 << 1    // const / volatile differences are ignored
    MatchIgnoreSign       MatchMode = 1 << 3    // signed and unsigned counterparts match
)

func matchType(t1 Tym, t2 Tym, mode MatchMode) bool {
    if t1 == t2 {
        return true
    }

    /* qualifiers differ */
    if t1 &^ MtyBasic != t2 &^ MtyBasic && mode & MatchIgnoreQualifiers == 0 {
        return false
    }

    /* compare the basic types */
    if b1, b2 := t1.Basic(), t2.Basic(); b1 == b2 {
        return true
    } else {
        return mode & MatchIgnoreSign != 0 && b1.Unsigned() == b2.Unsigned()
    }
}

func matchLeaf(n1 *Elem, n2 *Elem, mode MatchMode) bool {
    switch n1.Op {
        case OPconst    : return mode & MatchIgnoreConst != 0 || constBits(n1) == constBits(n2)
        case OPvar      : fallthrough
        case OPrelconst : return n1.V.Sym == n2.V.Sym && n1.V.Int == n2.V.Int
        case OPasm      : fallthrough
        case OPstring   : return n1.V.Str == n2.V.Str
        default         : return true
    }
}

/* constants only compare the bits that belong to their type */
func constBits(e *Elem) uint64 {
    switch e.Ty.Size() {
        case 1  : return uint64(uint8(e.V.Int))
        case 2  : return uint64(uint16(e.V.Int))
        case 4  : return uint64(uint32(e.V.Int))
        default : return uint64(e.V.Int)
    }
}

// Match reports whether two trees are structurally identical. Identical
// pointers always match.
func Match(n1 *Elem, n2 *Elem, mode MatchMode) bool {
    for {
        if n1 == n2 {
            return true
        }

        /* both must exist and have the same operator */
        if n1 == nil || n2 == nil || n1.Op != n2.Op {
            return false
        }

        /* check for types */
        if !matchType(n1.Ty, n2.Ty, mode) {
            return false
        }

        /* check the operands */
        switch n1.Op.Arity() {
            case 0: {
                return matchLeaf(n1, n2, mode)
            }
            case 1: {
                n1, n2 = n1.E[0], n2.E[0]
            }
            case 2: {
                if !Match(n1.E[1], n2.E[1], mode) {
                    return false
                }
                n1, n2 = n1.E[0], n2.E[0]
            }
        }
    }
}
