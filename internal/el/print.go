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
    `io`
    `math`
    `strconv`
    `strings`
)

// defaultType is the type assumed for an interior node when the textual form
// does not carry an explicit one.
func defaultType(op Op, kids []*Elem) Tym {
    switch {
        case op.IsRel()                          : return TYint
        case op == OPnot || op == OPbool         : return TYint
        case op == OPandand || op == OPoror      : return TYint
        case op == OPind                         : return TYllong
        case op == OPcall || op == OPucall       : return TYllong
        case op == OPcallns || op == OPucallns   : return TYllong
        case op == OPcond                        : return condType(kids)
        case op.IsLeaf() || len(kids) == 0       : return TYvoid
        default                                  : return kids[0].Ty
    }
}

func condType(kids []*Elem) Tym {
    if len(kids) == 2 && kids[1] != nil {
        return kids[1].Ty
    } else {
        return TYvoid
    }
}

// Printer renders trees as s-expressions. A shared node is labelled the first
// time it is printed and referenced by its label afterwards, across all the
// trees printed by the same Printer.
type Printer struct {
    w    io.Writer
    refs map[*Elem]int
}

func NewPrinter(w io.Writer) *Printer {
    return &Printer {
        w    : w,
        refs : make(map[*Elem]int),
    }
}

func (self *Printer) Print(e *Elem) {
    var sb strings.Builder
    self.format(&sb, e)
    io.WriteString(self.w, sb.String())
}

func (self *Printer) format(sb *strings.Builder, e *Elem) {
    if e == nil {
        sb.WriteString("nil")
        return
    }

    /* already printed shared node */
    if id, ok := self.refs[e]; ok {
        fmt.Fprintf(sb, "%%%d", id)
        return
    }

    /* label the shared node */
    if e.Count != 0 {
        id := len(self.refs) + 1
        self.refs[e] = id
        fmt.Fprintf(sb, "%%%d=", id)
    }

    /* leaves with a compact form */
    switch e.Op {
        case OPconst: {
            formatConst(sb, e)
            return
        }
        case OPvar: {
            formatSym(sb, "", e)
            if e.Ty != e.V.Sym.Type { sb.WriteString(":" + e.Ty.String()) }
            return
        }
        case OPrelconst: {
            formatSym(sb, "&", e)
            return
        }
    }

    /* generic form */
    sb.WriteByte('(')
    sb.WriteString(e.Op.String())
    if kids := e.Kids(); e.Ty != defaultType(e.Op, kids) {
        sb.WriteString(":" + e.Ty.String())
    }

    /* leaf payload */
    if e.V.Str != "" {
        sb.WriteString(" " + strconv.Quote(e.V.Str))
    }

    /* operands */
    for _, v := range e.Kids() {
        sb.WriteByte(' ')
        self.format(sb, v)
    }
    sb.WriteByte(')')
}

func formatSym(sb *strings.Builder, prefix string, e *Elem) {
    sb.WriteString(prefix)
    sb.WriteString(e.V.Sym.Name)
    if e.V.Int != 0 { fmt.Fprintf(sb, "@%d", e.V.Int) }
}

func formatConst(sb *strings.Builder, e *Elem) {
    if !e.Ty.IsFloating() {
        sb.WriteString(strconv.FormatInt(e.V.Int, 10))
        if e.Ty != TYint { sb.WriteString(":" + e.Ty.String()) }
        return
    }

    /* make sure it reads back as a floating point value */
    s := strconv.FormatFloat(math.Float64frombits(uint64(e.V.Int)), 'g', -1, 64)
    if !strings.ContainsAny(s, ".eEnN") { s += ".0" }

    /* double is the default floating point type */
    sb.WriteString(s)
    if e.Ty != TYdouble { sb.WriteString(":" + e.Ty.String()) }
}

// String renders a single tree.
func (self *Elem) String() string {
    var sb strings.Builder
    NewPrinter(&sb).Print(self)
    return sb.String()
}

// Fprint writes a single tree followed by a newline.
func Fprint(w io.Writer, e *Elem) {
    NewPrinter(w).Print(e)
    io.WriteString(w, "\n")
}
