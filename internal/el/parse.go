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
    `strconv`
    `strings`
)

// SymbolTable resolves names used by the textual form.
type SymbolTable map[string]*Symbol

type _Parser struct {
    src  string
    pos  int
    syms SymbolTable
    refs map[int]*Elem
}

// Parse reads a tree in the form produced by Printer. Every symbol must be
// present in syms. Shared nodes written as %N= and %N are rebuilt with their
// reference counters.
func Parse(src string, syms SymbolTable) (*Elem, error) {
    p := &_Parser {
        src  : src,
        syms : syms,
        refs : make(map[int]*Elem),
    }

    /* parse one expression */
    ret, err := p.expr()
    if err != nil {
        return nil, err
    }

    /* must consume all the input */
    if p.skip(); p.pos != len(p.src) {
        return nil, p.error("unexpected trailing characters")
    }
    return ret, nil
}

// MustParse is like Parse but panics on errors. Only meant for tests and
// static tables.
func MustParse(src string, syms SymbolTable) *Elem {
    if e, err := Parse(src, syms); err != nil {
        panic(err)
    } else {
        return e
    }
}

func (self *_Parser) error(reason string) error {
    return SyntaxError {
        Pos    : self.pos,
        Src    : self.src,
        Reason : reason,
    }
}

func (self *_Parser) skip() {
    for self.pos < len(self.src) && isSpace(self.src[self.pos]) {
        self.pos++
    }
}

func isSpace(c byte) bool {
    return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelim(c byte) bool {
    return isSpace(c) || c == '(' || c == ')' || c == '"'
}

func (self *_Parser) atom() string {
    i := self.pos
    for self.pos < len(self.src) && !isDelim(self.src[self.pos]) { self.pos++ }
    return self.src[i:self.pos]
}

func (self *_Parser) expr() (*Elem, error) {
    if self.skip(); self.pos >= len(self.src) {
        return nil, self.error("unexpected end of input")
    }

    /* list form */
    if self.src[self.pos] == '(' {
        self.pos++
        return self.list()
    }

    /* atoms */
    st := self.pos
    tk := self.atom()

    /* shared node references */
    if strings.HasPrefix(tk, "%") {
        return self.shared(st, tk)
    }

    /* plain atoms */
    if e, err := self.leaf(tk); err != nil {
        self.pos = st
        return nil, err
    } else {
        return e, nil
    }
}

func (self *_Parser) shared(st int, tk string) (*Elem, error) {
    def := strings.HasSuffix(tk, "=")
    num := strings.TrimSuffix(tk[1:], "=")

    /* parse the label number */
    id, err := strconv.Atoi(num)
    if err != nil {
        self.pos = st
        return nil, self.error("invalid shared node label " + strconv.Quote(tk))
    }

    /* back reference */
    if !def {
        if e, ok := self.refs[id]; !ok {
            self.pos = st
            return nil, self.error("undefined shared node " + tk)
        } else {
            if e.Count < MaxCount { e.Count++ }
            return e, nil
        }
    }

    /* label definition */
    if _, ok := self.refs[id]; ok {
        self.pos = st
        return nil, self.error("duplicated shared node " + tk)
    }

    /* parse the labelled expression */
    e, err := self.expr()
    if err != nil {
        return nil, err
    }
    self.refs[id] = e
    return e, nil
}

func splitType(tk string) (string, string) {
    if i := strings.LastIndexByte(tk, ':'); i <= 0 {
        return tk, ""
    } else {
        return tk[:i], tk[i + 1:]
    }
}

func (self *_Parser) tym(s string) (Tym, error) {
    if t, ok := ParseTym(s); !ok {
        return 0, self.error("invalid type " + strconv.Quote(s))
    } else {
        return t, nil
    }
}

func (self *_Parser) leaf(tk string) (*Elem, error) {
    var err error
    var ty  Tym

    /* split the type suffix */
    if tk == "" {
        return nil, self.error("empty atom")
    }
    name, ts := splitType(tk)

    /* numbers */
    if c := name[0]; c == '-' || c == '+' || (c >= '0' && c <= '9') {
        return self.number(name, ts)
    }

    /* explicit type */
    if ts != "" {
        if ty, err = self.tym(ts); err != nil {
            return nil, err
        }
    }

    /* address of symbol */
    rel := strings.HasPrefix(name, "&")
    if rel { name = name[1:] }

    /* symbol offset */
    off := int64(0)
    if i := strings.IndexByte(name, '@'); i >= 0 {
        if off, err = strconv.ParseInt(name[i + 1:], 0, 64); err != nil {
            return nil, self.error("invalid symbol offset in " + strconv.Quote(tk))
        }
        name = name[:i]
    }

    /* resolve the symbol */
    sym := self.syms[name]
    if sym == nil {
        return nil, self.error("undefined symbol " + strconv.Quote(name))
    }

    /* build the leaf */
    if rel {
        return Relconst(sym, off), nil
    }

    /* apply the type if any */
    e := Var(sym, off)
    if ts != "" { e.Ty = ty }
    return e, nil
}

func (self *_Parser) number(name string, ts string) (*Elem, error) {
    var err error
    var ty  Tym

    /* integer constants */
    if iv, ierr := strconv.ParseInt(name, 0, 64); ierr == nil {
        if ty = TYint; ts != "" {
            if ty, err = self.tym(ts); err != nil {
                return nil, err
            }
        }
        if ty.IsFloating() {
            return Double(ty, float64(iv)), nil
        } else {
            return Long(ty, iv), nil
        }
    }

    /* floating point constants */
    fv, ferr := strconv.ParseFloat(name, 64)
    if ferr != nil {
        return nil, self.error("invalid number " + strconv.Quote(name))
    }

    /* double by default */
    if ty = TYdouble; ts != "" {
        if ty, err = self.tym(ts); err != nil {
            return nil, err
        }
    }
    return Double(ty, fv), nil
}

func (self *_Parser) list() (*Elem, error) {
    var err error
    var ty  Tym

    /* operator and optional type */
    st := self.pos
    name, ts := splitType(self.atom())

    /* look up the operator */
    op, ok := LookupOp(name)
    if !ok || op == OPconst || op == OPvar || op == OPrelconst {
        self.pos = st
        return nil, self.error("invalid operator " + strconv.Quote(name))
    }

    /* explicit type */
    if ts != "" {
        if ty, err = self.tym(ts); err != nil {
            self.pos = st
            return nil, err
        }
    }

    /* leaf text payload */
    var str string
    if self.skip(); self.pos < len(self.src) && self.src[self.pos] == '"' {
        if str, err = self.quoted(); err != nil {
            return nil, err
        }
    }

    /* operands */
    var kids []*Elem
    for {
        if self.skip(); self.pos >= len(self.src) {
            return nil, self.error("unterminated list")
        }
        if self.src[self.pos] == ')' {
            self.pos++
            break
        }
        if e, err := self.expr(); err != nil {
            return nil, err
        } else {
            kids = append(kids, e)
        }
    }

    /* check the arity */
    if len(kids) != op.Arity() {
        self.pos = st
        return nil, self.error(strconv.Quote(name) + " expects " + strconv.Itoa(op.Arity()) + " operand(s)")
    }

    /* default type */
    if ts == "" {
        ty = defaultType(op, kids)
    }

    /* build the node */
    e := newElem(op, ty)
    e.V.Str = str
    copy(e.E[:], kids)
    return e, nil
}

func (self *_Parser) quoted() (string, error) {
    st := self.pos
    self.pos++

    /* find the closing quote */
    for self.pos < len(self.src) && self.src[self.pos] != '"' {
        if self.src[self.pos] == '\\' { self.pos++ }
        self.pos++
    }

    /* unterminated string */
    if self.pos >= len(self.src) {
        self.pos = st
        return "", self.error("unterminated string")
    }

    /* unquote the string */
    self.pos++
    if s, err := strconv.Unquote(self.src[st:self.pos]); err != nil {
        self.pos = st
        return "", self.error("invalid string literal")
    } else {
        return s, nil
    }
}
