/*
 * Copyright 2022 CloudWeGo Authors
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


package prog

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cloudwego/cgcs/internal/block"
	"github.com/cloudwego/cgcs/internal/el"
)

// SymbolSpec describes one symbol.
type SymbolSpec struct {
	Name    string `yaml:"name"`
	Class   string `yaml:"class"`
	Type    string `yaml:"type"`
	Unambig bool   `yaml:"unambig,omitempty"`
}

// BlockSpec describes one basic block. Kind defaults to "goto" when the block
// has exactly one successor and "ret" when it has none.
type BlockSpec struct {
	Name string   `yaml:"name"`
	Kind string   `yaml:"kind,omitempty"`
	Exp  string   `yaml:"exp,omitempty"`
	Succ []string `yaml:"succ,omitempty"`
}

// FuncSpec describes one function; blocks are listed in layout order.
type FuncSpec struct {
	Name    string       `yaml:"name"`
	Symbols []SymbolSpec `yaml:"symbols,omitempty"`
	Blocks  []BlockSpec  `yaml:"blocks"`
}

// File is the top-level program description.
type File struct {
	Symbols []SymbolSpec `yaml:"symbols,omitempty"`
	Funcs   []FuncSpec   `yaml:"funcs"`
}

// Program is a loaded program.
type Program struct {
	Globals el.SymbolTable
	Funcs   []*block.Func
}

// Load parses a YAML program description.
func Load(src []byte) (*Program, error) {
	var f File
	if err := yaml.Unmarshal(src, &f); err != nil {
		return nil, fmt.Errorf("prog: %w", err)
	}
	return Build(&f)
}

// Build resolves the symbols, parses the trees and links the blocks of every
// function in f.
func Build(f *File) (*Program, error) {
	ret := &Program{Globals: make(el.SymbolTable, len(f.Symbols))}

	/* global symbols */
	if err := addSymbols(ret.Globals, f.Symbols); err != nil {
		return nil, fmt.Errorf("prog: %w", err)
	}

	/* build every function */
	for i := range f.Funcs {
		fn, err := buildFunc(ret.Globals, &f.Funcs[i])
		if err != nil {
			return nil, fmt.Errorf("prog: func %s: %w", f.Funcs[i].Name, err)
		}
		ret.Funcs = append(ret.Funcs, fn)
	}
	return ret, nil
}

func addSymbols(tab el.SymbolTable, specs []SymbolSpec) error {
	for _, v := range specs {
		sym, err := newSymbol(v)
		if err != nil {
			return err
		}
		if _, ok := tab[sym.Name]; ok {
			return fmt.Errorf("duplicated symbol %q", sym.Name)
		}
		tab[sym.Name] = sym
	}
	return nil
}

func newSymbol(v SymbolSpec) (*el.Symbol, error) {
	if v.Name == "" {
		return nil, fmt.Errorf("symbol without name")
	}

	/* storage class */
	sc, ok := el.ParseSClass(v.Class)
	if !ok {
		return nil, fmt.Errorf("symbol %s: invalid storage class %q", v.Name, v.Class)
	}

	/* type */
	ty, ok := el.ParseTym(v.Type)
	if !ok {
		return nil, fmt.Errorf("symbol %s: invalid type %q", v.Name, v.Type)
	}

	return &el.Symbol{
		Name:    v.Name,
		Class:   sc,
		Type:    ty,
		Unambig: v.Unambig,
	}, nil
}

func buildFunc(globals el.SymbolTable, spec *FuncSpec) (*block.Func, error) {
	if len(spec.Blocks) == 0 {
		return nil, fmt.Errorf("no blocks")
	}

	/* locals shadow globals */
	syms := make(el.SymbolTable, len(globals)+len(spec.Symbols))
	for k, v := range globals {
		syms[k] = v
	}
	locals := make(el.SymbolTable, len(spec.Symbols))
	if err := addSymbols(locals, spec.Symbols); err != nil {
		return nil, err
	}
	for k, v := range locals {
		syms[k] = v
	}

	/* create the blocks */
	fn := &block.Func{Name: spec.Name}
	names := make(map[string]*block.Block, len(spec.Blocks))
	for i, v := range spec.Blocks {
		bb, err := newBlock(fn, syms, v)
		if err != nil {
			return nil, fmt.Errorf("block %d (%s): %w", i, v.Name, err)
		}
		if bb.Name != "" {
			if _, ok := names[bb.Name]; ok {
				return nil, fmt.Errorf("duplicated block %q", bb.Name)
			}
			names[bb.Name] = bb
		}
	}

	/* link the successors */
	for i, v := range spec.Blocks {
		for _, s := range v.Succ {
			to, ok := names[s]
			if !ok {
				return nil, fmt.Errorf("block %s: undefined successor %q", fn.Blocks[i], s)
			}
			block.Link(fn.Blocks[i], to)
		}
		if err := checkArity(fn.Blocks[i]); err != nil {
			return nil, err
		}
	}
	return fn, nil
}

func newBlock(fn *block.Func, syms el.SymbolTable, v BlockSpec) (*block.Block, error) {
	var e *el.Elem
	var err error

	/* parse the expression */
	if v.Exp != "" {
		if e, err = el.Parse(v.Exp, syms); err != nil {
			return nil, err
		}
	}

	/* default block kind */
	kind := v.Kind
	if kind == "" {
		if len(v.Succ) == 0 {
			kind = "ret"
		} else {
			kind = "goto"
		}
	}

	/* look up the kind */
	bc, ok := block.ParseKind(kind)
	if !ok {
		el.Free(e)
		return nil, fmt.Errorf("invalid block kind %q", kind)
	}
	return fn.NewBlock(v.Name, bc, e), nil
}

func checkArity(bb *block.Block) error {
	n := len(bb.Succ)
	switch bb.Kind {
	case block.BCgoto:
		if n != 1 {
			return fmt.Errorf("block %s: goto needs exactly 1 successor, got %d", bb, n)
		}
	case block.BCiftrue:
		if n != 2 {
			return fmt.Errorf("block %s: iftrue needs exactly 2 successors, got %d", bb, n)
		}
		if bb.Elem == nil {
			return fmt.Errorf("block %s: iftrue needs a condition", bb)
		}
	case block.BCret, block.BCexit:
		if n != 0 {
			return fmt.Errorf("block %s: %s cannot have successors", bb, bb.Kind)
		}
	case block.BCretexp:
		if n != 0 || bb.Elem == nil {
			return fmt.Errorf("block %s: retexp needs a value and no successors", bb)
		}
	}
	return nil
}
