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


// Package cgcs eliminates common subexpressions in the expression trees of a
// compiled function, within extended basic blocks, and optionally lowers the
// result to x86-64 machine code.
package cgcs

import (
	"strings"

	"github.com/cloudwego/cgcs/internal/block"
	"github.com/cloudwego/cgcs/internal/cgen"
	"github.com/cloudwego/cgcs/internal/cse"
	"github.com/cloudwego/cgcs/internal/el"
	"github.com/cloudwego/cgcs/internal/opts"
	"github.com/cloudwego/cgcs/internal/prog"
)

type (
	Func  = block.Func
	Stats = cse.Stats
	Code  = cgen.Code
)

// FuncResult is the outcome of compiling one function.
type FuncResult struct {
	Func  *Func
	Stats Stats
	Code  *Code // nil unless code generation is enabled
}

// Result is the outcome of compiling a program.
type Result struct {
	Funcs []FuncResult
	Stats Stats // accumulated over all functions
}

// Compile loads a YAML program description and runs the CSE pass over every
// function in it, followed by the code generator if enabled.
func Compile(src []byte, options ...Option) (*Result, error) {
	p, err := prog.Load(src)
	if err != nil {
		return nil, err
	}
	return CompileFuncs(p.Funcs, options...)
}

// CompileFuncs runs the CSE pass over the given functions. The trees are
// modified in place. Internal compiler errors are returned as errors wrapping
// ErrInternal.
func CompileFuncs(fns []*Func, options ...Option) (ret *Result, err error) {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}

	/* internal errors are fatal to the compilation */
	ret = new(Result)
	defer recoverICE(&err)

	/* compile every function */
	for _, fn := range fns {
		fr := FuncResult{Func: fn, Stats: cse.Comsubs(fn, &o)}
		if o.Codegen {
			if fr.Code, err = cgen.Generate(fn, &o); err != nil {
				return nil, err
			}
		}
		ret.Funcs = append(ret.Funcs, fr)
		ret.Stats.Add(fr.Stats)
	}
	return ret, nil
}

// Dump renders the trees of every block of fn, one per line, prefixed with the
// block name. Shared nodes are labelled across the whole function.
func Dump(fn *Func) string {
	var sb strings.Builder
	pr := el.NewPrinter(&sb)

	/* print every block */
	for _, bb := range fn.Blocks {
		sb.WriteString(bb.String())
		sb.WriteString(" [" + bb.Kind.String() + "]")
		if bb.Elem != nil {
			sb.WriteString(": ")
			pr.Print(bb.Elem)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
