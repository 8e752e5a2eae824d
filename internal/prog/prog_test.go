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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/cgcs/internal/block"
	"github.com/cloudwego/cgcs/internal/el"
)

const testProgram = `
symbols:
  - { name: g, class: global, type: int }
funcs:
  - name: max
    symbols:
      - { name: a, class: parameter, type: int, unambig: true }
      - { name: b, class: parameter, type: int, unambig: true }
      - { name: r, class: auto, type: int, unambig: true }
    blocks:
      - name: entry
        kind: iftrue
        exp: "(< a b)"
        succ: [less, more]
      - name: more
        exp: "(= r a)"
        succ: [done]
      - name: less
        exp: "(= r b)"
        succ: [done]
      - name: done
        kind: retexp
        exp: "(+ r g)"
`

func TestLoad(t *testing.T) {
	p, err := Load([]byte(testProgram))
	require.NoError(t, err)
	require.Len(t, p.Funcs, 1)
	require.Contains(t, p.Globals, "g")

	fn := p.Funcs[0]
	require.Equal(t, "max", fn.Name)
	require.Len(t, fn.Blocks, 4)
	require.Equal(t, block.BCiftrue, fn.Blocks[0].Kind)
	require.Equal(t, block.BCgoto, fn.Blocks[1].Kind)
	require.Equal(t, []*block.Block{fn.Blocks[2], fn.Blocks[1]}, fn.Blocks[0].Succ)
	require.Equal(t, []*block.Block{fn.Blocks[1], fn.Blocks[2]}, fn.Blocks[3].Pred)
	require.Equal(t, "(+ r g)", fn.Blocks[3].Elem.String())
	require.Same(t, p.Globals["g"], fn.Blocks[3].Elem.E[1].V.Sym)
}

func TestLoad_Shadowing(t *testing.T) {
	p, err := Load([]byte(`
symbols:
  - { name: x, class: global, type: int }
funcs:
  - name: f
    symbols:
      - { name: x, class: auto, type: llong }
    blocks:
      - { name: b0, kind: retexp, exp: x }
`))
	require.NoError(t, err)
	require.Equal(t, el.SCauto, p.Funcs[0].Blocks[0].Elem.V.Sym.Class)
	require.Equal(t, el.SCglobal, p.Globals["x"].Class)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"yaml", "funcs: [", "prog: yaml"},
		{"class", "symbols: [{name: x, class: nope, type: int}]\nfuncs: []", "invalid storage class"},
		{"type", "symbols: [{name: x, class: auto, type: nope}]\nfuncs: []", "invalid type"},
		{"dup", "symbols: [{name: x, class: auto, type: int}, {name: x, class: auto, type: int}]\nfuncs: []", "duplicated symbol"},
		{"empty", "funcs: [{name: f}]", "no blocks"},
		{"kind", "funcs: [{name: f, blocks: [{name: b, kind: nope}]}]", "invalid block kind"},
		{"succ", "funcs: [{name: f, blocks: [{name: b, succ: [c]}]}]", "undefined successor"},
		{"arity", "funcs: [{name: f, blocks: [{name: b, kind: goto}]}]", "goto needs exactly 1 successor"},
		{"cond", "funcs: [{name: f, blocks: [{name: b, kind: iftrue, succ: [b, b]}]}]", "iftrue needs a condition"},
		{"symbol", "funcs: [{name: f, blocks: [{name: b, exp: \"(+ x 1)\"}]}]", "undefined symbol"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.src))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestLoad_SyntaxError(t *testing.T) {
	_, err := Load([]byte(`funcs: [{name: f, blocks: [{name: b, exp: "(+ 1"}]}]`))
	var se el.SyntaxError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "(+ 1", se.Src)
}
