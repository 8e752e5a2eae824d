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


package cgcs

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testProgram = `
symbols:
  - { name: g, class: global, type: int }
funcs:
  - name: sum
    symbols:
      - { name: a, class: auto, type: int, unambig: true }
      - { name: b, class: auto, type: int, unambig: true }
      - { name: y, class: auto, type: int, unambig: true }
    blocks:
      - name: entry
        exp: "(= y (* (+ a b) (+ a b)))"
        succ: [next]
      - name: next
        exp: "(= g (+ a b))"
        succ: [exit]
      - name: exit
        kind: retexp
        exp: "(+ g (+ a b))"
`

func TestCompile(t *testing.T) {
	res, err := Compile([]byte(testProgram))
	require.NoError(t, err)
	require.Len(t, res.Funcs, 1)
	require.Nil(t, res.Funcs[0].Code)
	require.Equal(t, 1, res.Stats.EBBs)
	require.Equal(t, 3, res.Stats.Merged)
	require.Equal(t, res.Funcs[0].Stats, res.Stats)
	require.Equal(t, strings.Join([]string{
		"entry [goto]: (= y (* %1=(+ a b) %1))",
		"next [goto]: (= g %1)",
		"exit [retexp]: (+ g %1)",
		"",
	}, "\n"), Dump(res.Funcs[0].Func))
}

func TestCompile_Options(t *testing.T) {
	for _, opt := range []Option{WithoutFilter(), WithFilterSize(3), WithSwapDoubleOpAssign(true)} {
		res, err := Compile([]byte(testProgram), opt)
		require.NoError(t, err)
		require.Equal(t, 3, res.Stats.Merged)
	}
	require.Panics(t, func() { WithFilterSize(-1) })
}

func TestCompile_Trace(t *testing.T) {
	var buf bytes.Buffer
	_, err := Compile([]byte(testProgram), WithTrace(&buf))
	require.NoError(t, err)
	require.Contains(t, buf.String(), "comsubs(sum)\n")
	require.Contains(t, buf.String(), "cses for block entry\n")
}

func TestCompile_Codegen(t *testing.T) {
	res, err := Compile([]byte(testProgram), WithCodegen(true), WithPOPCNT(false))
	require.NoError(t, err)
	code := res.Funcs[0].Code
	require.NotNil(t, code)
	require.NotEmpty(t, code.Text)
	require.Equal(t, 1, code.CSEs)
	require.Equal(t, 3, code.Loads)
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile([]byte(`funcs: [ { name: f, blocks: [ { exp: "(+ a" } ] } ]`))
	var se SyntaxError
	require.True(t, errors.As(err, &se))
}

func TestCompile_InternalError(t *testing.T) {
	_, err := Compile([]byte(`
funcs:
  - name: f
    symbols:
      - { name: a, class: auto, type: int }
    blocks:
      - { kind: retexp, exp: "(addr a)" }
`))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInternal))
}

func TestCompile_Unsupported(t *testing.T) {
	_, err := Compile([]byte(`
funcs:
  - name: f
    symbols:
      - { name: d, class: auto, type: double, unambig: true }
    blocks:
      - { kind: retexp, exp: "(+ d 1.0)" }
`), WithCodegen(true))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnsupported))
}
