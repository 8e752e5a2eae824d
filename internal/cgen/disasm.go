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

package cgen

import (
    `fmt`

    `golang.org/x/arch/x86/x86asm`
)

// Disassemble renders machine code in GNU syntax, one instruction per line.
func Disassemble(code []byte) ([]string, error) {
    var pc  int
    var ret []string

    /* decode until the end of the code */
    for pc < len(code) {
        ins, err := x86asm.Decode(code[pc:], 64)
        if err != nil {
            return ret, fmt.Errorf("cgen: cannot decode instruction at %#x: %w", pc, err)
        }

        /* render the instruction */
        ret = append(ret, fmt.Sprintf("%#06x  %s", pc, x86asm.GNUSyntax(ins, uint64(pc), nil)))
        pc += ins.Len
    }
    return ret, nil
}

// Mnemonics returns just the instruction names of the machine code.
func Mnemonics(code []byte) ([]string, error) {
    var pc  int
    var ret []string

    /* decode until the end of the code */
    for pc < len(code) {
        ins, err := x86asm.Decode(code[pc:], 64)
        if err != nil {
            return ret, fmt.Errorf("cgen: cannot decode instruction at %#x: %w", pc, err)
        }

        /* only the opcode is needed */
        ret = append(ret, ins.Op.String())
        pc += ins.Len
    }
    return ret, nil
}
