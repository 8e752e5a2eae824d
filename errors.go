/*
 * Copyright 2021 ByteDance Inc.
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
    `errors`
    `fmt`

    `github.com/cloudwego/cgcs/internal/cgen`
    `github.com/cloudwego/cgcs/internal/el`
)

// SyntaxError occures when failed to parse an expression tree.
type SyntaxError = el.SyntaxError

// InternalError is the panic value of a violated backend invariant.
type InternalError = el.InternalError

var (
    // ErrInternal wraps an internal compiler error recovered by Compile.
    ErrInternal = errors.New("cgcs: internal compiler error")

    // ErrUnsupported is returned when the code generator cannot lower a construct.
    ErrUnsupported = cgen.ErrUnsupported
)

func recoverICE(err *error) {
    if v := recover(); v != nil {
        if ie, ok := v.(*el.InternalError); ok {
            *err = fmt.Errorf("%w: %s", ErrInternal, ie.Msg)
        } else {
            panic(v)
        }
    }
}
