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
)

// InternalError is raised (as a panic) when an internal invariant of the
// backend is violated. There is no recovery at this layer.
type InternalError struct {
    Msg string
}

func (self *InternalError) Error() string {
    return "internal compiler error: " + self.Msg
}

func ice(format string, args ...interface{}) *InternalError {
    return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

// Assert panics with an InternalError if cond does not hold.
func Assert(cond bool, format string, args ...interface{}) {
    if !cond {
        panic(ice(format, args...))
    }
}

// SyntaxError occures when failed to parse an expression tree.
type SyntaxError struct {
    Pos    int
    Src    string
    Reason string
}

func (self SyntaxError) Error() string {
    return fmt.Sprintf("Syntax error at position %d: %s", self.Pos, self.Reason)
}

// Fatal unconditionally panics with an InternalError.
func Fatal(format string, args ...interface{}) {
    panic(ice(format, args...))
}
