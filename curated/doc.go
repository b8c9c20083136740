// This file is part of Retrace.
//
// Retrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Retrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Retrace.  If not, see <https://www.gnu.org/licenses/>.

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. It takes a
// formatting pattern and placeholder values, like fmt.Errorf(), but the
// pattern doubles as the identity of the error. The Is() function checks
// whether an error was created with a specific pattern:
//
//	e := curated.Errorf("thread: no such thread")
//
//	if curated.Is(e, "thread: no such thread") {
//		fmt.Println("true")
//	}
//
// The Has() function is similar but checks whether the pattern occurs
// anywhere in the error chain, not just at the head. IsAny() answers
// whether the error is curated at all; an uncurated error can be thought
// of as unexpected.
//
// Pattern strings used as sentinels should be stored as const strings,
// suitably named and commented. The thread package does this for its
// POSIX-style identity errors (NoSuchThread, InvalidArgument, and so on),
// which allows callers to handle them without string comparison at the
// call site.
//
// The Error() function normalises the message chain: duplicate adjacent
// parts, as separated by the sub-string ": ", are folded together. This
// alleviates the problem of when and how to wrap an error. Wrapping an
// already-wrapped error with the same pattern will not stutter.
package curated
