// Windows path classification and extended-length conversion based on (but
// modified from)
// https://github.com/golang/go/blob/da0d1a44bac379f5acedb1933f85400de08f4ac6/src/os/path_windows.go
//
// The original code license:
//
// Copyright (c) 2009 The Go Authors. All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are
// met:
//
//    * Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//    * Redistributions in binary form must reproduce the above
// copyright notice, this list of conditions and the following disclaimer
// in the documentation and/or other materials provided with the
// distribution.
//    * Neither the name of Google Inc. nor the names of its
// contributors may be used to endorse or promote products derived from
// this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
// "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
// LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
// A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
// OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
// LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
// DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
// THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
// (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
//
// The original license header inside the code itself:
//
// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package longpath provides Windows path classification and conversion to
// and from the extended-length (\\?\-prefixed) form. It operates purely on
// strings and is available on all platforms.
package longpath

import (
	"strings"
)

const (
	// extendedPrefix is the prefix of extended-length paths.
	extendedPrefix = `\\?\`
	// extendedUNCPrefix is the prefix of extended-length UNC paths.
	extendedUNCPrefix = `\\?\UNC\`
	// ntPrefix is the NT object manager prefix used in reparse point
	// substitute names.
	ntPrefix = `\??\`
	// ntUNCPrefix is the NT object manager prefix for UNC targets.
	ntUNCPrefix = `\??\UNC\`
)

// IsSeparator reports whether c is a directory separator character. Windows
// accepts both \ and / as separators.
func IsSeparator(c uint8) bool {
	return c == '\\' || c == '/'
}

// IsAbs reports whether path is absolute, i.e. whether it has a volume name
// followed by a separator. Extended-length paths are always absolute.
func IsAbs(path string) bool {
	if IsExtended(path) {
		return true
	}
	v := VolumeName(path)
	if v == "" {
		return false
	}
	path = path[len(v):]
	if path == "" {
		// A bare UNC volume (\\server\share) is absolute, a bare drive (c:)
		// is drive-relative.
		return len(v) > 2
	}
	return IsSeparator(path[0])
}

// VolumeName returns the leading volume name: either a drive specification
// (c:) or a UNC share (\\server\share). It returns an empty string if path has
// no volume name.
func VolumeName(path string) string {
	if len(path) < 2 {
		return ""
	}
	// with drive letter
	c := path[0]
	if path[1] == ':' &&
		('0' <= c && c <= '9' || 'a' <= c && c <= 'z' ||
			'A' <= c && c <= 'Z') {
		return path[:2]
	}
	// is it UNC
	if l := len(path); l >= 5 && IsSeparator(path[0]) && IsSeparator(path[1]) &&
		!IsSeparator(path[2]) && path[2] != '.' && path[2] != '?' {
		// first, leading `\\` and next shouldn't be `\`. its server name.
		for n := 3; n < l-1; n++ {
			// second, next '\' shouldn't be repeated.
			if IsSeparator(path[n]) {
				n++
				// third, following something characters. its share name.
				if !IsSeparator(path[n]) {
					if path[n] == '.' {
						break
					}
					for ; n < l; n++ {
						if IsSeparator(path[n]) {
							break
						}
					}
					return path[:n]
				}
				break
			}
		}
	}
	return ""
}

// IsExtended reports whether path is already in extended-length form.
func IsExtended(path string) bool {
	return strings.HasPrefix(path, extendedPrefix)
}

// Strip converts extended-length and NT object manager paths back into their
// conventional Win32 forms. Paths in other forms are returned unmodified.
func Strip(path string) string {
	switch {
	case strings.HasPrefix(path, extendedUNCPrefix):
		return `\\` + path[len(extendedUNCPrefix):]
	case strings.HasPrefix(path, ntUNCPrefix):
		return `\\` + path[len(ntUNCPrefix):]
	case strings.HasPrefix(path, extendedPrefix):
		return path[len(extendedPrefix):]
	case strings.HasPrefix(path, ntPrefix):
		return path[len(ntPrefix):]
	}
	return path
}

// Fix returns the extended-length form of path when needed, in order to avoid
// the default 260 character file path limit imposed by Windows. Drive paths
// become \\?\c:\... and UNC paths become \\?\UNC\server\share\.... If path is
// not easily converted (for example, if it is relative or contains ..
// elements), or is short enough, Fix returns path unmodified.
//
// See https://msdn.microsoft.com/en-us/library/windows/desktop/aa365247(v=vs.85).aspx#maxpath
func Fix(path string) string {
	// Empirically the kernel accepts paths shorter than 248 bytes: MAX_PATH
	// minus room for an appended 8.3 file name.
	if len(path) < 248 || IsExtended(path) {
		return path
	}
	if !IsAbs(path) {
		return path
	}

	// Select the prefix and the portion of the path that follows it.
	prefix := `\\?`
	body := path
	if IsSeparator(path[0]) && IsSeparator(path[1]) {
		prefix = `\\?\UNC`
		body = path[1:]
	}

	// The extended form disables evaluation of . and .. path elements and the
	// interpretation of / as equivalent to \. Rewrite / to \ and elide .
	// elements as well as trailing or duplicate separators.
	pathbuf := make([]byte, len(prefix)+len(body)+len(`\`))
	copy(pathbuf, prefix)
	n := len(body)
	r, w := 0, len(prefix)
	for r < n {
		switch {
		case IsSeparator(body[r]):
			r++
		case body[r] == '.' && (r+1 == n || IsSeparator(body[r+1])):
			r++
		case r+1 < n && body[r] == '.' && body[r+1] == '.' && (r+2 == n || IsSeparator(body[r+2])):
			// /../ is unhandled
			return path
		default:
			pathbuf[w] = '\\'
			w++
			for ; r < n && !IsSeparator(body[r]); r++ {
				pathbuf[w] = body[r]
				w++
			}
		}
	}
	// A drive's root directory needs a trailing \
	if w == len(`\\?\c:`) && prefix == `\\?` {
		pathbuf[w] = '\\'
		w++
	}
	return string(pathbuf[:w])
}
