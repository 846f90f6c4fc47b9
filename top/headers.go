/*
 * headers.go, part of assemble.
 *
 * Copyright 2024 Matteo Degiacomi and the assemble contributors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package top

import (
	"fmt"
	"regexp"
	"strings"
)

// Utility functions

func qerr(err error) {
	if err != nil {
		panic(err.Error())
	}
}

// Returns a string without comments (sequences starting with ';'),
// trailing and leading spaces, tabs and newlines
func cleanString(s string) string {
	f := strings.Split(s, ";")[0]
	return strings.Trim(f, "\r\n\t ")
}

var fi = strings.Fields

// topHeader recognizes the section headers of a monomer topology file.
type topHeader struct {
	wany *regexp.Regexp
	spec map[string]*regexp.Regexp
}

func newTopHeader() *topHeader {
	T := new(topHeader)
	T.wany = regexp.MustCompile(`^\[\p{Zs}*.*\p{Zs}*\]`)
	T.spec = make(map[string]*regexp.Regexp, len(sections))
	for _, v := range sections {
		T.spec[v] = regexp.MustCompile(fmt.Sprintf(`^\[\p{Zs}*%s\p{Zs}*\]`, v))
	}
	return T
}

// The sections a monomer topology can have.
var sections = []string{"bonds", "angles", "dihedrals", "impropers", "mapping", "nterminal", "cterminal"}

// Is returns true if the line is a header. It discards comments.
func (T *topHeader) Is(line string) bool {
	return T.wany.MatchString(cleanString(line))
}

// Which returns the name of the header in line, or an empty string
// if the header is not a known one.
func (T *topHeader) Which(line string) string {
	line = cleanString(line)
	for k, v := range T.spec {
		if v.MatchString(line) {
			return k
		}
	}
	return ""
}
