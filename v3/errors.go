/*
 * errors.go, part of assemble.
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

package v3

import "fmt"

// Error is the error type for the v3 package. It mirrors the one in the
// assemble package to avoid a circular import.
type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	if len(err.deco) == 0 {
		return err.message
	}
	return fmt.Sprintf("%s: %s", err.deco[len(err.deco)-1], err.message)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	err.deco = append(err.deco, dec)
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix   = PanicMsg("assemble/v3: A Matrix should have 3 columns")
	ErrNoCrossProduct = PanicMsg("assemble/v3: Invalid matrix for cross product")
	ErrZeroVector     = PanicMsg("assemble/v3: Can't normalize a zero vector")
	ErrEigen          = PanicMsg("assemble/v3: Can't obtain eigenvectors/eigenvalues of given matrix")
	ErrDeterminant    = PanicMsg("assemble/v3: Determinants are only available for 3x3 matrices")
	ErrShape          = PanicMsg("assemble/v3: Dimension mismatch")
)
