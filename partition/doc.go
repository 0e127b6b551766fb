// Package partition enumerates the positions of a collection owned by one
// virtual process without visiting the others.
package partition
