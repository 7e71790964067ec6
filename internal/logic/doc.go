// Package logic provides the value types shared by every other package:
// connector identifiers and the four-valued signal state domain.
//
// This package contains type definitions only. All other internal packages
// import logic; logic imports nothing internal.
package logic
