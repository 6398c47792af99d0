// Package main is deskctl, an operator CLI for the desktop server.
//
// Usage:
//
//	deskctl list
//	deskctl open notes "Shopping list"
//	deskctl mode widgets
//	deskctl attach win_01J...   # host a popped-out window in the terminal
package main
