/*
Package popout implements the protocol that keeps a detached window and the
parent desktop consistent.

Five messages make up the protocol, each carrying the window id:

	POPOUT_READY           detached -> parent   mark the record popped out
	RETURN_WINDOW          detached -> parent   take the window back inline
	CLOSE_EXTERNAL_WINDOW  detached -> parent   remove the record
	CLOSE_POPOUT           parent -> detached   close yourself
	POPOUT_CLOSED          detached -> parent   unload notice, best effort

Channel is the parent end. It applies inbound messages to the desktop core,
idempotently per window id, and drops malformed payloads. Messages queued
together are handled in one turn; for a single window a removal wins over
ready or return, otherwise the last message wins.

Detached is the other end. It sends POPOUT_READY once on mount and sends
POPOUT_CLOSED on unload only when it neither returned nor closed the
window explicitly.
*/
package popout
