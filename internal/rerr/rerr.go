// Package rerr defines the typed command errors shared by every store and
// the dispatcher, so the exact RESP error-prefix strings quoted in the spec
// are built once instead of scattered across command handlers — the same
// single-call-site discipline lukluk-rendang uses for createErrorResponse.
package rerr

import "fmt"

// Error is a command-level error carrying a RESP error prefix tag
// (ERR, WRONGTYPE, READONLY, ...) and a message. Its Error() string is
// exactly the text that belongs after the leading '-' on the wire.
type Error struct {
	Tag string
	Msg string
}

func (e *Error) Error() string {
	if e.Tag == "" {
		return e.Msg
	}
	return e.Tag + " " + e.Msg
}

func New(tag, msg string) *Error { return &Error{Tag: tag, Msg: msg} }

func Errf(tag, format string, args ...any) *Error {
	return &Error{Tag: tag, Msg: fmt.Sprintf(format, args...)}
}

var (
	ErrWrongType        = New("WRONGTYPE", "Operation against a key holding the wrong kind of value")
	ErrNotInteger       = New("ERR", "value is not an integer or out of range")
	ErrNotFloat         = New("ERR", "value is not a valid float")
	ErrMultiNested      = New("ERR", "MULTI calls can not be nested")
	ErrExecWithoutMulti = New("ERR", "EXEC without MULTI")
	ErrDiscardNoMulti   = New("ERR", "DISCARD without MULTI")
	ErrReadOnlyReplica  = New("READONLY", "You can't write against a read only replica.")
	ErrProtocol         = New("ERR", "Protocol error")
	ErrXaddZero         = New("ERR", "The ID specified in XADD must be greater than 0-0")
	ErrXaddSmaller      = New("ERR", "The ID specified in XADD is equal or smaller than the target stream top item")
)

func WrongNumArgs(cmd string) *Error {
	return Errf("ERR", "wrong number of arguments for '%s' command", cmd)
}

func UnknownCommand(cmd string) *Error {
	return Errf("ERR", "Unknown command '%s'", cmd)
}

func SubscribedContextOnly(cmd string) *Error {
	return Errf("ERR", "Can't execute '%s': only (P|S)SUBSCRIBE / (P|S)UNSUBSCRIBE / PING / QUIT / RESET are allowed in this context", cmd)
}
