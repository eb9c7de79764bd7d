package lib

import "errors"

var (
	ErrConnection        = errors.New("connection failed")
	ErrSecurityHandshake = errors.New("security handshake failed")
	ErrAuthentication    = errors.New("authentication failure")
	ErrSelectMailbox     = errors.New("cannot select mailbox")
	ErrListMessages      = errors.New("cannot list messages")
	ErrNoBody            = errors.New("server returned no message body")
	ErrCredential        = errors.New("cannot resolve credential")
	ErrLocalIndex        = errors.New("cannot scan local mailbox")
	ErrBootstrap         = errors.New("cannot create local mailbox")
)
