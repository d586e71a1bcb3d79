package domain

import "errors"

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrNotConnected       = errors.New("not connected to chat server")
)
