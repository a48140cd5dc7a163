package model

import "errors"

var (
	// ErrConversationNotFound is returned when a referenced conversation does not exist.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrInvalidID is returned for identifiers that are not valid object ids.
	ErrInvalidID = errors.New("invalid id")

	// ErrDuplicateOrder is returned when another writer already took a message_order.
	ErrDuplicateOrder = errors.New("message order already assigned")
)
