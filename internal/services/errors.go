// internal/services/errors.go
package services

import (
	"errors"
)

// Typed failures the handlers map onto HTTP statuses. None of these is fatal;
// the worst outcome anywhere in the core is a gated feature staying locked.
var (
	ErrInvalidMessage = errors.New("invalid message")
	ErrUnknownAsset   = errors.New("asset not found")
	ErrUnknownUser    = errors.New("user not found")
	ErrNotOwner       = errors.New("not the owner of this asset")
	ErrAssetTraded    = errors.New("asset has already been traded")
	ErrLocked         = errors.New("content is locked until the unlock fee is paid")
)
