package apperrors

import (
	"github.com/palemoky/hearts/internal/protocol"
)

// GameError 游戏错误（房间和会话共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Is 按错误码比较，使带原因的副本仍能匹配哨兵错误
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	return ok && t.Code == e.Code
}

// WithReason 返回附带具体原因的副本
func (e *GameError) WithReason(reason string) *GameError {
	return &GameError{Code: e.Code, Message: reason}
}

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrInvalidName      = newError(protocol.ErrCodeInvalidName)
	ErrRoomNotFound     = newError(protocol.ErrCodeRoomNotFound)
	ErrRoomFull         = newError(protocol.ErrCodeRoomFull)
	ErrNotInRoom        = newError(protocol.ErrCodeNotInRoom)
	ErrAlreadyInRoom    = newError(protocol.ErrCodeAlreadyInRoom)
	ErrGameNotStarted   = newError(protocol.ErrCodeGameNotStart)
	ErrOutOfTurn        = newError(protocol.ErrCodeOutOfTurn)
	ErrIllegalPlay      = newError(protocol.ErrCodeIllegalPlay)
	ErrCardNotInHand    = newError(protocol.ErrCodeCardNotInHand)
	ErrInvalidPass      = newError(protocol.ErrCodeInvalidPass)
	ErrAlreadyPassed    = newError(protocol.ErrCodeAlreadyPassed)
	ErrNotPassing       = newError(protocol.ErrCodeNotPassing)
	ErrStatsUnavailable = newError(protocol.ErrCodeStatsUnavailable)
	ErrUserExists       = newError(protocol.ErrCodeUserExists)
	ErrUnauthorized     = newError(protocol.ErrCodeUnauthorized)
	ErrMaintenance      = newError(protocol.ErrCodeServerMaintenance)
)
