package session

import (
	"github.com/palemoky/hearts/internal/protocol"
	"github.com/palemoky/hearts/internal/types"
)

// Effect 是 Game 处理一次请求后产生的对外动作，由 Session 统一执行
type Effect interface {
	effect()
}

// Deliver 向指定连接投递消息，接收方在产生时即已确定
type Deliver struct {
	To  []types.ClientInterface
	Msg *protocol.Message
}

// RecordWin 记一次胜场
type RecordWin struct {
	UserID string
}

// RecordLoss 记一次负场
type RecordLoss struct {
	UserID string
}

// ArmTurnTimer 为当前出牌者启动超时计时
type ArmTurnTimer struct {
	Seq uint64
}

// ArmPassTimer 启动换牌超时计时
type ArmPassTimer struct {
	Seq uint64
}

// StopTimers 停止出牌/换牌计时
type StopTimers struct{}

// ArmGraceTimer 玩家掉线后的宽限计时
type ArmGraceTimer struct {
	UserID string
}

// CloseAll 关闭所有在座连接
type CloseAll struct {
	Clients []types.ClientInterface
}

func (Deliver) effect()       {}
func (RecordWin) effect()     {}
func (RecordLoss) effect()    {}
func (ArmTurnTimer) effect()  {}
func (ArmPassTimer) effect()  {}
func (StopTimers) effect()    {}
func (ArmGraceTimer) effect() {}
func (CloseAll) effect()      {}
