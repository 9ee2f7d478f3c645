package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom  MessageType = "create_room"   // 创建房间
	MsgJoinRoom    MessageType = "join_room"     // 加入房间
	MsgLeaveRoom   MessageType = "leave_room"    // 离开房间
	MsgGetRoomList MessageType = "get_room_list" // 获取房间列表

	// 游戏操作
	MsgPassCards MessageType = "pass_cards" // 换牌
	MsgPlayCard  MessageType = "play_card"  // 出牌

	// 战绩
	MsgGetStats MessageType = "get_stats" // 获取全部玩家战绩
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong

	// 房间相关
	MsgRoomCreated    MessageType = "room_created"     // 房间创建成功
	MsgRoomListResult MessageType = "room_list_result" // 房间列表结果
	MsgRoomState      MessageType = "room_state"       // 房间成员变化
	MsgPlayerLeft     MessageType = "player_left"      // 对局中有人掉线
	MsgGraceExpired   MessageType = "grace_expired"    // 掉线宽限期结束

	// 游戏流程
	MsgGameStart     MessageType = "game_start"     // 名单确定，游戏开始
	MsgGameNumber    MessageType = "game_number"    // 新一局
	MsgDealCards     MessageType = "deal_cards"     // 发牌
	MsgCardsReceived MessageType = "cards_received" // 收到换来的牌
	MsgHandUpdate    MessageType = "hand_update"    // 手牌更新
	MsgPlayTurn      MessageType = "play_turn"      // 轮到出牌
	MsgCardPlayed    MessageType = "card_played"    // 有人出牌
	MsgTrickResult   MessageType = "trick_result"   // 一墩结果
	MsgScores        MessageType = "scores"         // 分数
	MsgForfeit       MessageType = "forfeit"        // 超时判负
	MsgGameOver      MessageType = "game_over"      // 游戏结束

	// 战绩
	MsgStatsResult MessageType = "stats_result" // 战绩结果

	// 错误
	MsgError MessageType = "error" // 错误消息
)
