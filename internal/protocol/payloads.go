package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	Name string `json:"name"` // 3-15 位小写字母或数字
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomID string `json:"room_id"`
}

// PassCardsPayload 换牌请求
type PassCardsPayload struct {
	Cards []CardInfo `json:"cards"` // 恰好 3 张
}

// PlayCardPayload 出牌请求
type PlayCardPayload struct {
	Card CardInfo `json:"card"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID       string `json:"player_id"`
	PlayerName     string `json:"player_name"`
	ReconnectToken string `json:"reconnect_token,omitempty"` // 匿名身份的重连令牌
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
}

// RoomStatePayload 房间成员变化
type RoomStatePayload struct {
	RoomID   string       `json:"room_id"`
	Name     string       `json:"name"`
	Count    int          `json:"count"`    // 在座人数
	Required int          `json:"required"` // 还差几人开局
	Players  []PlayerInfo `json:"players"`  // 在座玩家（座次顺序）
	Roster   []string     `json:"roster"`   // 已确认名单
	Active   bool         `json:"active"`   // 对局进行中
	Stable   bool         `json:"stable"`   // 无人掉线
}

// PlayerLeftPayload 对局中玩家离开通知
type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
	Grace    int    `json:"grace"` // 宽限期（秒）
}

// GraceExpiredPayload 宽限期结束通知
type GraceExpiredPayload struct {
	PlayerID string `json:"player_id"`
}

// GameStartPayload 名单确定
type GameStartPayload struct {
	Roster []PlayerInfo `json:"roster"`
}

// GameNumberPayload 新一局
type GameNumberPayload struct {
	GameNumber int    `json:"game_number"`
	Direction  string `json:"direction"` // left/right/across/hold
}

// DealCardsPayload 发牌
type DealCardsPayload struct {
	Cards   []CardInfo `json:"cards"`
	Passing bool       `json:"passing"` // 本局需要换牌
}

// CardsReceivedPayload 收到换来的牌
type CardsReceivedPayload struct {
	FromID string     `json:"from_id"`
	Cards  []CardInfo `json:"cards"`
}

// HandUpdatePayload 手牌更新
type HandUpdatePayload struct {
	Cards []CardInfo `json:"cards"`
}

// PlayTurnPayload 轮到出牌
type PlayTurnPayload struct {
	PlayerID string `json:"player_id"`
	Round    int    `json:"round"`   // 第几墩（1-13）
	Timeout  int    `json:"timeout"` // 超时时间（秒）
}

// CardPlayedPayload 有人出牌
type CardPlayedPayload struct {
	PlayerID string   `json:"player_id"`
	Card     CardInfo `json:"card"`
	Auto     bool     `json:"auto,omitempty"` // 超时自动出牌
}

// TrickResultPayload 一墩结果
type TrickResultPayload struct {
	WinnerID     string `json:"winner_id"`
	Points       int    `json:"points"`
	Round        int    `json:"round"`
	HeartsBroken bool   `json:"hearts_broken"`
}

// ScoresPayload 分数
type ScoresPayload struct {
	Scores []ScoreEntry `json:"scores"`
}

// ScoreEntry 单个玩家分数
type ScoreEntry struct {
	PlayerID string `json:"player_id"`
	Score    int    `json:"score"`
}

// ForfeitPayload 超时判负
type ForfeitPayload struct {
	PlayerID string `json:"player_id"`
}

// GameOverPayload 游戏结束
type GameOverPayload struct {
	WinnerID string       `json:"winner_id"`
	Scores   []ScoreEntry `json:"scores"`
}

// RoomListResultPayload 房间列表结果
type RoomListResultPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// StatsResultPayload 全部玩家战绩
type StatsResultPayload struct {
	Entries []StatsEntry `json:"entries"`
}

// StatsEntry 单个玩家战绩
type StatsEntry struct {
	PlayerID string `json:"player_id"`
	Wins     int64  `json:"wins"`
	Losses   int64  `json:"losses"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- 通用数据结构 ---

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Seat   int    `json:"seat"`
	Online bool   `json:"online"`
}

// CardInfo 牌信息
type CardInfo struct {
	Suit int `json:"suit"` // 0♣ 1♦ 2♥ 3♠
	Rank int `json:"rank"` // 2-14
}

// RoomListItem 房间列表项
type RoomListItem struct {
	RoomID      string `json:"room_id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"player_count"`
	Active      bool   `json:"active"`
}
