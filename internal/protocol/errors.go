package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeUnauthorized      = 1003 // 身份无效
	ErrCodeUserExists        = 1004 // 重复登录
	ErrCodeInvalidName       = 2000 // 房间名不合法
	ErrCodeRoomNotFound      = 2001
	ErrCodeRoomFull          = 2002
	ErrCodeNotInRoom         = 2003
	ErrCodeAlreadyInRoom     = 2004
	ErrCodeGameNotStart      = 3001
	ErrCodeOutOfTurn         = 3002
	ErrCodeIllegalPlay       = 3003
	ErrCodeCardNotInHand     = 3004
	ErrCodeInvalidPass       = 3005
	ErrCodeAlreadyPassed     = 3006
	ErrCodeNotPassing        = 3007
	ErrCodeStatsUnavailable  = 4001 // 战绩存储不可用
	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "未知错误",
	ErrCodeInvalidMsg:        "无效的消息格式",
	ErrCodeRateLimit:         "请求过于频繁",
	ErrCodeUnauthorized:      "身份验证失败",
	ErrCodeUserExists:        "该用户已在线",
	ErrCodeInvalidName:       "房间名须为 3-15 位小写字母或数字",
	ErrCodeRoomNotFound:      "房间不存在",
	ErrCodeRoomFull:          "房间已满",
	ErrCodeNotInRoom:         "您不在房间中",
	ErrCodeAlreadyInRoom:     "您已在房间中",
	ErrCodeGameNotStart:      "游戏尚未开始",
	ErrCodeOutOfTurn:         "还没轮到您",
	ErrCodeIllegalPlay:       "不允许出这张牌",
	ErrCodeCardNotInHand:     "您没有这张牌",
	ErrCodeInvalidPass:       "须选择手中 3 张不同的牌",
	ErrCodeAlreadyPassed:     "您已换过牌",
	ErrCodeNotPassing:        "当前不是换牌阶段",
	ErrCodeStatsUnavailable:  "战绩服务暂不可用",
	ErrCodeServerMaintenance: "服务器维护中",
}
