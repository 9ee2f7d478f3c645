// Package identity 在 WebSocket 升级前确定连接对应的用户
package identity

import (
	"math/rand/v2"
	"net/http"
	"strings"
)

// Identity 连接的身份
type Identity struct {
	UserID         string
	Name           string
	ReconnectToken string // 仅匿名身份携带
}

// Provider 从升级请求中解析身份
type Provider interface {
	Identify(r *http.Request) (Identity, error)
}

// tokenFromRequest 依次读取 ?token= 与 Authorization: Bearer
func tokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// 昵称词库
var (
	adjectives = []string{
		"勇敢的", "聪明的", "快乐的", "神秘的", "酷炫的",
		"优雅的", "可爱的", "威武的", "沉稳的", "活泼的",
		"机智的", "潇洒的", "温柔的", "霸气的", "淡定的",
	}

	nouns = []string{
		"红桃", "黑桃", "方块", "梅花", "皇后",
		"国王", "骑士", "熊猫", "狐狸", "企鹅",
		"柯基", "龙猫", "松鼠", "水獭", "羊驼",
	}
)

// GenerateNickname 生成随机昵称
func GenerateNickname() string {
	return adjectives[rand.IntN(len(adjectives))] + nouns[rand.IntN(len(nouns))]
}
