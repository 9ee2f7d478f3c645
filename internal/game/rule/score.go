package rule

import "github.com/palemoky/hearts/internal/game/card"

// 分值
const (
	HeartPoints = 1
	QueenPoints = 13
)

// CardPoints 单张牌的分值
func CardPoints(c card.Card) int {
	switch {
	case c.Suit == card.Heart:
		return HeartPoints
	case c == card.QueenOfSpades:
		return QueenPoints
	default:
		return 0
	}
}

// TrickWinner 返回首出花色中点数最大的牌的下标；垫牌不可能赢
func TrickWinner(plays []card.Card, lead card.Suit) int {
	winner := -1
	for i, c := range plays {
		if c.Suit != lead {
			continue
		}
		if winner < 0 || c.Rank > plays[winner].Rank {
			winner = i
		}
	}
	return winner
}

// TrickPoints 计算一墩的总分，并报告是否含红心
func TrickPoints(plays []card.Card) (points int, hasHeart bool) {
	for _, c := range plays {
		points += CardPoints(c)
		if c.Suit == card.Heart {
			hasHeart = true
		}
	}
	return points, hasHeart
}

// ThresholdReached 是否有人达到终局分数线
func ThresholdReached(scores []int, threshold int) bool {
	for _, s := range scores {
		if s >= threshold {
			return true
		}
	}
	return false
}

// LowestScore 返回最低分的下标，同分取靠前者
func LowestScore(scores []int) int {
	best := -1
	for i, s := range scores {
		if best < 0 || s < scores[best] {
			best = i
		}
	}
	return best
}
