package rule

import (
	"cmp"
	"errors"
	"slices"

	"github.com/palemoky/hearts/internal/game/card"
)

// PassSize 每人换出的牌数
const PassSize = 3

// PassDirection 换牌方向
type PassDirection int

const (
	PassHold   PassDirection = iota // 不换
	PassLeft                        // 传给下家
	PassRight                       // 传给上家
	PassAcross                      // 传给对家
)

var passDirectionNames = map[PassDirection]string{
	PassHold:   "hold",
	PassLeft:   "left",
	PassRight:  "right",
	PassAcross: "across",
}

var passOffsets = map[PassDirection]int{
	PassHold:   0,
	PassLeft:   1,
	PassRight:  -1,
	PassAcross: 2,
}

func (d PassDirection) String() string {
	return passDirectionNames[d]
}

// Offset 目标座位相对偏移
func (d PassDirection) Offset() int {
	return passOffsets[d]
}

// PassDirectionFor 按局数取换牌方向：1 左、2 右、3 对家、0 不换
func PassDirectionFor(gameNumber int) PassDirection {
	switch gameNumber % 4 {
	case 1:
		return PassLeft
	case 2:
		return PassRight
	case 3:
		return PassAcross
	default:
		return PassHold
	}
}

// PassTarget 返回 seat 的换牌接收座位
func PassTarget(seat, gameNumber, players int) int {
	off := PassDirectionFor(gameNumber).Offset()
	return ((seat+off)%players + players) % players
}

// 换牌校验错误
var (
	ErrPassCount     = errors.New("exactly 3 cards must be passed")
	ErrPassDuplicate = errors.New("the same card was passed twice")
	ErrPassNotHeld   = errors.New("a passed card is not in hand")
)

// CheckPass 校验换出的牌：3 张、互不相同、都在手中
func CheckPass(cards []card.Card, hand *card.Hand) error {
	if len(cards) != PassSize {
		return ErrPassCount
	}
	seen := make(map[card.Card]struct{}, PassSize)
	for _, c := range cards {
		if _, dup := seen[c]; dup {
			return ErrPassDuplicate
		}
		seen[c] = struct{}{}
		if !hand.Has(c) {
			return ErrPassNotHeld
		}
	}
	return nil
}

// AutoPass 超时时替玩家挑出点数最大的 3 张
func AutoPass(hand *card.Hand) []card.Card {
	cards := hand.Cards()
	slices.SortFunc(cards, func(a, b card.Card) int {
		if c := cmp.Compare(b.Rank, a.Rank); c != 0 {
			return c
		}
		return cmp.Compare(b.Suit, a.Suit)
	})
	return cards[:min(PassSize, len(cards))]
}
