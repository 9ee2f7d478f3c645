package card

import (
	"cmp"
	"slices"
)

// Hand 玩家手牌，集合语义
type Hand struct {
	cards map[Card]struct{}
}

// NewHand 创建手牌
func NewHand(cards ...Card) *Hand {
	h := &Hand{cards: make(map[Card]struct{}, 13)}
	for _, c := range cards {
		h.cards[c] = struct{}{}
	}
	return h
}

// Add 加入一张牌
func (h *Hand) Add(c Card) {
	h.cards[c] = struct{}{}
}

// Remove 移除一张牌，不在手中时返回 false
func (h *Hand) Remove(c Card) bool {
	if _, ok := h.cards[c]; !ok {
		return false
	}
	delete(h.cards, c)
	return true
}

// Has 是否持有这张牌
func (h *Hand) Has(c Card) bool {
	_, ok := h.cards[c]
	return ok
}

// Len 手牌数量
func (h *Hand) Len() int {
	return len(h.cards)
}

// HasSuit 是否有该花色
func (h *Hand) HasSuit(s Suit) bool {
	for c := range h.cards {
		if c.Suit == s {
			return true
		}
	}
	return false
}

// OnlySuit 手牌是否全部为该花色（空手牌返回 false）
func (h *Hand) OnlySuit(s Suit) bool {
	if len(h.cards) == 0 {
		return false
	}
	for c := range h.cards {
		if c.Suit != s {
			return false
		}
	}
	return true
}

// Cards 按花色、点数排序后的手牌
func (h *Hand) Cards() []Card {
	cards := make([]Card, 0, len(h.cards))
	for c := range h.cards {
		cards = append(cards, c)
	}
	SortCards(cards)
	return cards
}

// Filter 返回满足条件的牌（已排序）
func (h *Hand) Filter(keep func(Card) bool) []Card {
	var cards []Card
	for c := range h.cards {
		if keep(c) {
			cards = append(cards, c)
		}
	}
	SortCards(cards)
	return cards
}

// SortCards 按花色、点数升序排序
func SortCards(cards []Card) {
	slices.SortFunc(cards, func(a, b Card) int {
		if c := cmp.Compare(a.Suit, b.Suit); c != 0 {
			return c
		}
		return cmp.Compare(a.Rank, b.Rank)
	})
}
