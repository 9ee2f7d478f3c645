package rule

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/palemoky/hearts/internal/game/card"
)

// TricksPerRound 每局墩数
const TricksPerRound = 13

// TrickState 判定出牌所需的局面
type TrickState struct {
	Round        int       // 第几墩（1-13）
	Leading      bool      // 是否为本墩首张
	LeadSuit     card.Suit // 本墩首出花色，Leading 时无意义
	HeartsBroken bool      // 红心是否已破
}

// 违规原因
const (
	ReasonOpenWithTwoOfClubs = "must open with 2♣"
	ReasonNoHeartsFirstTrick = "hearts cannot be played on the first trick"
	ReasonNoQueenFirstTrick  = "Q♠ cannot be played on the first trick"
	ReasonHeartsNotBroken    = "hearts are not broken yet"
	ReasonMustFollowSuit     = "must follow the led suit"
	ReasonQueenBeforeBreak   = "Q♠ cannot be played before hearts are broken"
)

// IllegalPlayError 违规出牌
type IllegalPlayError struct {
	Card   card.Card
	Reason string
}

func (e *IllegalPlayError) Error() string {
	return fmt.Sprintf("illegal play %s: %s", e.Card, e.Reason)
}

// playCheck 返回违规原因，合法时返回空串
type playCheck func(TrickState, card.Card, *card.Hand) string

// strictChecks 按顺序执行的完整规则
var strictChecks = []playCheck{
	checkOpeningLead,
	checkFirstTrickPoints,
	checkHeartLead,
	checkFollowSuit,
	checkQueenBeforeBreak,
}

// relaxedChecks 完整规则下无牌可出时使用，只保留首出 2♣ 与跟花色
var relaxedChecks = []playCheck{
	checkOpeningLead,
	checkFollowSuit,
}

func checkOpeningLead(st TrickState, c card.Card, _ *card.Hand) string {
	if st.Round == 1 && st.Leading && c != card.TwoOfClubs {
		return ReasonOpenWithTwoOfClubs
	}
	return ""
}

func checkFirstTrickPoints(st TrickState, c card.Card, _ *card.Hand) string {
	if st.Round != 1 {
		return ""
	}
	if c.Suit == card.Heart {
		return ReasonNoHeartsFirstTrick
	}
	if c == card.QueenOfSpades {
		return ReasonNoQueenFirstTrick
	}
	return ""
}

// 只有红心时允许首出红心
func checkHeartLead(st TrickState, c card.Card, hand *card.Hand) string {
	if st.Leading && !st.HeartsBroken && c.Suit == card.Heart && !hand.OnlySuit(card.Heart) {
		return ReasonHeartsNotBroken
	}
	return ""
}

func checkFollowSuit(st TrickState, c card.Card, hand *card.Hand) string {
	if !st.Leading && c.Suit != st.LeadSuit && hand.HasSuit(st.LeadSuit) {
		return ReasonMustFollowSuit
	}
	return ""
}

func checkQueenBeforeBreak(st TrickState, c card.Card, _ *card.Hand) string {
	if c == card.QueenOfSpades && !st.HeartsBroken {
		return ReasonQueenBeforeBreak
	}
	return ""
}

func firstViolation(checks []playCheck, st TrickState, c card.Card, hand *card.Hand) string {
	for _, check := range checks {
		if reason := check(st, c, hand); reason != "" {
			return reason
		}
	}
	return ""
}

// CheckPlay 判定手牌中的 c 能否打出
func CheckPlay(st TrickState, c card.Card, hand *card.Hand) error {
	reason := firstViolation(strictChecks, st, c, hand)
	if reason == "" {
		return nil
	}
	if len(legalUnder(strictChecks, st, hand)) == 0 && firstViolation(relaxedChecks, st, c, hand) == "" {
		return nil
	}
	return &IllegalPlayError{Card: c, Reason: reason}
}

// LegalCards 返回当前可出的牌（已排序）
func LegalCards(st TrickState, hand *card.Hand) []card.Card {
	if cards := legalUnder(strictChecks, st, hand); len(cards) > 0 {
		return cards
	}
	return legalUnder(relaxedChecks, st, hand)
}

func legalUnder(checks []playCheck, st TrickState, hand *card.Hand) []card.Card {
	return hand.Filter(func(c card.Card) bool {
		return firstViolation(checks, st, c, hand) == ""
	})
}

// LowestLegal 返回点数最小的可出牌，用于超时代打
func LowestLegal(st TrickState, hand *card.Hand) (card.Card, bool) {
	cards := LegalCards(st, hand)
	if len(cards) == 0 {
		return card.Card{}, false
	}
	return slices.MinFunc(cards, func(a, b card.Card) int {
		if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
			return c
		}
		return cmp.Compare(a.Suit, b.Suit)
	}), true
}
