package card

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Suit 定义花色
type Suit int

// Rank 定义点数，数值即大小
type Rank int

// Card 定义一张牌，按 (Suit, Rank) 比较
type Card struct {
	Suit Suit
	Rank Rank
}

const (
	Club    Suit = iota // 梅花
	Diamond             // 方块
	Heart               // 红心
	Spade               // 黑桃
)

// Suits 全部花色
var Suits = []Suit{Club, Diamond, Heart, Spade}

// suitSymbols 花色符号映射表
var suitSymbols = map[Suit]string{
	Club:    "♣",
	Diamond: "♦",
	Heart:   "♥",
	Spade:   "♠",
}

// charToSuit 花色字母
var charToSuit = map[rune]Suit{
	'C': Club,
	'D': Diamond,
	'H': Heart,
	'S': Spade,
}

func (s Suit) String() string {
	if symbol, ok := suitSymbols[s]; ok {
		return symbol
	}
	return "?"
}

// Valid 是否为合法花色
func (s Suit) Valid() bool {
	return s >= Club && s <= Spade
}

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// rankNames 牌面值字符串映射表
var rankNames = map[Rank]string{
	Ten:   "10",
	Jack:  "J",
	Queen: "Q",
	King:  "K",
	Ace:   "A",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return strconv.Itoa(int(r))
}

// Valid 是否为合法点数
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// charToRank 用于快速查找字符对应的 Rank
var charToRank = map[rune]Rank{
	'2': Two,
	'3': Three,
	'4': Four,
	'5': Five,
	'6': Six,
	'7': Seven,
	'8': Eight,
	'9': Nine,
	'T': Ten,
	'J': Jack,
	'Q': Queen,
	'K': King,
	'A': Ace,
}

// RankFromChar 解析单个点数字符
func RankFromChar(char rune) (Rank, error) {
	if rank, ok := charToRank[char]; ok {
		return rank, nil
	}
	return -1, fmt.Errorf("无法识别的点数: %c", char)
}

// Well-known cards
var (
	TwoOfClubs    = Card{Suit: Club, Rank: Two}
	QueenOfSpades = Card{Suit: Spade, Rank: Queen}
)

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Valid 是否为 52 张牌之一
func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank.Valid()
}

// Parse 解析 "QS"、"10H"、"TH" 形式的牌
func Parse(s string) (Card, error) {
	s = strings.ToUpper(strings.ReplaceAll(s, "10", "T"))
	runes := []rune(s)
	if len(runes) != 2 {
		return Card{}, fmt.Errorf("无法识别的牌: %q", s)
	}
	rank, err := RankFromChar(runes[0])
	if err != nil {
		return Card{}, err
	}
	suit, ok := charToSuit[runes[1]]
	if !ok {
		return Card{}, fmt.Errorf("无法识别的花色: %c", runes[1])
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// MustParse 解析一组牌，失败时 panic
func MustParse(codes ...string) []Card {
	cards := make([]Card, len(codes))
	for i, code := range codes {
		c, err := Parse(code)
		if err != nil {
			panic(err)
		}
		cards[i] = c
	}
	return cards
}

// Deck 定义一副牌
type Deck []Card

// NewDeck 按花色、点数顺序返回 52 张牌
func NewDeck() Deck {
	deck := make(Deck, 0, 52)
	for _, s := range Suits {
		for r := Two; r <= Ace; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle 均匀洗牌；r 为 nil 时使用全局随机源
func (d Deck) Shuffle(r *rand.Rand) {
	swap := func(i, j int) { d[i], d[j] = d[j], d[i] }
	if r == nil {
		rand.Shuffle(len(d), swap)
		return
	}
	r.Shuffle(len(d), swap)
}

// Deal 将整副牌按连续区间平分为 n 手
func (d Deck) Deal(n int) []*Hand {
	size := len(d) / n
	hands := make([]*Hand, n)
	for i := range n {
		hands[i] = NewHand(d[i*size : (i+1)*size]...)
	}
	return hands
}
