package session

import (
	"errors"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/palemoky/hearts/internal/apperrors"
	"github.com/palemoky/hearts/internal/game/card"
	"github.com/palemoky/hearts/internal/game/rule"
	"github.com/palemoky/hearts/internal/protocol"
	"github.com/palemoky/hearts/internal/protocol/codec"
	"github.com/palemoky/hearts/internal/protocol/convert"
	"github.com/palemoky/hearts/internal/types"
)

// Players 开局所需人数
const Players = 4

// Phase 对局阶段
type Phase int

const (
	PhaseAwaitingDeal Phase = iota // 等待凑齐四人
	PhasePassing                   // 换牌
	PhaseAwaitingPlay              // 等待出牌
	PhaseGameComplete              // 已结束
)

var phaseNames = map[Phase]string{
	PhaseAwaitingDeal: "awaiting_deal",
	PhasePassing:      "passing",
	PhaseAwaitingPlay: "awaiting_play",
	PhaseGameComplete: "game_complete",
}

func (p Phase) String() string {
	return phaseNames[p]
}

// Settings 对局参数
type Settings struct {
	TurnTimeout    time.Duration
	PassTimeout    time.Duration
	GracePeriod    time.Duration
	ScoreThreshold int
}

// DefaultSettings 默认对局参数
func DefaultSettings() Settings {
	return Settings{
		TurnTimeout:    30 * time.Second,
		PassTimeout:    30 * time.Second,
		GracePeriod:    15 * time.Second,
		ScoreThreshold: 50,
	}
}

// Info 房间状态快照
type Info struct {
	ID         string
	Name       string
	Phase      Phase
	Seated     []string
	Roster     []string
	Active     bool
	Stable     bool
	GameNumber int
}

type play struct {
	seat int
	card card.Card
}

// Game 单个房间的对局状态机。
// 不是并发安全的，只能由所属 Session 的工作协程调用；
// 每个操作返回需要执行的 Effect 列表。
type Game struct {
	id       string
	name     string
	settings Settings
	rng      *rand.Rand

	phase        Phase
	seated       []string
	participants map[string]types.ClientInterface
	names        map[string]string

	roster     []string
	rosterSeat map[string]int
	active     bool
	stable     bool
	closed     bool

	gameNumber   int
	round        int
	plays        []play
	leadSuit     card.Suit
	heartsBroken bool
	scores       []int
	hands        []*card.Hand
	passes       map[int][]card.Card

	turn    int
	turnSeq uint64
	passSeq uint64
}

// NewGame 创建空房间的状态机，rng 为 nil 时使用全局随机源
func NewGame(id, name string, settings Settings, rng *rand.Rand) *Game {
	return &Game{
		id:           id,
		name:         name,
		settings:     settings,
		rng:          rng,
		phase:        PhaseAwaitingDeal,
		participants: make(map[string]types.ClientInterface),
		names:        make(map[string]string),
		rosterSeat:   make(map[string]int),
		passes:       make(map[int][]card.Card),
	}
}

// Closed 房间是否已结束（对局完成或无人在座）
func (g *Game) Closed() bool {
	return g.closed
}

// Info 返回当前快照
func (g *Game) Info() Info {
	return Info{
		ID:         g.id,
		Name:       g.name,
		Phase:      g.phase,
		Seated:     slices.Clone(g.seated),
		Roster:     slices.Clone(g.roster),
		Active:     g.active,
		Stable:     g.stable,
		GameNumber: g.gameNumber,
	}
}

// --- 成员 ---

// Join 玩家入座
func (g *Game) Join(client types.ClientInterface) ([]Effect, error) {
	id := client.GetID()
	if g.closed {
		return nil, apperrors.ErrRoomNotFound
	}
	if slices.Contains(g.seated, id) {
		return nil, apperrors.ErrAlreadyInRoom
	}

	_, onRoster := g.rosterSeat[id]
	if g.active && (g.stable || !onRoster) {
		return nil, apperrors.ErrRoomFull
	}
	if len(g.seated) >= Players {
		return nil, apperrors.ErrRoomFull
	}

	g.seated = append(g.seated, id)
	g.participants[id] = client
	g.names[id] = client.GetName()

	effects := []Effect{g.roomState()}
	if len(g.seated) < Players {
		if g.active {
			effects = append(effects, g.resume(id)...)
		}
		return effects, nil
	}

	g.stable = true
	if g.roster == nil {
		return append(effects, g.startGame()...), nil
	}
	// 名单已确认，回座不会重新发牌
	return append(effects, g.resume(id)...), nil
}

// Leave 玩家离座（主动离开或断线）
func (g *Game) Leave(id string) ([]Effect, error) {
	idx := slices.Index(g.seated, id)
	if idx < 0 {
		return nil, apperrors.ErrNotInRoom
	}
	g.seated = slices.Delete(g.seated, idx, idx+1)
	delete(g.participants, id)

	if len(g.seated) == 0 {
		g.closed = true
		return []Effect{StopTimers{}}, nil
	}

	var effects []Effect
	if g.active && !g.closed {
		g.stable = false
		effects = append(effects,
			g.broadcast(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
				PlayerID: id,
				Grace:    int(g.settings.GracePeriod.Seconds()),
			}),
			ArmGraceTimer{UserID: id},
		)
	}
	return append(effects, g.roomState()), nil
}

// GraceExpired 宽限期结束：只通知，不判负也不恢复
func (g *Game) GraceExpired(id string) []Effect {
	if g.closed || !g.active || g.stable || slices.Contains(g.seated, id) {
		return nil
	}
	return []Effect{g.broadcast(protocol.MsgGraceExpired, protocol.GraceExpiredPayload{PlayerID: id})}
}

// resume 把当前局面发给回座的名单成员
func (g *Game) resume(id string) []Effect {
	seat := g.rosterSeat[id]
	_, passed := g.passes[seat]
	effects := []Effect{
		g.sendTo(id, protocol.MsgDealCards, protocol.DealCardsPayload{
			Cards:   convert.CardsToInfos(g.hands[seat].Cards()),
			Passing: g.phase == PhasePassing && !passed,
		}),
		g.sendTo(id, protocol.MsgScores, protocol.ScoresPayload{Scores: g.scoreEntries()}),
	}
	if g.phase == PhaseAwaitingPlay {
		effects = append(effects, g.sendTo(id, protocol.MsgPlayTurn, g.turnPayload()))
	}
	return effects
}

func (g *Game) startGame() []Effect {
	g.active = true
	g.roster = slices.Clone(g.seated)
	g.scores = make([]int, Players)
	players := make([]protocol.PlayerInfo, Players)
	for seat, id := range g.roster {
		g.rosterSeat[id] = seat
		players[seat] = protocol.PlayerInfo{ID: id, Name: g.names[id], Seat: seat, Online: true}
	}
	effects := []Effect{g.broadcast(protocol.MsgGameStart, protocol.GameStartPayload{Roster: players})}
	return append(effects, g.startDeal()...)
}

// --- 发牌与换牌 ---

func (g *Game) startDeal() []Effect {
	g.gameNumber++
	deck := card.NewDeck()
	deck.Shuffle(g.rng)
	g.hands = deck.Deal(Players)
	g.round = 1
	g.plays = nil
	g.heartsBroken = false
	g.passes = make(map[int][]card.Card)

	dir := rule.PassDirectionFor(g.gameNumber)
	passing := dir != rule.PassHold
	effects := []Effect{g.broadcast(protocol.MsgGameNumber, protocol.GameNumberPayload{
		GameNumber: g.gameNumber,
		Direction:  dir.String(),
	})}
	for seat, id := range g.roster {
		effects = append(effects, g.sendTo(id, protocol.MsgDealCards, protocol.DealCardsPayload{
			Cards:   convert.CardsToInfos(g.hands[seat].Cards()),
			Passing: passing,
		}))
	}

	if !passing {
		return append(effects, g.beginPlay()...)
	}
	g.phase = PhasePassing
	g.passSeq++
	return append(effects, ArmPassTimer{Seq: g.passSeq})
}

// SubmitPass 提交换出的 3 张牌
func (g *Game) SubmitPass(id string, cards []card.Card) ([]Effect, error) {
	if g.phase != PhasePassing {
		return nil, apperrors.ErrNotPassing
	}
	seat, ok := g.rosterSeat[id]
	if !ok {
		return nil, apperrors.ErrNotInRoom
	}
	if _, done := g.passes[seat]; done {
		return nil, apperrors.ErrAlreadyPassed
	}
	if err := rule.CheckPass(cards, g.hands[seat]); err != nil {
		return nil, apperrors.ErrInvalidPass.WithReason(err.Error())
	}

	effects := []Effect{g.bufferPass(seat, cards)}
	if len(g.passes) == Players {
		effects = append(effects, g.resolvePasses()...)
	}
	return effects, nil
}

// PassTimeout 换牌超时：替未提交的玩家换出最大的 3 张
func (g *Game) PassTimeout(seq uint64) []Effect {
	if g.phase != PhasePassing || seq != g.passSeq {
		return nil
	}
	var effects []Effect
	for seat := range Players {
		if _, done := g.passes[seat]; !done {
			effects = append(effects, g.bufferPass(seat, rule.AutoPass(g.hands[seat])))
		}
	}
	return append(effects, g.resolvePasses()...)
}

func (g *Game) bufferPass(seat int, cards []card.Card) Effect {
	for _, c := range cards {
		g.hands[seat].Remove(c)
	}
	g.passes[seat] = slices.Clone(cards)
	return g.sendTo(g.roster[seat], protocol.MsgHandUpdate, g.handPayload(seat))
}

func (g *Game) resolvePasses() []Effect {
	var effects []Effect
	for seat := range Players {
		target := rule.PassTarget(seat, g.gameNumber, Players)
		passed := g.passes[seat]
		for _, c := range passed {
			g.hands[target].Add(c)
		}
		card.SortCards(passed)
		effects = append(effects, g.sendTo(g.roster[target], protocol.MsgCardsReceived, protocol.CardsReceivedPayload{
			FromID: g.roster[seat],
			Cards:  convert.CardsToInfos(passed),
		}))
	}
	g.passes = make(map[int][]card.Card)
	for seat, id := range g.roster {
		effects = append(effects, g.sendTo(id, protocol.MsgHandUpdate, g.handPayload(seat)))
	}
	return append(effects, g.beginPlay()...)
}

// --- 出牌 ---

func (g *Game) beginPlay() []Effect {
	g.phase = PhaseAwaitingPlay
	g.turn = g.seatHolding(card.TwoOfClubs)
	return g.announceTurn()
}

func (g *Game) announceTurn() []Effect {
	g.turnSeq++
	return []Effect{
		g.broadcast(protocol.MsgPlayTurn, g.turnPayload()),
		ArmTurnTimer{Seq: g.turnSeq},
	}
}

// rearm 当前出牌者操作失败，只给他重新计时
func (g *Game) rearm() []Effect {
	g.turnSeq++
	return []Effect{
		g.sendTo(g.roster[g.turn], protocol.MsgPlayTurn, g.turnPayload()),
		ArmTurnTimer{Seq: g.turnSeq},
	}
}

func (g *Game) trickState() rule.TrickState {
	return rule.TrickState{
		Round:        g.round,
		Leading:      len(g.plays) == 0,
		LeadSuit:     g.leadSuit,
		HeartsBroken: g.heartsBroken,
	}
}

// PlayCard 出牌。非当前出牌者直接拒绝且不影响计时；
// 当前出牌者的非法出牌不消耗回合，但会重新计时。
func (g *Game) PlayCard(id string, c card.Card) ([]Effect, error) {
	if g.phase != PhaseAwaitingPlay {
		return nil, apperrors.ErrGameNotStarted
	}
	seat, ok := g.rosterSeat[id]
	if !ok {
		return nil, apperrors.ErrNotInRoom
	}
	if seat != g.turn {
		return nil, apperrors.ErrOutOfTurn
	}

	hand := g.hands[seat]
	if !hand.Has(c) {
		return g.rearm(), apperrors.ErrCardNotInHand
	}
	if err := rule.CheckPlay(g.trickState(), c, hand); err != nil {
		reason := err.Error()
		var illegal *rule.IllegalPlayError
		if errors.As(err, &illegal) {
			reason = illegal.Reason
		}
		return g.rearm(), apperrors.ErrIllegalPlay.WithReason(reason)
	}
	return g.applyPlay(seat, c, false), nil
}

// TurnTimeout 出牌超时：判负一次并代打最小的合法牌
func (g *Game) TurnTimeout(seq uint64) []Effect {
	if g.phase != PhaseAwaitingPlay || seq != g.turnSeq {
		return nil
	}
	seat := g.turn
	id := g.roster[seat]
	effects := []Effect{
		g.broadcast(protocol.MsgForfeit, protocol.ForfeitPayload{PlayerID: id}),
		RecordLoss{UserID: id},
	}
	c, ok := rule.LowestLegal(g.trickState(), g.hands[seat])
	if !ok {
		return effects
	}
	return append(effects, g.applyPlay(seat, c, true)...)
}

func (g *Game) applyPlay(seat int, c card.Card, auto bool) []Effect {
	g.hands[seat].Remove(c)
	if len(g.plays) == 0 {
		g.leadSuit = c.Suit
	}
	if c.Suit == card.Heart {
		g.heartsBroken = true
	}
	g.plays = append(g.plays, play{seat: seat, card: c})

	id := g.roster[seat]
	effects := []Effect{
		g.broadcast(protocol.MsgCardPlayed, protocol.CardPlayedPayload{
			PlayerID: id,
			Card:     convert.CardToInfo(c),
			Auto:     auto,
		}),
		g.sendTo(id, protocol.MsgHandUpdate, g.handPayload(seat)),
	}

	if len(g.plays) < Players {
		g.turn = (g.turn + 1) % Players
		return append(effects, g.announceTurn()...)
	}
	return append(effects, g.resolveTrick()...)
}

func (g *Game) resolveTrick() []Effect {
	cards := make([]card.Card, len(g.plays))
	for i, p := range g.plays {
		cards[i] = p.card
	}
	winner := g.plays[rule.TrickWinner(cards, g.leadSuit)].seat
	points, _ := rule.TrickPoints(cards)
	g.scores[winner] += points

	effects := []Effect{
		g.broadcast(protocol.MsgTrickResult, protocol.TrickResultPayload{
			WinnerID:     g.roster[winner],
			Points:       points,
			Round:        g.round,
			HeartsBroken: g.heartsBroken,
		}),
		g.broadcast(protocol.MsgScores, protocol.ScoresPayload{Scores: g.scoreEntries()}),
	}

	g.plays = nil
	g.turn = winner
	if g.round == rule.TricksPerRound {
		return append(effects, g.finishRound()...)
	}
	g.round++
	return append(effects, g.announceTurn()...)
}

// finishRound 13 墩打完：有人达到分数线则结束，否则开下一局
func (g *Game) finishRound() []Effect {
	if !rule.ThresholdReached(g.scores, g.settings.ScoreThreshold) {
		return g.startDeal()
	}

	winner := g.roster[rule.LowestScore(g.scores)]
	g.phase = PhaseGameComplete
	g.closed = true
	return []Effect{
		StopTimers{},
		g.broadcast(protocol.MsgGameOver, protocol.GameOverPayload{
			WinnerID: winner,
			Scores:   g.scoreEntries(),
		}),
		RecordWin{UserID: winner},
		CloseAll{Clients: g.seatedClients()},
	}
}

// --- 辅助 ---

func (g *Game) seatHolding(c card.Card) int {
	for seat, h := range g.hands {
		if h.Has(c) {
			return seat
		}
	}
	return 0
}

func (g *Game) turnPayload() protocol.PlayTurnPayload {
	return protocol.PlayTurnPayload{
		PlayerID: g.roster[g.turn],
		Round:    g.round,
		Timeout:  int(g.settings.TurnTimeout.Seconds()),
	}
}

func (g *Game) handPayload(seat int) protocol.HandUpdatePayload {
	return protocol.HandUpdatePayload{Cards: convert.CardsToInfos(g.hands[seat].Cards())}
}

func (g *Game) scoreEntries() []protocol.ScoreEntry {
	entries := make([]protocol.ScoreEntry, len(g.roster))
	for seat, id := range g.roster {
		entries[seat] = protocol.ScoreEntry{PlayerID: id, Score: g.scores[seat]}
	}
	return entries
}

func (g *Game) roomState() Effect {
	players := make([]protocol.PlayerInfo, len(g.seated))
	for i, id := range g.seated {
		seat, ok := g.rosterSeat[id]
		if !ok {
			seat = i
		}
		players[i] = protocol.PlayerInfo{ID: id, Name: g.names[id], Seat: seat, Online: true}
	}
	return g.broadcast(protocol.MsgRoomState, protocol.RoomStatePayload{
		RoomID:   g.id,
		Name:     g.name,
		Count:    len(g.seated),
		Required: Players - len(g.seated),
		Players:  players,
		Roster:   slices.Clone(g.roster),
		Active:   g.active,
		Stable:   g.stable,
	})
}

func (g *Game) seatedClients() []types.ClientInterface {
	clients := make([]types.ClientInterface, 0, len(g.seated))
	for _, id := range g.seated {
		if c, ok := g.participants[id]; ok {
			clients = append(clients, c)
		}
	}
	return clients
}

func (g *Game) broadcast(t protocol.MessageType, payload any) Effect {
	return Deliver{To: g.seatedClients(), Msg: codec.MustNewMessage(t, payload)}
}

// sendTo 离线玩家的消息直接丢弃
func (g *Game) sendTo(id string, t protocol.MessageType, payload any) Effect {
	var to []types.ClientInterface
	if c, ok := g.participants[id]; ok {
		to = append(to, c)
	}
	return Deliver{To: to, Msg: codec.MustNewMessage(t, payload)}
}
