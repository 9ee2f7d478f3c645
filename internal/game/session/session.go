package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/palemoky/hearts/internal/apperrors"
	"github.com/palemoky/hearts/internal/game/card"
	"github.com/palemoky/hearts/internal/logger"
	"github.com/palemoky/hearts/internal/types"
)

// statsTimeout 单次战绩写入的超时
const statsTimeout = 5 * time.Second

// StatsRecorder 战绩存储
type StatsRecorder interface {
	IncrementWins(ctx context.Context, userID string) error
	IncrementLosses(ctx context.Context, userID string) error
}

// Options 会话依赖
type Options struct {
	Settings Settings
	Clock    quartz.Clock
	Stats    StatsRecorder
	Logger   *log.Logger
	Rand     *rand.Rand
	OnClose  func(id string) // 会话结束后在工作协程中调用
}

type request struct {
	apply func(*Game) ([]Effect, error)
	reply chan error
}

// Session 房间会话：一个工作协程串行处理该房间的全部操作
type Session struct {
	id      string
	name    string
	game    *Game
	clock   quartz.Clock
	stats   StatsRecorder
	log     *log.Logger
	onClose func(string)

	inbox    chan request
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	info     atomic.Pointer[Info]

	// 只在工作协程中访问
	timers timers

	statsWG sync.WaitGroup
}

// New 创建会话并启动工作协程
func New(id, name string, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Component("session")
	}
	if opts.Settings == (Settings{}) {
		opts.Settings = DefaultSettings()
	}

	s := &Session{
		id:      id,
		name:    name,
		game:    NewGame(id, name, opts.Settings, opts.Rand),
		clock:   opts.Clock,
		stats:   opts.Stats,
		log:     opts.Logger.With("room", id),
		onClose: opts.OnClose,
		inbox:   make(chan request),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		timers:  newTimers(),
	}
	info := s.game.Info()
	s.info.Store(&info)

	go s.run()
	return s
}

// ID 房间 ID
func (s *Session) ID() string { return s.id }

// Name 房间名
func (s *Session) Name() string { return s.name }

// Info 最近一次操作后的快照，可并发读取
func (s *Session) Info() Info {
	return *s.info.Load()
}

// Done 会话结束时关闭
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Join 入座
func (s *Session) Join(ctx context.Context, client types.ClientInterface) error {
	return s.submit(ctx, func(g *Game) ([]Effect, error) {
		return g.Join(client)
	})
}

// Leave 离座
func (s *Session) Leave(ctx context.Context, userID string) error {
	return s.submit(ctx, func(g *Game) ([]Effect, error) {
		return g.Leave(userID)
	})
}

// SubmitPass 换牌
func (s *Session) SubmitPass(ctx context.Context, userID string, cards []card.Card) error {
	return s.submit(ctx, func(g *Game) ([]Effect, error) {
		return g.SubmitPass(userID, cards)
	})
}

// PlayCard 出牌
func (s *Session) PlayCard(ctx context.Context, userID string, c card.Card) error {
	return s.submit(ctx, func(g *Game) ([]Effect, error) {
		return g.PlayCard(userID, c)
	})
}

// Stop 停止会话并等待工作协程退出
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	<-s.done
}

// WaitStats 等待进行中的战绩写入完成
func (s *Session) WaitStats() {
	s.statsWG.Wait()
}

// submit 把操作投递给工作协程并等待结果
func (s *Session) submit(ctx context.Context, apply func(*Game) ([]Effect, error)) error {
	req := request{apply: apply, reply: make(chan error, 1)}
	select {
	case s.inbox <- req:
	case <-s.done:
		return apperrors.ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) run() {
	defer func() {
		s.timers.stopAll()
		close(s.done)
		if s.onClose != nil {
			s.onClose(s.id)
		}
		s.log.Info("🏁 房间会话结束")
	}()

	for {
		select {
		case req := <-s.inbox:
			req.reply <- s.handle(req.apply)
			if s.game.Closed() {
				return
			}
		case <-s.quit:
			return
		}
	}
}

// handle 执行一次操作；效果在回复之前执行完毕，调用方返回时计时器已就位
func (s *Session) handle(apply func(*Game) ([]Effect, error)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			err = fmt.Errorf("session %s: %v", s.id, r)
		}
		info := s.game.Info()
		s.info.Store(&info)
	}()

	effects, err := apply(s.game)
	s.execute(effects)
	return err
}

func (s *Session) execute(effects []Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case Deliver:
			for _, c := range e.To {
				c.SendMessage(e.Msg)
			}
		case RecordWin:
			s.log.Info("🏆 对局结束", "winner", e.UserID)
			s.record(e.UserID, true)
		case RecordLoss:
			s.log.Info("⏰ 出牌超时判负", "player", e.UserID)
			s.record(e.UserID, false)
		case ArmTurnTimer:
			s.timers.armPhase(s.clock, s.game.settings.TurnTimeout, func() {
				s.fire(func(g *Game) []Effect { return g.TurnTimeout(e.Seq) })
			}, "turn")
		case ArmPassTimer:
			s.timers.armPhase(s.clock, s.game.settings.PassTimeout, func() {
				s.fire(func(g *Game) []Effect { return g.PassTimeout(e.Seq) })
			}, "pass")
		case StopTimers:
			s.timers.stopPhase()
		case ArmGraceTimer:
			s.log.Info("📴 玩家离开，进入宽限期", "player", e.UserID)
			s.timers.armGrace(s.clock, s.game.settings.GracePeriod, e.UserID, func() {
				s.fire(func(g *Game) []Effect { return g.GraceExpired(e.UserID) })
			})
		case CloseAll:
			for _, c := range e.Clients {
				c.Close()
			}
		}
	}
}

// fire 计时器回调，与玩家操作走同一个队列
func (s *Session) fire(apply func(*Game) []Effect) {
	_ = s.submit(context.Background(), func(g *Game) ([]Effect, error) {
		return apply(g), nil
	})
}

// record 异步写战绩，失败只记录日志
func (s *Session) record(userID string, win bool) {
	if s.stats == nil {
		return
	}
	inc := s.stats.IncrementLosses
	if win {
		inc = s.stats.IncrementWins
	}
	s.statsWG.Add(1)
	go func() {
		defer s.statsWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
		defer cancel()
		if err := inc(ctx, userID); err != nil {
			s.log.Error("❌ 战绩写入失败", "player", userID, "err", fmt.Errorf("%w: %w", apperrors.ErrStatsUnavailable, err))
		}
	}()
}
