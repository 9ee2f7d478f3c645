package room

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/palemoky/hearts/internal/game/session"
)

// snapshotWriter 单协程写房间快照。每个房间只保留最新一次待写操作，
// 保存时才读取会话快照，删除会覆盖尚未写出的保存
type snapshotWriter struct {
	store Store
	clock quartz.Clock
	log   *log.Logger

	mu      sync.Mutex
	pending map[string]*session.Session // nil 表示删除

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func newSnapshotWriter(store Store, clock quartz.Clock, l *log.Logger) *snapshotWriter {
	w := &snapshotWriter{
		store:   store,
		clock:   clock,
		log:     l,
		pending: make(map[string]*session.Session),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *snapshotWriter) save(s *session.Session) {
	w.enqueue(s.ID(), s)
}

func (w *snapshotWriter) remove(id string) {
	w.enqueue(id, nil)
}

func (w *snapshotWriter) enqueue(id string, s *session.Session) {
	w.mu.Lock()
	w.pending[id] = s
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *snapshotWriter) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.flush()
		case <-w.quit:
			w.flush()
			return
		}
	}
}

func (w *snapshotWriter) flush() {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]*session.Session)
	w.mu.Unlock()

	for id, s := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		if s == nil {
			if err := w.store.DeleteRoom(ctx, id); err != nil {
				w.log.Warn("⚠️ 删除房间快照失败", "room", id, "err", err)
			}
		} else if err := w.store.SaveRoom(ctx, id, toRoomData(s.Info(), w.clock.Now())); err != nil {
			w.log.Warn("⚠️ 保存房间快照失败", "room", id, "err", err)
		}
		cancel()
	}
}

// close 写出剩余操作后退出
func (w *snapshotWriter) close() {
	w.once.Do(func() { close(w.quit) })
	<-w.done
}
