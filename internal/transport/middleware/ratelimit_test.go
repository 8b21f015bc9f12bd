package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

// memRedis answers the handful of commands the limiter sends, in process.
type memRedis struct {
	mu         sync.Mutex
	counters   map[string]int64
	strings    map[string]string
	ttls       map[string]time.Duration
	failExpire int
}

func newMemRedis() *memRedis {
	return &memRedis{counters: map[string]int64{}, strings: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memRedis) client() *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	rdb.AddHook(m)
	return rdb
}

func (m *memRedis) ttl(key string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.ttls[key]
	return d, ok
}

func (m *memRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (m *memRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error { return m.exec(cmd) }
}

func (m *memRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			if err := m.exec(cmd); err != nil {
				return err
			}
		}
		return nil
	}
}

func (m *memRedis) exec(cmd redis.Cmder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprint(cmd.Args()[1])
	switch cmd.Name() {
	case "incr":
		m.counters[key]++
		cmd.(*redis.IntCmd).SetVal(m.counters[key])
	case "ttl":
		d, ok := m.ttls[key]
		if !ok {
			d = -1
		}
		cmd.(*redis.DurationCmd).SetVal(d)
	case "expire":
		if m.failExpire > 0 {
			m.failExpire--
			err := errors.New("READONLY You can't write against a read only replica")
			cmd.SetErr(err)
			return err
		}
		m.ttls[key] = time.Duration(cmd.Args()[2].(int64)) * time.Second
		cmd.(*redis.BoolCmd).SetVal(true)
	case "get":
		v, ok := m.strings[key]
		if !ok {
			cmd.SetErr(redis.Nil)
			return redis.Nil
		}
		cmd.(*redis.StringCmd).SetVal(v)
	case "set":
		m.strings[key] = fmt.Sprint(cmd.Args()[2])
		cmd.(*redis.StatusCmd).SetVal("OK")
	default:
		err := fmt.Errorf("unexpected command %s", cmd.Name())
		cmd.SetErr(err)
		return err
	}
	return nil
}

var _ = Describe("RateLimiter window", func() {
	var (
		store   *memRedis
		rdb     *redis.Client
		limited http.Handler
	)

	login := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
		req.RemoteAddr = "192.0.2.7:40000"
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	BeforeEach(func() {
		store = newMemRedis()
		rdb = store.client()
		limited = RateLimiter(rdb, 2, time.Minute, 5*time.Minute, "login", quietLogger())(okHandler)
	})

	AfterEach(func() {
		_ = rdb.Close()
	})

	It("starts the window on the first attempt", func() {
		Expect(login()).To(Equal(http.StatusOK))
		ttl, ok := store.ttl("login:ip:192.0.2.7")
		Expect(ok).To(BeTrue())
		Expect(ttl).To(Equal(time.Minute))
	})

	It("blocks once the limit is passed", func() {
		Expect(login()).To(Equal(http.StatusOK))
		Expect(login()).To(Equal(http.StatusOK))
		Expect(login()).To(Equal(http.StatusTooManyRequests))
		Expect(store.strings).To(HaveKeyWithValue("login:ip:192.0.2.7:blocked", "1"))
	})

	It("gives the counter a TTL on a later attempt when the first EXPIRE fails", func() {
		store.failExpire = 1

		Expect(login()).To(Equal(http.StatusOK))
		_, ok := store.ttl("login:ip:192.0.2.7")
		Expect(ok).To(BeFalse())

		Expect(login()).To(Equal(http.StatusOK))
		ttl, ok := store.ttl("login:ip:192.0.2.7")
		Expect(ok).To(BeTrue())
		Expect(ttl).To(Equal(time.Minute))
	})
})
