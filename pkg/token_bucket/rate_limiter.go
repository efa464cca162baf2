package token_bucket

import (
	"math"
	"sync"
	"time"
)

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock подменяет источник времени, нужен тестам.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// TokenBucket bucket с дробным пополнением: refillRate токенов в секунду, не больше capacity.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64
	lastRefill time.Time
	now        func() time.Time
}

func NewTokenBucket(capacity int, refillRate float64, opts ...Option) *TokenBucket {
	o := newOptions(opts)
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: o.now(),
		now:        o.now,
	}
}

func (t *TokenBucket) Allow() bool {
	ok, _ := t.Reserve()
	return ok
}

// Reserve забирает токен. Если токена нет, возвращает время до появления следующего;
// при нулевой скорости пополнения ожидание не ограничено и возвращается 0.
func (t *TokenBucket) Reserve() (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.refill()

	if t.tokens >= 1 {
		t.tokens--
		return true, 0
	}
	if t.refillRate <= 0 || t.capacity < 1 {
		return false, 0
	}

	missing := 1 - t.tokens
	wait := time.Duration(math.Ceil(missing / t.refillRate * float64(time.Second)))
	return false, wait
}

func (t *TokenBucket) refill() {
	now := t.now()
	elapsed := now.Sub(t.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	t.tokens = math.Min(t.capacity, t.tokens+elapsed*t.refillRate)
	t.lastRefill = now
}

type keyedBucket struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// Keyed отдельный bucket на ключ (адрес клиента), чтобы один шумный клиент
// не отнимал лимит у остальных. Bucket без запросов дольше idleTTL удаляется.
type Keyed struct {
	mu         sync.Mutex
	capacity   int
	refillRate float64
	idleTTL    time.Duration
	buckets    map[string]*keyedBucket
	lastSweep  time.Time
	opts       []Option
	now        func() time.Time
}

func NewKeyed(capacity int, refillRate float64, idleTTL time.Duration, opts ...Option) *Keyed {
	o := newOptions(opts)
	return &Keyed{
		capacity:   capacity,
		refillRate: refillRate,
		idleTTL:    idleTTL,
		buckets:    make(map[string]*keyedBucket),
		lastSweep:  o.now(),
		opts:       opts,
		now:        o.now,
	}
}

func (k *Keyed) Allow(key string) (bool, time.Duration) {
	return k.bucket(key).Reserve()
}

// Len число живых bucket'ов.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.buckets)
}

func (k *Keyed) bucket(key string) *TokenBucket {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if k.idleTTL > 0 && now.Sub(k.lastSweep) >= k.idleTTL {
		for existing, entry := range k.buckets {
			if now.Sub(entry.lastSeen) >= k.idleTTL {
				delete(k.buckets, existing)
			}
		}
		k.lastSweep = now
	}

	entry, ok := k.buckets[key]
	if !ok {
		entry = &keyedBucket{bucket: NewTokenBucket(k.capacity, k.refillRate, k.opts...)}
		k.buckets[key] = entry
	}
	entry.lastSeen = now
	return entry.bucket
}
