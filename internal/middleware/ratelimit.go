package middleware

import (
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "golang.org/x/time/rate"

    "github.com/iliyamo/coin-rewards/internal/config"
)

// limiterScript refills and takes one token atomically.  It returns
// {allowed, remaining, retry_after_ms}.
var limiterScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])

    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        local until_next = interval_ms - (now_ms - last_refill)
        if until_next < 0 then until_next = 0 end
        retry_after_ms = until_next
    end

    redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, tokens, retry_after_ms }
`)

// bucketResult is one limiter decision.
type bucketResult struct {
    allowed   bool
    remaining int64
    retryMs   int64
}

type takeFunc func(c echo.Context, key string) (bucketResult, error)

// NewTokenBucket limits requests per key (see KeyStrategy).  Buckets live in
// Redis when rdb is set so every replica shares them; with a nil client each
// process keeps its own golang.org/x/time/rate limiters.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    take := redisTake(cfg, rdb)
    if rdb == nil {
        take = localTake(cfg)
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            res, err := take(c, key)
            if err != nil {
                if cfg.Debug {
                    c.Logger().Warnf("[ratelimit] limiter error for key=%s: %v", key, err)
                }
                return next(c)
            }

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))

            if !res.allowed {
                secs := int(math.Ceil(float64(res.retryMs) / 1000.0))
                if secs < 0 { secs = 0 }
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                if cfg.Debug {
                    c.Logger().Infof("[ratelimit] block key=%s retry=%dms", key, res.retryMs)
                }
                return c.JSON(http.StatusTooManyRequests, map[string]any{
                    "error":       "too_many_requests",
                    "message":     "rate limit exceeded",
                    "retry_after": secs,
                })
            }

            if cfg.Debug {
                c.Response().Header().Set("X-RateLimit-Key", key)
            }
            return next(c)
        }
    }
}

func redisTake(cfg config.RateLimitConfig, rdb *redis.Client) takeFunc {
    return func(c echo.Context, key string) (bucketResult, error) {
        args := []interface{}{
            time.Now().UnixMilli(),
            cfg.Capacity,
            cfg.RefillTokens,
            cfg.RefillInterval.Milliseconds(),
            int64(cfg.TTL / time.Second),
        }
        vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
        if err != nil {
            return bucketResult{}, err
        }
        arr, ok := vals.([]interface{})
        if !ok || len(arr) != 3 {
            return bucketResult{}, fmt.Errorf("unexpected script result %#v", vals)
        }
        return bucketResult{
            allowed:   asInt64(arr[0]) == 1,
            remaining: asInt64(arr[1]),
            retryMs:   asInt64(arr[2]),
        }, nil
    }
}

// localTake keeps one rate.Limiter per key.  Idle limiters are not evicted;
// the key space is bounded by clients times routes.
func localTake(cfg config.RateLimitConfig) takeFunc {
    var mu sync.Mutex
    limiters := make(map[string]*rate.Limiter)
    return func(_ echo.Context, key string) (bucketResult, error) {
        mu.Lock()
        l, ok := limiters[key]
        if !ok {
            l = rate.NewLimiter(rate.Limit(cfg.PerSecond()), cfg.Capacity)
            limiters[key] = l
        }
        mu.Unlock()

        now := time.Now()
        r := l.ReserveN(now, 1)
        if !r.OK() {
            return bucketResult{}, fmt.Errorf("burst %d too small", cfg.Capacity)
        }
        if d := r.DelayFrom(now); d > 0 {
            r.CancelAt(now)
            return bucketResult{retryMs: d.Milliseconds()}, nil
        }
        return bucketResult{allowed: true, remaining: int64(l.TokensAt(now))}, nil
    }
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64: return t
    case int32: return int64(t)
    case int: return int64(t)
    case float64: return int64(t)
    case float32: return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil { return n }
    }
    return 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    parts := []string{cfg.Prefix}
    ip := c.RealIP()
    if ip == "" { ip = "unknown" }
    uid := UserID(c)
    if uid == "" { uid = "anon" }
    route := c.Request().Method + " " + c.Path()

    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "route":
        parts = append(parts, "route", route)
    case "ip_user":
        parts = append(parts, "ip", ip, "user", uid)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
