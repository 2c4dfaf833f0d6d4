package config

// Redis backs the session store, the distributed rate limiter and the
// response cache.  When it cannot be reached the server falls back to
// in-process equivalents.

import (
    "context"
    "crypto/tls"
    "fmt"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisOptions builds client options from the environment:
//   REDIS_ADDR – host:port shorthand
//   REDIS_HOST and REDIS_PORT – override REDIS_ADDR when both are set
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
func RedisOptions() *redis.Options {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    dbNum := 0
    if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
        if n, err := strconv.Atoi(dbStr); err == nil {
            dbNum = n
        }
    }
    var tlsConf *tls.Config
    if tlsEnv := os.Getenv("REDIS_TLS"); strings.EqualFold(tlsEnv, "true") || tlsEnv == "1" {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }
    return &redis.Options{
        Addr:      addr,
        Password:  os.Getenv("REDIS_PASSWORD"),
        DB:        dbNum,
        TLSConfig: tlsConf,
    }
}

// NewRedisClient connects with RedisOptions and pings the server with a
// short timeout.  REDIS_ENABLED=false skips the attempt.  A nil client is
// returned together with the reason when Redis is unusable.
func NewRedisClient() (*redis.Client, error) {
    if !envBool("REDIS_ENABLED", true) {
        return nil, fmt.Errorf("redis disabled by REDIS_ENABLED")
    }
    opts := RedisOptions()
    client := redis.NewClient(opts)
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
    }
    return client, nil
}
