package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"gesrh/backend/pkg/response"
)

const rateLimitPrefix = "gesrh:rate_limit"

// NewRateLimitStore Redis 可用时使用共享存储，否则（或创建失败时）退回进程内存储
func NewRateLimitStore(rdb *goredis.Client, logger *zap.Logger) limiter.Store {
	if rdb == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix})
	}
	store, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: rateLimitPrefix})
	if err != nil {
		logger.Warn("限流 Redis 存储创建失败，退回内存存储", zap.Error(err))
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix})
	}
	return store
}

// RateLimit 固定窗口限流中间件，按 客户端 IP + 路由 计数
// limit: 窗口内允许的最大请求数
// window: 窗口时长
// 存储出错时降级放行
func RateLimit(store limiter.Store, limit int64, window time.Duration) gin.HandlerFunc {
	if store == nil || limit <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	lim := limiter.New(store, limiter.Rate{Period: window, Limit: limit})

	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.FullPath()
		res, err := lim.Get(c.Request.Context(), key)
		if err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))

		if res.Reached {
			response.Error(c, http.StatusTooManyRequests, response.CodeRateLimited, "Trop de requêtes, veuillez réessayer plus tard")
			c.Abort()
			return
		}

		c.Next()
	}
}
