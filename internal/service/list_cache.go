package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	pkgerrors "gesrh/backend/pkg/errors"
)

// 列表缓存的实体类别
const (
	cacheKindEmployees = "employees"
	cacheKindJobs      = "jobs"
	cacheKindSkills    = "skills"
)

const listCachePrefix = "gesrh:list:"

// listCache 列表查询缓存：键 = 类别 + 规范化后的搜索词
//
// ═══════════════════════════════════════════════════════════
//
// 设计说明：
//   - 缓存的是服务端搜索后的全集，分类过滤与分页在内存中完成
//   - 任何写操作成功后同步清理相关类别，读写之间不存在过期窗口
//   - 缓存读写失败只记日志，不影响主流程
type listCache struct {
	cache  JSONCache
	ttl    time.Duration
	logger *zap.Logger
}

func newListCache(cache JSONCache, ttl time.Duration, logger *zap.Logger) *listCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &listCache{cache: cache, ttl: ttl, logger: logger}
}

// key 与仓储层 ILIKE 保持一致：只忽略大小写与首尾空白，不折叠重音
func (c *listCache) key(kind, search string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(search))))
	return listCachePrefix + kind + ":" + hex.EncodeToString(sum[:8])
}

// invalidate 清理一个或多个类别的全部缓存
func (c *listCache) invalidate(ctx context.Context, kinds ...string) {
	if c == nil || c.cache == nil {
		return
	}
	for _, kind := range kinds {
		if err := c.cache.DeleteByPattern(ctx, listCachePrefix+kind+":*"); err != nil {
			c.logger.Warn("清理列表缓存失败", zap.String("kind", kind), zap.Error(err))
		}
	}
}

// cachedList 先查缓存，未命中时调用 load 并回写
func cachedList[T any](ctx context.Context, c *listCache, kind, search string, load func() ([]T, error)) ([]T, error) {
	if c == nil || c.cache == nil {
		return load()
	}

	key := c.key(kind, search)
	var items []T
	err := c.cache.GetJSON(ctx, key, &items)
	if err == nil {
		return items, nil
	}
	if !errors.Is(err, pkgerrors.ErrCacheMiss) {
		c.logger.Warn("读取列表缓存失败", zap.String("key", key), zap.Error(err))
	}

	items, err = load()
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetJSON(ctx, key, items, c.ttl); err != nil {
		c.logger.Warn("写入列表缓存失败", zap.String("key", key), zap.Error(err))
	}
	return items, nil
}
