package activity

import (
	"context"

	"go.uber.org/zap"

	"github.com/biblioteka/backend/pkg/eventbus"
	"github.com/biblioteka/backend/pkg/metrics"
)

// Recorder 活动记录器
//
// 设计说明（fire-and-forget语义）：
// 1. 活动日志是业务操作的副产品，写入失败绝不能让主操作失败
// 2. 失败时记录warn日志并递增失败计数器，保证问题可观测
// 3. publisher可选：配置了消息队列时同步发布一份事件供下游订阅
type Recorder struct {
	repo      Repository
	publisher *eventbus.Publisher // 可为nil
	log       *zap.Logger
}

// NewRecorder 创建活动记录器
// publisher传nil时只写数据库
func NewRecorder(repo Repository, publisher *eventbus.Publisher, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Record 记录一条活动
// 任何失败都被吞掉（记日志+计数），调用方无需检查错误
func (r *Recorder) Record(ctx context.Context, t Type, userID *uint, payload map[string]interface{}) {
	a := New(t, userID, payload)

	if err := r.repo.Create(ctx, a); err != nil {
		metrics.IncCounter(metrics.ActivityWriteFailuresTotal)
		r.log.Warn("写入活动日志失败",
			zap.String("type", string(t)),
			zap.Error(err))
		return
	}

	if r.publisher != nil {
		routingKey := "activity." + string(t)
		if err := r.publisher.PublishJSON(ctx, routingKey, a); err != nil {
			r.log.Warn("发布活动事件失败",
				zap.String("routing_key", routingKey),
				zap.Error(err))
		}
	}
}
