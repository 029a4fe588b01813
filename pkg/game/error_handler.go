package game

import (
	"fmt"
	"log"
	"sync"
)

// ErrorContext 描述错误发生的位置
type ErrorContext struct {
	Operation string // 出错的操作（如 "createBubblePopParticles"）
	Component string // 出错的组件（如 "ParticleLifecycleManager"）
}

func (c ErrorContext) String() string {
	return fmt.Sprintf("%s.%s", c.Component, c.Operation)
}

// ErrorHandler 错误上报接口
//
// 粒子系统内部的错误不会中断游戏循环，而是通过此接口上报，
// 由调用方决定如何记录或展示。
type ErrorHandler interface {
	HandleError(err error, ctx ErrorContext)
}

// ErrorHandlerFunc 允许普通函数作为 ErrorHandler 使用
type ErrorHandlerFunc func(err error, ctx ErrorContext)

// HandleError 调用 f(err, ctx)
func (f ErrorHandlerFunc) HandleError(err error, ctx ErrorContext) {
	f(err, ctx)
}

// LogErrorHandler 将错误写入标准日志
type LogErrorHandler struct{}

// HandleError 记录错误日志
func (LogErrorHandler) HandleError(err error, ctx ErrorContext) {
	log.Printf("[%s] Error in %s: %v", ctx.Component, ctx.Operation, err)
}

// ReportedError 一条已上报的错误
type ReportedError struct {
	Err     error
	Context ErrorContext
}

// ErrorCollector 收集上报的错误，供调试面板展示
// 超过容量后丢弃最早的记录
type ErrorCollector struct {
	mu       sync.Mutex
	errors   []ReportedError
	capacity int
	next     ErrorHandler // 可选：继续转发给下一个处理器
}

// NewErrorCollector 创建错误收集器
//
// 参数：
//   - capacity: 保留的最大错误数（<=0 时使用 50）
//   - next: 转发目标，可为 nil
func NewErrorCollector(capacity int, next ErrorHandler) *ErrorCollector {
	if capacity <= 0 {
		capacity = 50
	}
	return &ErrorCollector{capacity: capacity, next: next}
}

// HandleError 记录错误并转发
func (c *ErrorCollector) HandleError(err error, ctx ErrorContext) {
	c.mu.Lock()
	if len(c.errors) >= c.capacity {
		copy(c.errors, c.errors[1:])
		c.errors = c.errors[:len(c.errors)-1]
	}
	c.errors = append(c.errors, ReportedError{Err: err, Context: ctx})
	c.mu.Unlock()

	if c.next != nil {
		c.next.HandleError(err, ctx)
	}
}

// Errors 返回已收集错误的副本（按时间顺序）
func (c *ErrorCollector) Errors() []ReportedError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ReportedError, len(c.errors))
	copy(out, c.errors)
	return out
}

// Len 已收集的错误数
func (c *ErrorCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors)
}

// Clear 清空记录
func (c *ErrorCollector) Clear() {
	c.mu.Lock()
	c.errors = c.errors[:0]
	c.mu.Unlock()
}
