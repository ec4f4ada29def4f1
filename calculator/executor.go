package calculator

import (
	"time"

	"github.com/exascience/pargo/parallel"
)

// executor 把内部节点的行 [first, last) 分配给 f, 返回被截断的节点数和耗时
type executor interface {
	dispatchTask(first, last int, f func(low, high int) int) (int, time.Duration)
}

func newExecutor(workers int) executor {
	if workers <= 1 {
		return serialExecutor{}
	}
	return &executorBaseOnRows{workers: workers}
}

// 单线程，参考实现的行为
type serialExecutor struct{}

func (serialExecutor) dispatchTask(first, last int, f func(low, high int) int) (int, time.Duration) {
	start := time.Now()
	if last <= first {
		return 0, time.Since(start)
	}
	return f(first, last), time.Since(start)
}

// 基于行块的任务分配。每个行块只读上一步的温度场、只写自己的行，
// 所以结果与串行计算逐位相同
type executorBaseOnRows struct {
	workers int
}

func (e *executorBaseOnRows) dispatchTask(first, last int, f func(low, high int) int) (int, time.Duration) {
	start := time.Now()
	if last <= first {
		return 0, time.Since(start)
	}
	n := parallel.RangeReduceInt(first, last, e.workers, f, func(x, y int) int {
		return x + y
	})
	return n, time.Since(start)
}
