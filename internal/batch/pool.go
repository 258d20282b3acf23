// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package batch runs captures over a fixed set of workers.
package batch

import (
	"context"
	"sync"
)

// WorkerPool runs submitted work on a fixed number of goroutines.
type WorkerPool struct {
	workQueue chan func()
	wg        sync.WaitGroup
	ctx       context.Context
	closeOnce sync.Once
}

// NewWorkerPool starts maxWorkers workers fed by a queue of queueSize.
// Workers exit when ctx is done or the pool is closed.
func NewWorkerPool(ctx context.Context, maxWorkers, queueSize int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	wp := &WorkerPool{
		workQueue: make(chan func(), queueSize),
		ctx:       ctx,
	}
	for i := 0; i < maxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for {
		select {
		case work, ok := <-wp.workQueue:
			if !ok {
				return
			}
			work()
		case <-wp.ctx.Done():
			return
		}
	}
}

// Submit queues work, blocking while the queue is full. It returns the
// context error once the pool's context is done.
func (wp *WorkerPool) Submit(work func()) error {
	if err := wp.ctx.Err(); err != nil {
		return err
	}
	select {
	case wp.workQueue <- work:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// Close stops accepting work and waits for running work to finish.
// Queued work is dropped if the context is already done.
func (wp *WorkerPool) Close() {
	wp.closeOnce.Do(func() { close(wp.workQueue) })
	wp.wg.Wait()
}
