// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

// This file contains examples that use atomix concurrency primitives.
// These trigger false positives with Go's race detector because atomix
// atomic operations appear as regular memory accesses to the detector.
// The examples are correct; they're excluded from race testing.

package pipe_test

import (
	"fmt"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/pipe"
)

// ExampleNewPipe demonstrates basic single-threaded use.
func ExampleNewPipe() {
	p := pipe.NewPipe[int](8)

	// Writer publishes at the head
	for _, v := range []int{10, 20, 30} {
		p.WriteFront(&v)
	}

	// Reader drains from the tail
	for {
		v, err := p.ReadBack()
		if err != nil {
			break
		}
		fmt.Println(v)
	}

	// Output:
	// 10
	// 20
	// 30
}

// ExampleNewPipe_steal demonstrates the writer reclaiming its most recent
// publication from the head.
func ExampleNewPipe_steal() {
	p := pipe.NewPipe[int](8)

	for _, v := range []int{10, 20, 30} {
		p.WriteFront(&v)
	}

	// The head steal pops newest-first
	stolen, _ := p.ReadFront()
	fmt.Println("stolen:", stolen)

	// The tail still delivers oldest-first
	for {
		v, err := p.ReadBack()
		if err != nil {
			break
		}
		fmt.Println(v)
	}

	// Output:
	// stolen: 30
	// 10
	// 20
}

// ExampleNewPipe_workers demonstrates the work-distribution pattern: one
// dispatcher, several workers, cooperative drain on shutdown.
func ExampleNewPipe_workers() {
	p := pipe.NewPipe[int](128)

	var done atomix.Bool
	var processed atomix.Int32
	var wg sync.WaitGroup

	// Workers
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backoff := iox.Backoff{}
			for {
				_, err := p.ReadBack()
				if err == nil {
					processed.Add(1)
					backoff.Reset()
					continue
				}
				if done.Load() {
					// Final drain after the dispatcher stopped
					if _, err := p.ReadBack(); err == nil {
						processed.Add(1)
						continue
					}
					return
				}
				backoff.Wait()
			}
		}()
	}

	// Dispatcher
	backoff := iox.Backoff{}
	for i := 0; i < 100; {
		v := i
		if p.WriteFront(&v) == nil {
			i++
			backoff.Reset()
			continue
		}
		backoff.Wait()
	}
	done.Store(true)

	wg.Wait()
	fmt.Println("processed", processed.Load(), "tasks")

	// Output:
	// processed 100 tasks
}
