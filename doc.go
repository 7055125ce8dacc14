// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pipe provides a bounded lock-free work-stealing pipe.
//
// The pipe transports small fixed-size items from exactly one writer
// goroutine to any number of reader goroutines without kernel-mediated
// synchronization:
//
//   - The writer publishes at the head with WriteFront.
//   - Readers pop from the tail with ReadBack, concurrently with each
//     other and with the writer.
//   - The writer may steal back its most recently published, still
//     unclaimed item from the head with ReadFront.
//
// The head steal is what distinguishes this from a plain SPMC queue: a
// scheduler can reclaim pending work on shutdown, or run its own freshest
// task first instead of handing it to a worker.
//
// # Quick Start
//
//	p := pipe.NewPipe[Task](512)
//
//	// Writer (dispatcher)
//	go func() {
//	    backoff := iox.Backoff{}
//	    for task := range tasks {
//	        for p.WriteFront(&task) != nil {
//	            backoff.Wait()
//	        }
//	        backoff.Reset()
//	    }
//	}()
//
//	// Readers (workers)
//	for range numWorkers {
//	    go func() {
//	        backoff := iox.Backoff{}
//	        for {
//	            task, err := p.ReadBack()
//	            if err != nil {
//	                backoff.Wait()
//	                continue
//	            }
//	            backoff.Reset()
//	            task.Execute()
//	        }
//	    }()
//	}
//
// # Work Stealing
//
// The writer owns the head. When it wants work back, typically during
// shutdown or to prioritize its latest item, it calls ReadFront:
//
//	// Reclaim everything readers have not claimed yet
//	for {
//	    task, err := p.ReadFront()
//	    if err != nil {
//	        break // empty, or readers got there first
//	    }
//	    task.Execute() // run it ourselves
//	}
//
// ReadFront pops in LIFO order from the head, so the writer gets its most
// recent publications first. It races with readers only through the
// per-slot claim; whichever side wins the claim owns the item.
//
// # Pipe Variants
//
// Three payload flavors share the same protocol:
//
//	NewPipe[T]       - Generic type-safe pipe for any copyable type
//	NewPipeIndirect  - Pipe for uintptr values (pool indices, handles)
//	NewPipePtr       - Pipe for unsafe.Pointer (zero-copy handoff)
//
// # Ordering
//
// Tail reads are not FIFO across concurrent readers. ReadBack delivers
// whatever is currently claimable; under contention a later-published item
// can be delivered before an earlier one that is momentarily claimed. The
// guarantee is conservation: the multiset of delivered items equals the
// multiset of published items, less whatever the writer stole back and
// whatever is still in the pipe.
//
// A single reader with an idle writer observes FIFO order; the writer's
// ReadFront observes LIFO order from the head.
//
// # Memory Model
//
// The pipe is built on [code.hybscloud.com/atomix] primitives with
// explicit per-operation memory orderings. Each slot carries an atomic
// state flag cycling through writable, readable and in-flight. The
// writer's release store of the readable flag pairs with the reader's
// acquire CAS claiming the slot, which is the only edge that orders the
// payload: the head and tail counters are maintained with relaxed
// operations and never carry publication.
//
// Readers coordinate through per-slot CAS rather than a shared ticket
// counter, trading one contended hot spot for n distributed ones.
//
// # Error Handling
//
// Operations return [ErrWouldBlock] when they cannot proceed. This error
// is sourced from [code.hybscloud.com/iox] for ecosystem consistency.
// Full, empty and lost-the-race are deliberately indistinguishable; the
// caller's move is the same: retry, back off, or give up.
//
//	pipe.IsWouldBlock(err)  // true if pipe full/empty
//	pipe.IsSemantic(err)    // true if control flow signal
//	pipe.IsNonFailure(err)  // true if nil or ErrWouldBlock
//
// # Capacity
//
// Capacity rounds up to the next power of 2 and must not exceed 2^31:
//
//	p := pipe.NewPipe[int](3)     // Actual capacity: 4
//	p := pipe.NewPipe[int](1000)  // Actual capacity: 1024
//
// Minimum capacity is 2. Panic if capacity < 2 or capacity > 2^31.
//
// A length query is intentionally not provided; Empty is advisory only
// and counts in-flight claims as consumed.
//
// # Thread Safety
//
// Exactly one goroutine may act as the writer for the lifetime of the
// pipe. WriteFront and ReadFront are writer-only; calling them from more
// than one goroutine causes undefined behavior including data corruption.
// ReadBack is safe for any number of goroutines. Misuse is not detected.
//
// # Shutdown
//
// A reader killed between claiming a slot and releasing it strands that
// slot permanently: its flag never returns to writable, and the writer
// will eventually stall when the ring laps it. Always shut readers down
// cooperatively, letting them finish their current ReadBack and exit
// their loop, then drain with ReadBack or ReadFront until ErrWouldBlock.
//
// # Race Detection
//
// Go's race detector cannot observe happens-before edges established
// through atomix memory orderings and reports false positives on the slot
// payload accesses. The protocol is correct; concurrency tests are
// skipped under the race detector via the RaceEnabled constant. For
// verification use stress tests without the detector, or model checking.
package pipe
