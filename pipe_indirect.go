// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipe

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// PipeIndirect is a work-stealing pipe for uintptr values.
//
// PipeIndirect passes indices or handles instead of full objects: pool
// indices, buffer handles, compact IDs. The full 64-bit value range is
// available; the per-slot flag carries the slot state, not the payload.
//
// Same protocol and constraints as Pipe: one writer, any number of
// readers, non-blocking throughout.
//
// Memory: 8 bytes payload per slot, padded to a cache line.
type PipeIndirect struct {
	_          pad
	writeIndex atomix.Uint32 // head; written by the writer only
	_          pad
	readIndex  atomix.Uint32 // reader progress hint, lossy
	_          pad
	readCount  atomix.Uint32 // items consumed from the tail
	_          pad
	buffer     []indirectSlot
	mask       uint32
	capacity   uint32
}

type indirectSlot struct {
	flag atomix.Uint32
	data uintptr
	_    padShort // Pad to cache line
}

// NewPipeIndirect creates a new pipe for uintptr values.
// Capacity rounds up to the next power of 2 and must not exceed 2^31.
func NewPipeIndirect(capacity int) *PipeIndirect {
	n := checkCapacity(capacity)

	p := &PipeIndirect{
		buffer:   make([]indirectSlot, n),
		mask:     n - 1,
		capacity: n,
	}

	for i := range p.buffer {
		p.buffer[i].flag.StoreRelaxed(slotWritable)
	}

	return p
}

// WriteFront publishes a value at the head (writer only).
// Returns ErrWouldBlock if the head slot is still held by a reader.
func (p *PipeIndirect) WriteFront(elem uintptr) error {
	wi := p.writeIndex.LoadRelaxed()
	slot := &p.buffer[wi&p.mask]

	if slot.flag.LoadAcquire() != slotWritable {
		return ErrWouldBlock
	}

	slot.data = elem
	slot.flag.StoreRelease(slotReadable)
	p.writeIndex.AddRelaxed(1)

	return nil
}

// ReadBack removes and returns a value from the tail (multiple readers
// safe). Returns (0, ErrWouldBlock) if the pipe is empty.
func (p *PipeIndirect) ReadBack() (uintptr, error) {
	rc := p.readCount.LoadRelaxed()

	idx := rc
	var slot *indirectSlot
	sw := spin.Wait{}
	for {
		wi := p.writeIndex.LoadRelaxed()
		if wi-rc == 0 {
			return 0, ErrWouldBlock
		}

		if int32(idx-wi) >= 0 {
			idx = p.readIndex.LoadRelaxed()
		}

		slot = &p.buffer[idx&p.mask]
		if slot.flag.CompareAndSwapAcqRel(slotReadable, slotInFlight) {
			break
		}

		idx++
		rc = p.readCount.LoadRelaxed()
		sw.Once()
	}

	p.readCount.AddRelaxed(1)

	elem := slot.data
	slot.flag.StoreRelease(slotWritable)

	return elem, nil
}

// ReadFront steals back the most recent unclaimed value from the head
// (writer only). Returns (0, ErrWouldBlock) if the pipe is empty or
// readers have already claimed the head.
func (p *PipeIndirect) ReadFront() (uintptr, error) {
	wi := p.writeIndex.LoadRelaxed()
	front := wi

	var slot *indirectSlot
	for {
		rc := p.readCount.LoadRelaxed()
		if wi-rc == 0 {
			p.readIndex.StoreRelease(rc)
			return 0, ErrWouldBlock
		}

		front--
		slot = &p.buffer[front&p.mask]
		if slot.flag.CompareAndSwapAcqRel(slotReadable, slotInFlight) {
			break
		}

		if p.readIndex.LoadAcquire() >= front {
			return 0, ErrWouldBlock
		}
	}

	elem := slot.data
	slot.flag.StoreRelaxed(slotWritable)
	p.writeIndex.StoreRelaxed(wi - 1)

	return elem, nil
}

// Empty reports whether the pipe looks empty (advisory only).
func (p *PipeIndirect) Empty() bool {
	return p.writeIndex.LoadRelaxed()-p.readCount.LoadRelaxed() == 0
}

// Reset returns the pipe to its freshly constructed state.
// Not safe for concurrent use: quiesce the writer and all readers first.
func (p *PipeIndirect) Reset() {
	for i := range p.buffer {
		p.buffer[i].data = 0
		p.buffer[i].flag.StoreRelaxed(slotWritable)
	}
	p.writeIndex.StoreRelaxed(0)
	p.readIndex.StoreRelaxed(0)
	p.readCount.StoreRelaxed(0)
}

// Cap returns the pipe capacity.
func (p *PipeIndirect) Cap() int {
	return int(p.capacity)
}
