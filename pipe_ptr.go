// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipe

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// PipePtr is a work-stealing pipe for unsafe.Pointer values.
//
// PipePtr passes pointers directly without copying, enabling zero-copy
// handoff from the writer to readers. The flag transition is the ownership
// barrier: whoever wins the slot claim owns the pointed-to object.
//
// Consumed slots are cleared to nil so the pipe does not pin dead objects.
//
// Same protocol and constraints as Pipe: one writer, any number of
// readers, non-blocking throughout.
type PipePtr struct {
	_          pad
	writeIndex atomix.Uint32 // head; written by the writer only
	_          pad
	readIndex  atomix.Uint32 // reader progress hint, lossy
	_          pad
	readCount  atomix.Uint32 // items consumed from the tail
	_          pad
	buffer     []ptrSlot
	mask       uint32
	capacity   uint32
}

type ptrSlot struct {
	flag atomix.Uint32
	data unsafe.Pointer
	_    padShort // Pad to cache line
}

// NewPipePtr creates a new pipe for unsafe.Pointer values.
// Capacity rounds up to the next power of 2 and must not exceed 2^31.
func NewPipePtr(capacity int) *PipePtr {
	n := checkCapacity(capacity)

	p := &PipePtr{
		buffer:   make([]ptrSlot, n),
		mask:     n - 1,
		capacity: n,
	}

	for i := range p.buffer {
		p.buffer[i].flag.StoreRelaxed(slotWritable)
	}

	return p
}

// WriteFront publishes a pointer at the head (writer only).
// Returns ErrWouldBlock if the head slot is still held by a reader.
// Ownership of the pointed-to object transfers to the eventual consumer.
func (p *PipePtr) WriteFront(elem unsafe.Pointer) error {
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

// ReadBack removes and returns a pointer from the tail (multiple readers
// safe). Returns (nil, ErrWouldBlock) if the pipe is empty.
func (p *PipePtr) ReadBack() (unsafe.Pointer, error) {
	rc := p.readCount.LoadRelaxed()

	idx := rc
	var slot *ptrSlot
	sw := spin.Wait{}
	for {
		wi := p.writeIndex.LoadRelaxed()
		if wi-rc == 0 {
			return nil, ErrWouldBlock
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
	slot.data = nil
	slot.flag.StoreRelease(slotWritable)

	return elem, nil
}

// ReadFront steals back the most recent unclaimed pointer from the head
// (writer only). Returns (nil, ErrWouldBlock) if the pipe is empty or
// readers have already claimed the head.
func (p *PipePtr) ReadFront() (unsafe.Pointer, error) {
	wi := p.writeIndex.LoadRelaxed()
	front := wi

	var slot *ptrSlot
	for {
		rc := p.readCount.LoadRelaxed()
		if wi-rc == 0 {
			p.readIndex.StoreRelease(rc)
			return nil, ErrWouldBlock
		}

		front--
		slot = &p.buffer[front&p.mask]
		if slot.flag.CompareAndSwapAcqRel(slotReadable, slotInFlight) {
			break
		}

		if p.readIndex.LoadAcquire() >= front {
			return nil, ErrWouldBlock
		}
	}

	elem := slot.data
	slot.data = nil
	slot.flag.StoreRelaxed(slotWritable)
	p.writeIndex.StoreRelaxed(wi - 1)

	return elem, nil
}

// Empty reports whether the pipe looks empty (advisory only).
func (p *PipePtr) Empty() bool {
	return p.writeIndex.LoadRelaxed()-p.readCount.LoadRelaxed() == 0
}

// Reset returns the pipe to its freshly constructed state.
// Not safe for concurrent use: quiesce the writer and all readers first.
func (p *PipePtr) Reset() {
	for i := range p.buffer {
		p.buffer[i].data = nil
		p.buffer[i].flag.StoreRelaxed(slotWritable)
	}
	p.writeIndex.StoreRelaxed(0)
	p.readIndex.StoreRelaxed(0)
	p.readCount.StoreRelaxed(0)
}

// Cap returns the pipe capacity.
func (p *PipePtr) Cap() int {
	return int(p.capacity)
}
