// Copyright 2026 The Dirotp Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds static passwords in protected memory and resolves
// them from their configured source (inline argument, password file, or
// interactive prompt).
//
// Buffer allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock (preventing swap), and marks it
// excluded from core dumps via madvise(MADV_DONTDUMP). On Close, the
// memory is zeroed, unlocked, and unmapped. Because the region is outside
// the Go heap, the garbage collector never copies or relocates it.
package secret

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Buffer holds a secret in memory that is locked against swapping,
// excluded from core dumps, and zeroed on close. A Buffer belongs to a
// single invocation and is not safe for concurrent use. After Close, any
// access to the contents panics.
type Buffer struct {
	data   []byte
	length int
	closed bool
}

// New allocates a protected buffer of the given size. The caller must
// Close it when the secret is no longer needed.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}

	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock failed: %w", err)
	}

	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(data)
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP) failed: %w", err)
	}

	return &Buffer{
		data:   data,
		length: size,
	}, nil
}

// NewFromBytes copies source into a protected buffer and zeros the
// source in place, so the caller's slice no longer holds the secret.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}

	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}

	copy(buffer.data, source)
	Zero(source)
	return buffer, nil
}

// Bytes returns the secret data. The slice points directly into the mmap
// region; do not retain it beyond the Buffer's lifetime. Panics if the
// buffer has been closed.
func (b *Buffer) Bytes() []byte {
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.data[:b.length]
}

// Len returns the size of the secret data.
func (b *Buffer) Len() int {
	return b.length
}

// Close zeros the contents and releases the memory. Idempotent.
func (b *Buffer) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	Zero(b.data)

	// Release failures cannot leak the secret (it is already zeroed);
	// report the first one for visibility.
	var firstError error
	if err := unix.Munlock(b.data); err != nil {
		firstError = fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(b.data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap failed: %w", err)
	}

	b.data = nil
	return firstError
}

// Zero overwrites data with zero bytes.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
