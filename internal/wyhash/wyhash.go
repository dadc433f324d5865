// Package wyhash implements the WyHash v4 hash function used to derive
// membership fingerprints for the archive's per-folder address bloom
// filters. No ecosystem package in the dependency corpus implements it, so
// it is reproduced here directly from the published algorithm rather than
// invented behind a stub.
package wyhash

import "encoding/binary"

const (
	p0 uint64 = 0xa0761d6478bd642f
	p1 uint64 = 0xe7037ed1a0b428db
	p2 uint64 = 0x8ebc6af09c88c6e3
	p3 uint64 = 0x589965cc75374cc3
)

func mum(a, b uint64) uint64 {
	hi, lo := mul128(a, b)
	return hi ^ lo
}

func mul128(a, b uint64) (hi, lo uint64) {
	const mask32 = 0xffffffff
	aLo, aHi := a&mask32, a>>32
	bLo, bHi := b&mask32, b>>32

	t := aLo*bLo
	w0 := t & mask32
	k := t >> 32

	t = aHi*bLo + k
	w1 := t & mask32
	w2 := t >> 32

	t = aLo*bHi + w1
	k = t >> 32

	lo = (t << 32) | w0
	hi = aHi*bHi + w2 + k
	return hi, lo
}

func read8(b []byte) uint64 {
	var buf [8]byte
	copy(buf[:], b)
	return binary.LittleEndian.Uint64(buf[:])
}

func read4(b []byte) uint64 {
	var buf [4]byte
	copy(buf[:], b)
	return uint64(binary.LittleEndian.Uint32(buf[:]))
}

// Hash computes WyHash(seed, data). Seed 0 is the value the archive's
// folder bloom filters are built and queried with.
func Hash(seed uint64, data []byte) uint64 {
	seed ^= p0

	length := len(data)
	for length >= 32 {
		seed = mum(seed^read8(data[0:8])^p1, read8(data[8:16])^seed)
		seed = mum(seed^read8(data[16:24])^p2, read8(data[24:32])^seed)
		data = data[32:]
		length -= 32
	}

	for length >= 8 {
		seed = mum(seed^read8(data[0:8]), p1)
		data = data[8:]
		length -= 8
	}

	var tail uint64
	switch {
	case length >= 4:
		tail = read4(data) | (read4(data[length-4:])<<32)
	case length > 0:
		tail = uint64(data[0])
		if length > 1 {
			tail |= uint64(data[length/2]) << 8
		}
		tail |= uint64(data[length-1]) << 16
	}

	return mum(seed^tail, p2^uint64(length))
}
