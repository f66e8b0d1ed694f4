package crypto

import "encoding/binary"

// BE32 encodes v as a 4-byte big-endian integer.
// Salt length fields and derivation counters are encoded this way.
func BE32(v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return buf[:]
}

// AppendBE32 appends the 4-byte big-endian encoding of v to dst.
func AppendBE32(dst []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(dst, v)
}
