package protowire

// EncodeZigZag32 maps a signed 32-bit integer to an unsigned one so that
// small-magnitude values (positive or negative) encode as short varints,
// for the Protocol Buffers wire format.
func EncodeZigZag32(n int32) uint32 {
	return uint32((n << 1) ^ (n >> 31))
}

// DecodeZigZag32 inverts EncodeZigZag32.
func DecodeZigZag32(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}

// EncodeZigZag64 maps a signed 64-bit integer to an unsigned one.
func EncodeZigZag64(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

// DecodeZigZag64 inverts EncodeZigZag64.
func DecodeZigZag64(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
