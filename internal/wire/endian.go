//go:build ppc64 || s390x || mips || mips64 || sparc64

package wire

// The wire format is little-endian; a big-endian host would need a byte
// swap on every header and index access, and this implementation does not
// provide one. Failing loudly at startup is better than producing a
// segment no little-endian participant could read.
func init() {
	panic("zeroipc: big-endian hosts are not supported")
}
