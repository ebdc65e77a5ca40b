package glb

// Assembler accumulates the single binary buffer carried by the BIN chunk.
// It only tracks bytes and alignment; it never interprets the data.
type Assembler struct {
	data []byte
}

// Append pads the buffer with zeros so the block starts at a multiple of
// max(4, align), appends block, and returns the block's offset and length.
func (a *Assembler) Append(block []byte, align int) (offset, length int) {
	align = max(align, 4)
	if rem := len(a.data) % align; rem != 0 {
		a.data = append(a.data, make([]byte, align-rem)...)
	}
	offset = len(a.data)
	a.data = append(a.data, block...)
	return offset, len(block)
}

// Len returns the unpadded buffer length.
func (a *Assembler) Len() int { return len(a.data) }

// Bytes returns the unpadded buffer. The slice aliases the assembler's
// storage until the next Append.
func (a *Assembler) Bytes() []byte { return a.data }

// truncate rolls the buffer back to n bytes.
func (a *Assembler) truncate(n int) {
	a.data = a.data[:n]
}

// pad4 returns n rounded up to a multiple of 4.
func pad4(n int) int {
	return (n + 3) &^ 3
}
