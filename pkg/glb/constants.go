package glb

// GLB container constants.
const (
	Magic   uint32 = 0x46546C67 // "glTF"
	Version uint32 = 2

	ChunkJSON uint32 = 0x4E4F534A // "JSON"
	ChunkBIN  uint32 = 0x004E4942 // "BIN\x00"

	HeaderSize      = 12
	ChunkHeaderSize = 8
)

// DefaultGenerator is written to asset.generator unless overridden.
const DefaultGenerator = "glbforge"

// Chunk padding bytes.
const (
	jsonPad byte = 0x20
	binPad  byte = 0x00
)
