package nos

import "os"

const (
	DefaultEndpoint = "nos-eastchina1.126.net"

	// Bodies above this size are rejected before any request is sent.
	MaxObjectSize int64 = 100 * 1024 * 1024

	// Streams are hashed in chunks of this size.
	ChunkSize = 64 * 1024

	MaxUploadParts int32 = 10000

	DefaultUploadPartSize int64 = 16 * 1024 * 1024

	FilePermMode = os.FileMode(0664) // File permission
)
