package storage

import (
	"context"
)

const (
	KeyHistory = "askupi-history"
	KeyChats   = "askupi-chats"
)

// Quota mirrors the ~5 MiB most browsers allocate per storage origin.
// There is no eviction policy.
const Quota = int64(5 * 1024 * 1024)

type Info struct {
	Used        int64   `json:"used"`
	Total       int64   `json:"total"`
	PercentUsed float64 `json:"percentUsed"`
}

// Store is a whole-record key-value store. Each record is read fully and
// rewritten fully on every mutation; last writer wins. A missing record
// reads as nil without error. Unavailable backends fail with
// common.ErrStorageUnavailable so callers can degrade to no-ops.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	Usage(ctx context.Context) (Info, error)
}

func usageInfo(used int64) Info {
	return Info{
		Used:        used,
		Total:       Quota,
		PercentUsed: float64(used) / float64(Quota) * 100,
	}
}
