package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"chemcore/internal/core"
	"chemcore/pkg/domain"
)

const archiveContentType = "application/x-chemcore-network"

// Archive serializes net and stores it under key. The key must be new;
// archives are immutable once written.
func Archive(ctx context.Context, store Store, key string, net domain.Network) (ObjectInfo, error) {
	payload, err := net.Serialize()
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("serialize network: %w", err)
	}
	info, err := store.Put(ctx, key, bytes.NewReader(payload), PutOptions{ContentType: archiveContentType})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("store archive %s: %w", key, err)
	}
	return info, nil
}

// Restore fetches the archive under key and rehydrates it with codec.
func Restore(ctx context.Context, store Store, key string, codec domain.Codec) (*core.Network, error) {
	_, rc, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch archive %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", key, err)
	}
	net, err := core.Deserialize(payload, codec)
	if err != nil {
		return nil, fmt.Errorf("decode archive %s: %w", key, err)
	}
	return net, nil
}
