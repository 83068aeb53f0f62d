// Package dedupe removes repeated listings before enrichment.
package dedupe

import (
	"github.com/ppiankov/aidaily/internal/model"
	"go.uber.org/zap"
)

// ByName keeps the first item for each normalized name, preserving order.
// Items with an empty name are kept as-is.
func ByName(items []model.Item) []model.Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.Item, 0, len(items))
	dropped := 0

	for _, item := range items {
		key := item.NormalizedName()
		if key != "" {
			if _, ok := seen[key]; ok {
				dropped++
				zap.L().Debug("dropping duplicate listing", zap.String("name", item.Name))
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, item)
	}

	if dropped > 0 {
		zap.L().Info("removed duplicate listings",
			zap.Int("dropped", dropped),
			zap.Int("remaining", len(out)),
		)
	}
	return out
}
